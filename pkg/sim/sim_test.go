package sim

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/oddlot/optionbook/pkg/book"
)

func ask(hash byte, maker, taker, remaining int64) *book.RestingOrder {
	return &book.RestingOrder{
		Order: book.Order{
			Hash:        common.Hash{hash},
			MakerAmount: big.NewInt(maker),
			TakerAmount: big.NewInt(taker),
			Expiry:      2_000_000_000,
		},
		Remaining: big.NewInt(remaining),
	}
}

// Two asks sorted ascending by price: A at 10, B at 11.
func twoAsks() []*book.RestingOrder {
	return []*book.RestingOrder{
		ask(1, 100, 10, 10),
		ask(2, 220, 20, 20),
	}
}

func TestZeroAmountIsNotAnError(t *testing.T) {
	for _, orders := range [][]*book.RestingOrder{nil, twoAsks()} {
		res, err := OutputForInput(orders, big.NewInt(0))
		require.NoError(t, err)
		require.Zero(t, res.Total.Sign())
		require.Empty(t, res.ConsumedOrders)

		res, err = InputForOutput(orders, big.NewInt(0))
		require.NoError(t, err)
		require.Zero(t, res.Total.Sign())
		require.Empty(t, res.ConsumedOrders)
	}
}

func TestEmptyBookIsInsufficient(t *testing.T) {
	_, err := OutputForInput(nil, big.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientLiquidity)

	_, err = InputForOutput(nil, big.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestOutputForInputWalksPriceTimePriority(t *testing.T) {
	orders := twoAsks()

	// Input 10 exactly consumes A: output 10*100/10 = 100.
	res, err := OutputForInput(orders, big.NewInt(10))
	require.NoError(t, err)
	require.Equal(t, int64(100), res.Total.Int64())
	require.Len(t, res.ConsumedOrders, 1)
	require.Equal(t, common.Hash{1}, res.ConsumedOrders[0].Hash)

	// Input 15 consumes A fully and half of B: 100 + 5*220/20 = 155.
	res, err = OutputForInput(orders, big.NewInt(15))
	require.NoError(t, err)
	require.Equal(t, int64(155), res.Total.Int64())
	require.Len(t, res.ConsumedOrders, 2)
	require.Equal(t, int64(10), res.FillAmounts[0].Int64())
	require.Equal(t, int64(5), res.FillAmounts[1].Int64())
}

func TestOutputForInputExceedingDepth(t *testing.T) {
	// Total fillable is 30; 31 cannot be absorbed and nothing partial leaks.
	res, err := OutputForInput(twoAsks(), big.NewInt(31))
	require.ErrorIs(t, err, ErrInsufficientLiquidity)
	require.Empty(t, res.ConsumedOrders)
	require.Zero(t, res.Total.Sign())
}

func TestOutputForInputFloorsContributions(t *testing.T) {
	// Price 7/3: input 2 yields floor(2*7/3) = 4, not 4.67.
	orders := []*book.RestingOrder{ask(1, 7, 3, 3)}
	res, err := OutputForInput(orders, big.NewInt(2))
	require.NoError(t, err)
	require.Equal(t, int64(4), res.Total.Int64())
}

func TestInputForOutputExampleScenario(t *testing.T) {
	// Requesting 150 output: A contributes its full 100 for input 10, B
	// covers the last 50. fillableOutput(B)=floor(20*220/20)=220, input =
	// ceil(50*20/220)=5. Total input 15.
	res, err := InputForOutput(twoAsks(), big.NewInt(150))
	require.NoError(t, err)
	require.Equal(t, int64(15), res.Total.Int64())
	require.Len(t, res.ConsumedOrders, 2)
	require.Equal(t, int64(10), res.FillAmounts[0].Int64())
	require.Equal(t, int64(5), res.FillAmounts[1].Int64())
}

func TestInputForOutputRoundsFinalPartialUp(t *testing.T) {
	// Price 7/3, fillableOutput = floor(3*7/3) = 7. Requesting 5 output
	// needs ceil(5*3/7) = 3 input, never the floored 2.
	orders := []*book.RestingOrder{ask(1, 7, 3, 3)}
	res, err := InputForOutput(orders, big.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, int64(3), res.Total.Int64())
}

func TestInputForOutputExceedingDepth(t *testing.T) {
	// Max output is 100+220 = 320.
	_, err := InputForOutput(twoAsks(), big.NewInt(321))
	require.ErrorIs(t, err, ErrInsufficientLiquidity)

	res, err := InputForOutput(twoAsks(), big.NewInt(320))
	require.NoError(t, err)
	require.Equal(t, int64(30), res.Total.Int64())
}

func TestOutputMonotonicInInput(t *testing.T) {
	orders := []*book.RestingOrder{
		ask(1, 100, 10, 10),
		ask(2, 220, 20, 20),
		ask(3, 7, 3, 3),
	}
	prev := big.NewInt(-1)
	for in := int64(0); in <= 33; in++ {
		res, err := OutputForInput(orders, big.NewInt(in))
		require.NoError(t, err)
		require.GreaterOrEqual(t, res.Total.Cmp(prev), 0, "output shrank at input %d", in)
		prev = res.Total
	}
}

func TestRoundingNeverExceedsPerOrderSum(t *testing.T) {
	// Filling the exact sum of both orders' fillable amounts must equal the
	// sum of each order's own floored contribution.
	a := ask(1, 7, 3, 3)
	b := ask(2, 11, 7, 7)
	orders := []*book.RestingOrder{a, b}

	sum := new(big.Int).Add(a.Remaining, b.Remaining)
	res, err := OutputForInput(orders, sum)
	require.NoError(t, err)

	individual := new(big.Int)
	for _, o := range orders {
		one, err := OutputForInput([]*book.RestingOrder{o}, o.Remaining)
		require.NoError(t, err)
		individual.Add(individual, one.Total)
	}
	require.LessOrEqual(t, res.Total.Cmp(individual), 0)
}

func TestRoundTripNeverCostsMore(t *testing.T) {
	orders := []*book.RestingOrder{
		ask(1, 7, 3, 3),
		ask(2, 100, 10, 10),
		ask(3, 220, 20, 20),
		ask(4, 13, 11, 11),
	}
	for in := int64(1); in <= 44; in++ {
		fwd, err := OutputForInput(orders, big.NewInt(in))
		require.NoError(t, err)
		if fwd.Total.Sign() == 0 {
			continue
		}
		back, err := InputForOutput(orders, fwd.Total)
		require.NoError(t, err)
		require.LessOrEqual(t, back.Total.Cmp(big.NewInt(in)), 0,
			"round trip of input %d cost %s", in, back.Total)
	}
}

func TestSimulatorDoesNotMutateOrders(t *testing.T) {
	orders := twoAsks()
	_, err := OutputForInput(orders, big.NewInt(15))
	require.NoError(t, err)
	_, err = InputForOutput(orders, big.NewInt(150))
	require.NoError(t, err)

	require.Equal(t, int64(10), orders[0].Remaining.Int64())
	require.Equal(t, int64(20), orders[1].Remaining.Int64())
}
