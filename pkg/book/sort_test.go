package book

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func hashes(side []*RestingOrder) []byte {
	out := make([]byte, len(side))
	for i, o := range side {
		out[i] = o.Hash[0]
	}
	return out
}

func TestComparePrice(t *testing.T) {
	const far = int64(2_000_000_000)
	cheap := resting(1, 100, 10, 10, far) // price 10
	rich := resting(2, 220, 20, 20, far)  // price 11

	// Asks: lower price first.
	require.Negative(t, ComparePrice(cheap, rich, Ask))
	require.Positive(t, ComparePrice(rich, cheap, Ask))
	// Bids: higher price first.
	require.Negative(t, ComparePrice(rich, cheap, Bid))
	require.Positive(t, ComparePrice(cheap, rich, Bid))

	// Same price, different denominators.
	alsoTen := resting(3, 1000, 100, 100, far)
	require.Zero(t, ComparePrice(cheap, alsoTen, Ask))
	require.Zero(t, ComparePrice(cheap, alsoTen, Bid))
}

func TestSortSideStableTies(t *testing.T) {
	const far = int64(2_000_000_000)

	// Three orders at price 10 inserted in hash order, one cheaper at 9.
	side := []*RestingOrder{
		resting(1, 100, 10, 10, far),
		resting(2, 1000, 100, 100, far),
		resting(3, 90, 10, 10, far),
		resting(4, 10, 1, 1, far),
	}
	sortSide(side, Ask)

	// Price-9 order leads; the price-10 ties keep insertion order.
	require.Equal(t, []byte{3, 1, 2, 4}, hashes(side))

	sortSide(side, Bid)
	require.Equal(t, []byte{1, 2, 4, 3}, hashes(side))
}
