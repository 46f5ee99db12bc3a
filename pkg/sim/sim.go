// Package sim is the matching simulator: pure, integer-exact functions that
// walk a sorted side of a book in price-time priority and answer "what do I
// get for input X" and "what input buys output Y". It never mutates the
// orders it is handed and never rounds in the caller's favor, so a quote is
// always deliverable on-chain.
package sim

import (
	"errors"
	"math/big"

	"github.com/oddlot/optionbook/pkg/book"
	"github.com/oddlot/optionbook/pkg/numutil"
)

// ErrInsufficientLiquidity means the resting orders cannot satisfy the
// requested amount. No partial result accompanies it.
var ErrInsufficientLiquidity = errors.New("insufficient liquidity")

// Result is one simulated sweep of a side. ConsumedOrders and FillAmounts are
// parallel: FillAmounts[i] is the taker-asset amount taken from
// ConsumedOrders[i]. Total is the answer to the question asked: output
// received for OutputForInput, input required for InputForOutput.
type Result struct {
	ConsumedOrders []*book.RestingOrder
	FillAmounts    []*big.Int
	Total          *big.Int
}

func emptyResult() Result {
	return Result{Total: new(big.Int)}
}

// OutputForInput walks orders in their given priority order and computes how
// much maker asset spending input buys. Each order's contribution is floored,
// so the total never promises more than settlement can deliver. Returns
// ErrInsufficientLiquidity if the side cannot absorb the whole input;
// quoting is all-or-nothing.
func OutputForInput(orders []*book.RestingOrder, input *big.Int) (Result, error) {
	if input.Sign() == 0 {
		return emptyResult(), nil
	}
	if len(orders) == 0 {
		return emptyResult(), ErrInsufficientLiquidity
	}

	res := emptyResult()
	remaining := new(big.Int).Set(input)

	for _, o := range orders {
		fillable := o.Remaining
		if fillable.Cmp(remaining) < 0 {
			// Consume the order fully.
			res.ConsumedOrders = append(res.ConsumedOrders, o)
			res.FillAmounts = append(res.FillAmounts, new(big.Int).Set(fillable))
			res.Total.Add(res.Total, numutil.MulDivFloor(fillable, o.MakerAmount, o.TakerAmount))
			remaining.Sub(remaining, fillable)
			continue
		}
		// This order covers the rest of the input.
		res.ConsumedOrders = append(res.ConsumedOrders, o)
		res.FillAmounts = append(res.FillAmounts, new(big.Int).Set(remaining))
		res.Total.Add(res.Total, numutil.MulDivFloor(remaining, o.MakerAmount, o.TakerAmount))
		remaining.SetInt64(0)
		break
	}

	if remaining.Sign() > 0 {
		return emptyResult(), ErrInsufficientLiquidity
	}
	return res, nil
}

// InputForOutput is the mirror walk: how much taker asset must be spent to
// receive output of the maker asset. Fully consumed orders contribute their
// whole remaining taker amount; the final partial order's input is rounded
// up, so the quote never understates what the requested output costs.
func InputForOutput(orders []*book.RestingOrder, output *big.Int) (Result, error) {
	if output.Sign() == 0 {
		return emptyResult(), nil
	}
	if len(orders) == 0 {
		return emptyResult(), ErrInsufficientLiquidity
	}

	res := emptyResult()
	remaining := new(big.Int).Set(output)

	for _, o := range orders {
		fillable := o.Remaining
		fillableOutput := numutil.MulDivFloor(fillable, o.MakerAmount, o.TakerAmount)
		if fillableOutput.Sign() == 0 {
			continue
		}
		if fillableOutput.Cmp(remaining) < 0 {
			res.ConsumedOrders = append(res.ConsumedOrders, o)
			res.FillAmounts = append(res.FillAmounts, new(big.Int).Set(fillable))
			res.Total.Add(res.Total, fillable)
			remaining.Sub(remaining, fillableOutput)
			continue
		}
		// Partial: input = ceil(remainingOutput * fillable / fillableOutput).
		need := numutil.MulDivCeil(remaining, fillable, fillableOutput)
		res.ConsumedOrders = append(res.ConsumedOrders, o)
		res.FillAmounts = append(res.FillAmounts, need)
		res.Total.Add(res.Total, need)
		remaining.SetInt64(0)
		break
	}

	if remaining.Sign() > 0 {
		return emptyResult(), ErrInsufficientLiquidity
	}
	return res, nil
}
