package book

import "github.com/oddlot/optionbook/pkg/numutil"

const (
	// ExpiryBufferSeconds treats orders this close to expiry as already gone:
	// a fill attempt against them could expire before settlement confirms.
	ExpiryBufferSeconds = 20

	// DustThresholdPct excludes orders with at most this percent of their
	// original taker amount left. Filling them wastes gas for negligible size.
	DustThresholdPct = 5
)

// IsFillable reports whether a resting order is still worth matching at the
// given time: not within the expiry buffer and not dust. Called on every
// merge and every sweep tick.
func IsFillable(o *RestingOrder, nowSeconds int64) bool {
	if o.Expiry <= nowSeconds+ExpiryBufferSeconds {
		return false
	}
	if o.TakerAmount.Sign() <= 0 {
		return false
	}
	// remaining/original*100 > threshold, computed as remaining*100 > original*threshold
	return numutil.PercentGT(o.Remaining, o.TakerAmount, DustThresholdPct)
}

// filterFillable returns the entries of side that pass IsFillable, preserving
// order. The input slice is not modified.
func filterFillable(side []*RestingOrder, nowSeconds int64) []*RestingOrder {
	out := make([]*RestingOrder, 0, len(side))
	for _, o := range side {
		if IsFillable(o, nowSeconds) {
			out = append(out, o)
		}
	}
	return out
}
