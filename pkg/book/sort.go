package book

import (
	"sort"

	"github.com/oddlot/optionbook/pkg/numutil"
)

// ComparePrice orders a before b for the given side. Effective price is
// makerAmount/takerAmount; bids want the highest price first, asks the
// lowest. The comparison cross-multiplies the integer pairs so equal prices
// expressed with different denominators compare equal and nothing rounds.
func ComparePrice(a, b *RestingOrder, side Side) int {
	c := numutil.CmpRatio(a.MakerAmount, a.TakerAmount, b.MakerAmount, b.TakerAmount)
	if side == Bid {
		return -c // higher price first
	}
	return c // lower price first
}

// sortSide sorts a side in place. The sort is stable: price ties keep their
// relative insertion order, which stands in for time priority.
func sortSide(side []*RestingOrder, s Side) {
	sort.SliceStable(side, func(i, j int) bool {
		return ComparePrice(side[i], side[j], s) < 0
	})
}
