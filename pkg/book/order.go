// Package book maintains per-instrument resting order state fed by relayer
// snapshots and incremental websocket events. The Store is the single writer;
// readers get deep-copied views they can walk without locking.
package book

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Side selects one half of an order book. An order's side is not part of the
// order itself; it depends on which list of which instrument's book holds it.
type Side int8

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return "unknown"
	}
}

// Order is a maker's signed resting offer as published by the relayer:
// MakerAmount of one asset offered for TakerAmount of the other. Immutable
// once decoded.
type Order struct {
	Hash        common.Hash
	Maker       common.Address
	MakerAmount *big.Int // base units of the asset the maker gives up
	TakerAmount *big.Int // base units of the asset the maker wants
	Expiry      int64    // unix seconds
}

// RestingOrder is an Order plus the remaining fillable taker amount observed
// via feed metadata. Remaining shrinks as partial fills are reported; the
// underlying Order fields never change.
type RestingOrder struct {
	Order
	Remaining *big.Int // remaining fillable taker amount
}

// Clone returns a deep copy safe to hand to readers while the writer keeps
// mutating the original.
func (r *RestingOrder) Clone() *RestingOrder {
	cp := &RestingOrder{Order: r.Order}
	cp.MakerAmount = new(big.Int).Set(r.MakerAmount)
	cp.TakerAmount = new(big.Int).Set(r.TakerAmount)
	cp.Remaining = new(big.Int).Set(r.Remaining)
	return cp
}
