package book

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/oddlot/optionbook/pkg/util"
)

// OrderBook holds both sides of one instrument's resting orders. Invariants
// maintained by the Store: no duplicate order hashes within a side, every
// entry passes IsFillable at the time of the last write, bids sorted by
// descending effective price, asks ascending, ties in insertion order.
type OrderBook struct {
	Bids []*RestingOrder
	Asks []*RestingOrder
}

// Clone deep-copies the book so readers never share big.Int storage with the
// writer.
func (b *OrderBook) Clone() *OrderBook {
	cp := &OrderBook{
		Bids: make([]*RestingOrder, len(b.Bids)),
		Asks: make([]*RestingOrder, len(b.Asks)),
	}
	for i, o := range b.Bids {
		cp.Bids[i] = o.Clone()
	}
	for i, o := range b.Asks {
		cp.Asks[i] = o.Clone()
	}
	return cp
}

func (b *OrderBook) side(s Side) []*RestingOrder {
	if s == Bid {
		return b.Bids
	}
	return b.Asks
}

func (b *OrderBook) setSide(s Side, orders []*RestingOrder) {
	if s == Bid {
		b.Bids = orders
	} else {
		b.Asks = orders
	}
}

// Store owns every OrderBook. Load, Merge and Sweep are serialized behind one
// mutex so no reader or later action ever observes a half-applied write; the
// snapshot fetcher, the feed adapter and the sweeper all funnel through here.
type Store struct {
	mu    sync.Mutex
	books map[common.Address]*OrderBook
	log   *zap.SugaredLogger

	// OnUpdate, when set, is called after each committed Load/Merge/Sweep
	// that changed an instrument's book. Called outside the lock.
	OnUpdate func(instrument common.Address)
}

// NewStore creates an empty store. Books appear on first Load or Merge.
func NewStore(log *zap.SugaredLogger) *Store {
	return &Store{
		books: make(map[common.Address]*OrderBook),
		log:   log,
	}
}

// Load replaces an instrument's book wholesale: every raw order is passed
// through the validity filter and both sides are sorted. Used at startup and
// after any feed gap, because merges cannot rebuild state across a gap.
func (s *Store) Load(instrument common.Address, bids, asks []*RestingOrder, nowSeconds int64) {
	bids = filterFillable(bids, nowSeconds)
	asks = filterFillable(asks, nowSeconds)
	sortSide(bids, Bid)
	sortSide(asks, Ask)

	s.mu.Lock()
	s.books[instrument] = &OrderBook{Bids: bids, Asks: asks}
	s.mu.Unlock()

	s.log.Infow("book_loaded",
		"instrument", instrument.Hex(),
		"bids", len(bids),
		"asks", len(asks))
	s.notify(instrument)
}

// Merge upserts one order into a side. An existing entry with the same hash
// is replaced, picking up the new remaining amount; the whole side is then
// refiltered (the merged order itself drops out if it became dust or expired)
// and resorted. A merge for an unknown instrument seeds a fresh book so
// instruments can go live from the feed before their first snapshot.
func (s *Store) Merge(instrument common.Address, side Side, order *RestingOrder, nowSeconds int64) {
	s.mu.Lock()
	b, ok := s.books[instrument]
	if !ok {
		b = &OrderBook{}
		s.books[instrument] = b
	}

	entries := b.side(side)
	replaced := false
	for i, o := range entries {
		if o.Hash == order.Hash {
			entries[i] = order
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, order)
	}
	entries = filterFillable(entries, nowSeconds)
	sortSide(entries, side)
	b.setSide(side, entries)
	s.mu.Unlock()

	s.log.Debugw("order_merged",
		"instrument", instrument.Hex(),
		"side", side.String(),
		"order", order.Hash.Hex(),
		"replaced", replaced)
	s.notify(instrument)
}

// Sweep drops entries that stopped being fillable purely because time passed.
// No feed event announces expiry, so this runs on a timer.
func (s *Store) Sweep(nowSeconds int64) {
	var touched []common.Address

	s.mu.Lock()
	for instrument, b := range s.books {
		nb := len(b.Bids)
		na := len(b.Asks)
		b.Bids = filterFillable(b.Bids, nowSeconds)
		b.Asks = filterFillable(b.Asks, nowSeconds)
		if removed := nb - len(b.Bids) + na - len(b.Asks); removed > 0 {
			touched = append(touched, instrument)
			s.log.Debugw("sweep_pruned",
				"instrument", instrument.Hex(),
				"removed", removed)
		}
	}
	s.mu.Unlock()

	for _, instrument := range touched {
		s.notify(instrument)
	}
}

// Book returns a deep-copied view of the instrument's book, or false if no
// snapshot or merge has touched the instrument yet. The copy is safe to read
// (and to feed the simulator) while the writer keeps going.
func (s *Store) Book(instrument common.Address) (*OrderBook, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[instrument]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// Instruments returns every instrument with a live book.
func (s *Store) Instruments() []common.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]common.Address, 0, len(s.books))
	for a := range s.books {
		out = append(out, a)
	}
	return out
}

// RunSweeper sweeps on a fixed interval until ctx is done. The clock is
// injected so tests drive logical time instead of sleeping.
func (s *Store) RunSweeper(ctx context.Context, clock util.Clock, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-clock.After(interval):
			s.Sweep(now.Unix())
		}
	}
}

func (s *Store) notify(instrument common.Address) {
	if s.OnUpdate != nil {
		s.OnUpdate(instrument)
	}
}
