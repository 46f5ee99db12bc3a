package book

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// OptionType distinguishes calls from puts. Metadata only; matching does not
// care.
type OptionType int8

const (
	Call OptionType = iota
	Put
)

func (t OptionType) String() string {
	switch t {
	case Call:
		return "Call"
	case Put:
		return "Put"
	default:
		return "Unknown"
	}
}

// Instrument is the static description of one tokenized option contract
// quoted against the common quote asset.
type Instrument struct {
	Token      common.Address // the option token
	Symbol     string         // e.g. "WETH-250C-DEC"
	Underlying string
	Type       OptionType
	Strike     string // human-readable strike in quote units
	Expiry     int64  // contract expiry, unix seconds
}

// Registry maps option token addresses to instrument metadata. The feed
// adapter uses it to classify raw order records; the API serves it as the
// instrument list.
type Registry struct {
	mu          sync.RWMutex
	instruments map[common.Address]*Instrument
	quoteAsset  common.Address
}

// NewRegistry creates a registry for instruments quoted against quoteAsset.
func NewRegistry(quoteAsset common.Address) *Registry {
	return &Registry{
		instruments: make(map[common.Address]*Instrument),
		quoteAsset:  quoteAsset,
	}
}

// QuoteAsset returns the common quote asset address.
func (r *Registry) QuoteAsset() common.Address {
	return r.quoteAsset
}

// Register adds an instrument. Registering the same token twice is an error.
func (r *Registry) Register(in *Instrument) error {
	if in == nil {
		return fmt.Errorf("cannot register nil instrument")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.instruments[in.Token]; exists {
		return fmt.Errorf("instrument %s already registered", in.Token.Hex())
	}
	r.instruments[in.Token] = in
	return nil
}

// Lookup returns the instrument for a token address.
func (r *Registry) Lookup(token common.Address) (*Instrument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.instruments[token]
	return in, ok
}

// List returns all registered instruments.
func (r *Registry) List() []*Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Instrument, 0, len(r.instruments))
	for _, in := range r.instruments {
		out = append(out, in)
	}
	return out
}

// Classify decides which instrument and side a raw (makerAsset, takerAsset)
// pair belongs to. A maker giving up the option token against the quote asset
// is an ask; a maker giving up the quote asset for the option token is a bid.
// Pairs touching no known instrument classify as false and should be dropped.
func (r *Registry) Classify(makerAsset, takerAsset common.Address) (common.Address, Side, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if takerAsset == r.quoteAsset {
		if _, ok := r.instruments[makerAsset]; ok {
			return makerAsset, Ask, true
		}
	}
	if makerAsset == r.quoteAsset {
		if _, ok := r.instruments[takerAsset]; ok {
			return takerAsset, Bid, true
		}
	}
	return common.Address{}, 0, false
}
