package book

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestRegistryClassify(t *testing.T) {
	quote := common.HexToAddress("0xdddddddddddddddddddddddddddddddddddddddd")
	option := common.HexToAddress("0x1111111111111111111111111111111111111111")
	stranger := common.HexToAddress("0x9999999999999999999999999999999999999999")

	r := NewRegistry(quote)
	require.NoError(t, r.Register(&Instrument{
		Token:      option,
		Symbol:     "WETH-250C",
		Underlying: "WETH",
		Type:       Call,
		Strike:     "250",
		Expiry:     2_000_000_000,
	}))
	require.Error(t, r.Register(&Instrument{Token: option}), "duplicate registration")

	tests := []struct {
		name     string
		maker    common.Address
		taker    common.Address
		wantSide Side
		wantOK   bool
	}{
		{"maker sells option for quote", option, quote, Ask, true},
		{"maker buys option with quote", quote, option, Bid, true},
		{"unknown maker asset", stranger, quote, 0, false},
		{"unknown taker asset", quote, stranger, 0, false},
		{"neither side is quote", option, stranger, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, side, ok := r.Classify(tt.maker, tt.taker)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				require.Equal(t, option, in)
				require.Equal(t, tt.wantSide, side)
			}
		})
	}
}
