package book

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func resting(hash byte, maker, taker, remaining, expiry int64) *RestingOrder {
	return &RestingOrder{
		Order: Order{
			Hash:        common.Hash{hash},
			Maker:       common.Address{0xaa},
			MakerAmount: big.NewInt(maker),
			TakerAmount: big.NewInt(taker),
			Expiry:      expiry,
		},
		Remaining: big.NewInt(remaining),
	}
}

func TestIsFillable(t *testing.T) {
	const now = 1_000_000

	tests := []struct {
		name  string
		order *RestingOrder
		want  bool
	}{
		{
			name:  "live and full size",
			order: resting(1, 100, 10, 10, now+3600),
			want:  true,
		},
		{
			name:  "already expired",
			order: resting(2, 100, 10, 10, now-1),
			want:  false,
		},
		{
			name:  "inside expiry buffer",
			order: resting(3, 100, 10, 10, now+ExpiryBufferSeconds),
			want:  false,
		},
		{
			name:  "just past expiry buffer",
			order: resting(4, 100, 10, 10, now+ExpiryBufferSeconds+1),
			want:  true,
		},
		{
			name:  "dust at exactly five percent",
			order: resting(5, 1000, 100, 5, now+3600),
			want:  false,
		},
		{
			name:  "just above dust threshold",
			order: resting(6, 1000, 100, 6, now+3600),
			want:  true,
		},
		{
			name:  "fully filled",
			order: resting(7, 100, 10, 0, now+3600),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsFillable(tt.order, now))
		})
	}
}
