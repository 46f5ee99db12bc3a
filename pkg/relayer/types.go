// Package relayer talks to the order relayer: a websocket feed of incremental
// order events and a paginated REST snapshot endpoint. Both deliver the same
// raw record shape, which gets classified against the instrument registry and
// folded into the book store as Merge and Load actions.
package relayer

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/oddlot/optionbook/pkg/book"
)

// RawOrder is one resting order as the relayer serializes it. Amounts are
// decimal strings in base units.
type RawOrder struct {
	MakerAssetAddress     string `json:"makerAssetAddress"`
	TakerAssetAddress     string `json:"takerAssetAddress"`
	MakerAssetAmount      string `json:"makerAssetAmount"`
	TakerAssetAmount      string `json:"takerAssetAmount"`
	ExpirationTimeSeconds string `json:"expirationTimeSeconds"`
	MakerAddress          string `json:"makerAddress"`
}

// RawRecord pairs an order with its fill metadata.
type RawRecord struct {
	OrderHash string     `json:"orderHash"`
	Order     RawOrder   `json:"order"`
	MetaData  RecordMeta `json:"metaData"`
}

// RecordMeta carries the mutable fill state the relayer tracks per order.
type RecordMeta struct {
	RemainingFillableTakerAssetAmount string `json:"remainingFillableTakerAssetAmount"`
}

// SubscribeRequest is sent once per websocket connection to select order
// updates for everything quoted against our quote asset.
type SubscribeRequest struct {
	Type      string           `json:"type"`    // "subscribe"
	Channel   string           `json:"channel"` // "orders"
	RequestID string           `json:"requestId"`
	Payload   SubscribePayload `json:"payload"`
}

// SubscribePayload filters the subscription by quote asset.
type SubscribePayload struct {
	QuoteAssetAddress string `json:"quoteAssetAddress"`
}

// EventMessage is an inbound feed frame: a batch of raw records.
type EventMessage struct {
	Type      string      `json:"type"`
	Channel   string      `json:"channel"`
	RequestID string      `json:"requestId"`
	Payload   []RawRecord `json:"payload"`
}

// SnapshotPage is one side of a paginated snapshot response.
type SnapshotPage struct {
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"perPage"`
	Records []RawRecord `json:"records"`
}

// SnapshotResponse is the body of the snapshot endpoint.
type SnapshotResponse struct {
	Bids SnapshotPage `json:"bids"`
	Asks SnapshotPage `json:"asks"`
}

// decodeRecord turns a raw record into a resting order plus its asset pair.
// Any malformed field is an error; callers drop such records rather than
// propagate them.
func decodeRecord(rec *RawRecord) (*book.RestingOrder, common.Address, common.Address, error) {
	var zero common.Address

	if !common.IsHexAddress(rec.Order.MakerAssetAddress) {
		return nil, zero, zero, fmt.Errorf("bad makerAssetAddress %q", rec.Order.MakerAssetAddress)
	}
	if !common.IsHexAddress(rec.Order.TakerAssetAddress) {
		return nil, zero, zero, fmt.Errorf("bad takerAssetAddress %q", rec.Order.TakerAssetAddress)
	}
	if !common.IsHexAddress(rec.Order.MakerAddress) {
		return nil, zero, zero, fmt.Errorf("bad makerAddress %q", rec.Order.MakerAddress)
	}

	makerAmount, ok := new(big.Int).SetString(rec.Order.MakerAssetAmount, 10)
	if !ok || makerAmount.Sign() <= 0 {
		return nil, zero, zero, fmt.Errorf("bad makerAssetAmount %q", rec.Order.MakerAssetAmount)
	}
	takerAmount, ok := new(big.Int).SetString(rec.Order.TakerAssetAmount, 10)
	if !ok || takerAmount.Sign() <= 0 {
		return nil, zero, zero, fmt.Errorf("bad takerAssetAmount %q", rec.Order.TakerAssetAmount)
	}
	remaining, ok := new(big.Int).SetString(rec.MetaData.RemainingFillableTakerAssetAmount, 10)
	if !ok || remaining.Sign() < 0 {
		return nil, zero, zero, fmt.Errorf("bad remainingFillableTakerAssetAmount %q", rec.MetaData.RemainingFillableTakerAssetAmount)
	}

	expiry, ok := new(big.Int).SetString(rec.Order.ExpirationTimeSeconds, 10)
	if !ok || !expiry.IsInt64() {
		return nil, zero, zero, fmt.Errorf("bad expirationTimeSeconds %q", rec.Order.ExpirationTimeSeconds)
	}

	hash, err := decodeHash(rec.OrderHash)
	if err != nil {
		return nil, zero, zero, err
	}

	o := &book.RestingOrder{
		Order: book.Order{
			Hash:        hash,
			Maker:       common.HexToAddress(rec.Order.MakerAddress),
			MakerAmount: makerAmount,
			TakerAmount: takerAmount,
			Expiry:      expiry.Int64(),
		},
		Remaining: remaining,
	}
	return o, common.HexToAddress(rec.Order.MakerAssetAddress), common.HexToAddress(rec.Order.TakerAssetAddress), nil
}

func decodeHash(s string) (common.Hash, error) {
	if len(s) != 2+2*common.HashLength || s[:2] != "0x" {
		return common.Hash{}, fmt.Errorf("bad orderHash %q", s)
	}
	b := common.FromHex(s)
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("bad orderHash %q", s)
	}
	return common.BytesToHash(b), nil
}
