package api

// Response types for the REST endpoints and WebSocket messages. Amounts are
// decimal strings: they are base-unit big integers and do not fit JSON
// numbers.

// ==============================
// REST Response Types
// ==============================

// InstrumentInfo describes one tradable option contract.
type InstrumentInfo struct {
	Token      string `json:"token"`
	Symbol     string `json:"symbol"`
	Underlying string `json:"underlying"`
	Type       string `json:"type"`   // "Call" or "Put"
	Strike     string `json:"strike"` // quote units
	Expiry     int64  `json:"expiry"` // unix seconds
}

// OrderEntry is one resting order as served to readers.
type OrderEntry struct {
	OrderHash   string `json:"orderHash"`
	Maker       string `json:"maker"`
	MakerAmount string `json:"makerAmount"`
	TakerAmount string `json:"takerAmount"`
	Remaining   string `json:"remainingFillableTakerAmount"`
	Expiry      int64  `json:"expiry"`
}

// BookResponse is the current state of one instrument's book.
type BookResponse struct {
	Instrument string       `json:"instrument"`
	Bids       []OrderEntry `json:"bids"` // sorted best (highest) price first
	Asks       []OrderEntry `json:"asks"` // sorted best (lowest) price first
	Timestamp  int64        `json:"timestamp"` // unix milliseconds
}

// QuoteResponse is a simulated fill preview.
type QuoteResponse struct {
	Instrument  string   `json:"instrument"`
	Side        string   `json:"side"` // which list was walked
	Mode        string   `json:"mode"` // "sell" (output for input) or "buy" (input for output)
	Amount      string   `json:"amount"`
	Total       string   `json:"total"`
	OrderHashes []string `json:"orderHashes"` // consumed orders in fill order
	FillAmounts []string `json:"fillAmounts"` // taker amount taken per order
}

// ErrorResponse is returned for all errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ==============================
// WebSocket Message Types
// ==============================

// WSSubscribeRequest is sent by clients to manage channel subscriptions.
type WSSubscribeRequest struct {
	Op       string   `json:"op"`       // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"` // e.g. ["book:0x1111..."]
}

// BookUpdate is broadcast whenever an instrument's book changes.
type BookUpdate struct {
	Type       string       `json:"type"` // "book"
	Instrument string       `json:"instrument"`
	Bids       []OrderEntry `json:"bids"`
	Asks       []OrderEntry `json:"asks"`
	Timestamp  int64        `json:"timestamp"`
}
