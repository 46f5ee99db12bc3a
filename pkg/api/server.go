package api

import (
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/oddlot/optionbook/pkg/book"
	"github.com/oddlot/optionbook/pkg/sim"
)

// Server exposes the live books and quote previews over REST, plus a
// WebSocket channel per instrument for push updates. It only ever reads the
// store; nothing on this surface mutates book state.
type Server struct {
	store    *book.Store
	registry *book.Registry
	router   *mux.Router
	hub      *Hub
	log      *zap.SugaredLogger
}

func NewServer(store *book.Store, registry *book.Registry, log *zap.SugaredLogger) *Server {
	s := &Server{
		store:    store,
		registry: registry,
		router:   mux.NewRouter(),
		hub:      NewHub(log),
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/instruments", s.handleListInstruments).Methods("GET")
	api.HandleFunc("/instruments/{token}/book", s.handleGetBook).Methods("GET")
	api.HandleFunc("/instruments/{token}/quote", s.handleQuote).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.log.Infow("api_listening", "addr", addr)
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleListInstruments(w http.ResponseWriter, r *http.Request) {
	instruments := s.registry.List()
	response := make([]InstrumentInfo, len(instruments))
	for i, in := range instruments {
		response[i] = InstrumentInfo{
			Token:      in.Token.Hex(),
			Symbol:     in.Symbol,
			Underlying: in.Underlying,
			Type:       in.Type.String(),
			Strike:     in.Strike,
			Expiry:     in.Expiry,
		}
	}
	respondJSON(w, response)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	token, ok := s.instrumentFromPath(w, r)
	if !ok {
		return
	}

	b, ok := s.store.Book(token)
	if !ok {
		respondError(w, http.StatusNotFound, "no book for instrument", "")
		return
	}

	respondJSON(w, BookResponse{
		Instrument: token.Hex(),
		Bids:       toEntries(b.Bids),
		Asks:       toEntries(b.Asks),
		Timestamp:  time.Now().UnixMilli(),
	})
}

// handleQuote runs the fill simulator against a fresh copy of the book.
// side selects the list to walk ("asks" or "bids"); mode=sell computes the
// output received for the given input, mode=buy the input required for the
// given output.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	token, ok := s.instrumentFromPath(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	var side book.Side
	switch q.Get("side") {
	case "asks":
		side = book.Ask
	case "bids":
		side = book.Bid
	default:
		respondError(w, http.StatusBadRequest, "side must be asks or bids", "")
		return
	}

	mode := q.Get("mode")
	if mode != "sell" && mode != "buy" {
		respondError(w, http.StatusBadRequest, "mode must be sell or buy", "")
		return
	}

	amount, okAmount := new(big.Int).SetString(q.Get("amount"), 10)
	if !okAmount || amount.Sign() < 0 {
		respondError(w, http.StatusBadRequest, "amount must be a non-negative integer", "")
		return
	}

	b, ok := s.store.Book(token)
	if !ok {
		respondError(w, http.StatusNotFound, "no book for instrument", "")
		return
	}
	orders := b.Asks
	if side == book.Bid {
		orders = b.Bids
	}

	var (
		res sim.Result
		err error
	)
	if mode == "sell" {
		res, err = sim.OutputForInput(orders, amount)
	} else {
		res, err = sim.InputForOutput(orders, amount)
	}
	if err != nil {
		respondError(w, http.StatusConflict, "insufficient liquidity", err.Error())
		return
	}

	hashes := make([]string, len(res.ConsumedOrders))
	fills := make([]string, len(res.FillAmounts))
	for i, o := range res.ConsumedOrders {
		hashes[i] = o.Hash.Hex()
		fills[i] = res.FillAmounts[i].String()
	}

	respondJSON(w, QuoteResponse{
		Instrument:  token.Hex(),
		Side:        side.String(),
		Mode:        mode,
		Amount:      amount.String(),
		Total:       res.Total.String(),
		OrderHashes: hashes,
		FillAmounts: fills,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Broadcast
// ==============================

// BroadcastBook pushes the instrument's current book to subscribed clients.
// Wired to the store's OnUpdate hook.
func (s *Server) BroadcastBook(instrument common.Address) {
	b, ok := s.store.Book(instrument)
	if !ok {
		return
	}
	s.hub.BroadcastToChannel("book:"+instrument.Hex(), BookUpdate{
		Type:       "book",
		Instrument: instrument.Hex(),
		Bids:       toEntries(b.Bids),
		Asks:       toEntries(b.Asks),
		Timestamp:  time.Now().UnixMilli(),
	})
}

// ==============================
// Helpers
// ==============================

func (s *Server) instrumentFromPath(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	raw := mux.Vars(r)["token"]
	if !common.IsHexAddress(raw) {
		respondError(w, http.StatusBadRequest, "invalid instrument address", "")
		return common.Address{}, false
	}
	token := common.HexToAddress(raw)
	if _, ok := s.registry.Lookup(token); !ok {
		respondError(w, http.StatusNotFound, "unknown instrument", "")
		return common.Address{}, false
	}
	return token, true
}

func toEntries(orders []*book.RestingOrder) []OrderEntry {
	out := make([]OrderEntry, len(orders))
	for i, o := range orders {
		out[i] = OrderEntry{
			OrderHash:   o.Hash.Hex(),
			Maker:       o.Maker.Hex(),
			MakerAmount: o.MakerAmount.String(),
			TakerAmount: o.TakerAmount.String(),
			Remaining:   o.Remaining.String(),
			Expiry:      o.Expiry,
		}
	}
	return out
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: error, Message: message})
}
