package relayer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/oddlot/optionbook/pkg/book"
	"github.com/oddlot/optionbook/pkg/util"
)

const (
	ordersChannel = "orders"

	readWait  = 60 * time.Second
	pingEvery = 54 * time.Second
	writeWait = 10 * time.Second
)

// Reloader is what the feed needs from the snapshot side: a full refresh of
// every instrument. Merges after a connection gap are only trusted once a
// reload has replaced whatever the gap left stale.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Feed maintains the websocket subscription to the relayer and folds order
// events into the store as merges. On every (re)connect it first subscribes,
// then forces a snapshot reload before processing events.
type Feed struct {
	url      string
	registry *book.Registry
	store    *book.Store
	reloader Reloader
	clock    util.Clock
	log      *zap.SugaredLogger

	reqID atomic.Uint64
}

// NewFeed wires a feed against the given relayer websocket URL.
func NewFeed(url string, registry *book.Registry, store *book.Store, reloader Reloader, clock util.Clock, log *zap.SugaredLogger) *Feed {
	return &Feed{
		url:      url,
		registry: registry,
		store:    store,
		reloader: reloader,
		clock:    clock,
		log:      log,
	}
}

// Run dials, subscribes and reads until ctx is done. Connection loss restarts
// the whole cycle under an exponential backoff that resets after a healthy
// connection.
func (f *Feed) Run(ctx context.Context) error {
	sched := backoff.NewExponentialBackOff()
	sched.MaxElapsedTime = 0 // retry forever, the book is useless without us

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		err := f.runConn(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Since(start) > time.Minute {
			sched.Reset()
		}

		wait := sched.NextBackOff()
		f.log.Warnw("feed_disconnected", "err", err, "retry_in", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// runConn handles one connection: dial, subscribe, reload, read loop.
func (f *Feed) runConn(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", f.url, err)
	}
	defer conn.Close()

	if err := f.subscribe(conn); err != nil {
		return err
	}
	f.log.Infow("feed_connected", "url", f.url)

	// A fresh connection may have missed events; incremental merges cannot
	// rebuild across a gap, so reload everything before trusting them.
	// Events buffered between subscribe and the reload finishing can still
	// carry state older than the snapshot; a merge of one briefly regresses
	// an order's Remaining until the next periodic reload corrects it.
	if err := f.reloader.Reload(ctx); err != nil {
		return fmt.Errorf("post-connect reload: %w", err)
	}

	// Close the connection when ctx ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	go f.pingLoop(conn, done)

	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		f.HandleMessage(message)
	}
}

func (f *Feed) subscribe(conn *websocket.Conn) error {
	req := SubscribeRequest{
		Type:      "subscribe",
		Channel:   ordersChannel,
		RequestID: fmt.Sprintf("sub-%d", f.reqID.Add(1)),
		Payload: SubscribePayload{
			QuoteAssetAddress: f.registry.QuoteAsset().Hex(),
		},
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(req)
}

func (f *Feed) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// HandleMessage decodes one feed frame and merges every classifiable record.
// Records that fail to decode or touch no known instrument are dropped
// without error; there is nothing actionable in them.
func (f *Feed) HandleMessage(message []byte) {
	var ev EventMessage
	if err := json.Unmarshal(message, &ev); err != nil {
		f.log.Debugw("feed_frame_dropped", "err", err)
		return
	}
	if ev.Channel != ordersChannel {
		return
	}
	f.mergeRecords(ev.Payload)
}

func (f *Feed) mergeRecords(records []RawRecord) {
	now := f.clock.Now().Unix()
	for i := range records {
		order, makerAsset, takerAsset, err := decodeRecord(&records[i])
		if err != nil {
			f.log.Debugw("feed_record_dropped", "err", err)
			continue
		}
		instrument, side, ok := f.registry.Classify(makerAsset, takerAsset)
		if !ok {
			continue
		}
		f.store.Merge(instrument, side, order, now)
	}
}
