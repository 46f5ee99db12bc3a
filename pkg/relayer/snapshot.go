package relayer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/oddlot/optionbook/pkg/book"
	"github.com/oddlot/optionbook/pkg/util"
)

// Fetcher pulls full per-instrument order snapshots from the relayer's REST
// endpoint and loads them into the store. A snapshot replaces the whole book,
// which is what makes reconnect recovery sound.
type Fetcher struct {
	baseURL  string
	client   *http.Client
	registry *book.Registry
	store    *book.Store
	clock    util.Clock
	perPage  int
	log      *zap.SugaredLogger
}

// NewFetcher builds a fetcher for the relayer at baseURL. client may be nil
// for a default with a sane timeout.
func NewFetcher(baseURL string, client *http.Client, registry *book.Registry, store *book.Store, clock util.Clock, perPage int, log *zap.SugaredLogger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if perPage <= 0 {
		perPage = 100
	}
	return &Fetcher{
		baseURL:  baseURL,
		client:   client,
		registry: registry,
		store:    store,
		clock:    clock,
		perPage:  perPage,
		log:      log,
	}
}

// Reload fetches every registered instrument. Instruments that fail keep
// their previous book; the first error is returned after all are attempted so
// the feed can decide whether the reconnect is healthy.
func (f *Fetcher) Reload(ctx context.Context) error {
	var firstErr error
	for _, in := range f.registry.List() {
		if err := f.FetchInstrument(ctx, in.Token); err != nil {
			f.log.Warnw("snapshot_failed", "instrument", in.Token.Hex(), "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// FetchInstrument loads one instrument's book from the snapshot endpoint,
// following pagination until both sides are complete. Transient HTTP errors
// are retried briefly before giving up.
func (f *Fetcher) FetchInstrument(ctx context.Context, instrument common.Address) error {
	var bids, asks []*book.RestingOrder

	page := 1
	for {
		resp, err := f.fetchPage(ctx, instrument, page)
		if err != nil {
			return err
		}

		bids = append(bids, f.decodeRecords(instrument, book.Bid, resp.Bids.Records)...)
		asks = append(asks, f.decodeRecords(instrument, book.Ask, resp.Asks.Records)...)

		if len(bids) >= resp.Bids.Total && len(asks) >= resp.Asks.Total {
			break
		}
		if len(resp.Bids.Records) == 0 && len(resp.Asks.Records) == 0 {
			// Totals promise more than the endpoint delivers; stop rather
			// than loop forever.
			break
		}
		page++
	}

	f.store.Load(instrument, bids, asks, f.clock.Now().Unix())
	return nil
}

func (f *Fetcher) fetchPage(ctx context.Context, instrument common.Address, page int) (*SnapshotResponse, error) {
	u, err := url.Parse(f.baseURL + "/orderbook")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("baseAssetAddress", instrument.Hex())
	q.Set("quoteAssetAddress", f.registry.QuoteAsset().Hex())
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(f.perPage))
	u.RawQuery = q.Encode()

	var out *SnapshotResponse
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("snapshot %s: status %d", u.String(), resp.StatusCode)
		}
		var body SnapshotResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return err
		}
		out = &body
		return nil
	}

	sched := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, sched); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeRecords decodes a page side, dropping malformed records and records
// whose asset pair does not match the requested instrument/side.
func (f *Fetcher) decodeRecords(instrument common.Address, side book.Side, records []RawRecord) []*book.RestingOrder {
	out := make([]*book.RestingOrder, 0, len(records))
	for i := range records {
		order, makerAsset, takerAsset, err := decodeRecord(&records[i])
		if err != nil {
			f.log.Debugw("snapshot_record_dropped", "err", err)
			continue
		}
		gotInstrument, gotSide, ok := f.registry.Classify(makerAsset, takerAsset)
		if !ok || gotInstrument != instrument || gotSide != side {
			continue
		}
		out = append(out, order)
	}
	return out
}

// RunPeriodic refreshes all instruments on a fixed interval until ctx ends.
func (f *Fetcher) RunPeriodic(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.clock.After(interval):
			if err := f.Reload(ctx); err != nil {
				f.log.Warnw("periodic_snapshot_failed", "err", err)
			}
		}
	}
}
