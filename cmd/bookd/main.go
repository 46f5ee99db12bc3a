package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap/zapcore"

	"github.com/oddlot/optionbook/params"
	"github.com/oddlot/optionbook/pkg/api"
	"github.com/oddlot/optionbook/pkg/book"
	"github.com/oddlot/optionbook/pkg/relayer"
	"github.com/oddlot/optionbook/pkg/util"
)

func main() {
	cfg := params.LoadFromEnv("") // "" means load .env from the current directory

	level := zapcore.InfoLevel
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		level = zapcore.DebugLevel
	}
	logger, err := util.NewLogger(cfg.LogFile, level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if !common.IsHexAddress(cfg.Market.QuoteAsset) {
		sugar.Fatalw("bad_quote_asset", "addr", cfg.Market.QuoteAsset)
	}
	registry := book.NewRegistry(common.HexToAddress(cfg.Market.QuoteAsset))
	for _, raw := range cfg.Market.Instruments {
		if !common.IsHexAddress(raw) {
			sugar.Fatalw("bad_instrument_address", "addr", raw)
		}
		token := common.HexToAddress(raw)
		if err := registry.Register(&book.Instrument{
			Token:  token,
			Symbol: token.Hex()[:10],
		}); err != nil {
			sugar.Fatalw("instrument_register_failed", "addr", raw, "err", err)
		}
	}
	sugar.Infow("registry_ready",
		"quote_asset", cfg.Market.QuoteAsset,
		"instruments", len(cfg.Market.Instruments))

	clock := util.RealClock{}
	store := book.NewStore(sugar)

	fetcher := relayer.NewFetcher(cfg.Relayer.HTTPURL, nil, registry, store, clock, cfg.Relayer.SnapshotPerPage, sugar)
	feed := relayer.NewFeed(cfg.Relayer.WSURL, registry, store, fetcher, clock, sugar)

	apiServer := api.NewServer(store, registry, sugar)
	store.OnUpdate = apiServer.BroadcastBook

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Seed every book before the feed takes over.
	if err := fetcher.Reload(ctx); err != nil {
		sugar.Warnw("initial_snapshot_incomplete", "err", err)
	}

	go store.RunSweeper(ctx, clock, cfg.Book.SweepInterval)
	go fetcher.RunPeriodic(ctx, cfg.Relayer.SnapshotInterval)
	go func() {
		if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
			sugar.Fatalw("feed_failed", "err", err)
		}
	}()

	go func() {
		if err := apiServer.Start(cfg.APIAddr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	sugar.Infow("bookd_started",
		"api_addr", cfg.APIAddr,
		"sweep_interval_ms", cfg.Book.SweepInterval.Milliseconds(),
		"snapshot_interval_ms", cfg.Relayer.SnapshotInterval.Milliseconds())

	<-ctx.Done()
	sugar.Info("bookd_stopping")
}
