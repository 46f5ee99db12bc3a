package params

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Relayer locates the order relayer endpoints.
type Relayer struct {
	HTTPURL string // snapshot REST base, e.g. https://relayer.example.com/v2
	WSURL   string // order event feed, e.g. wss://relayer.example.com/v2/ws

	// SnapshotInterval paces the periodic full reloads that correct any
	// drift the incremental feed accumulates.
	SnapshotInterval time.Duration
	SnapshotPerPage  int
}

// Book holds the order book maintenance knobs.
type Book struct {
	// SweepInterval is how often time-expired orders are purged. Nothing in
	// the feed announces expiry by clock, so this cannot be event-driven.
	SweepInterval time.Duration
}

// Market binds the engine to one quote asset and a set of option tokens.
type Market struct {
	QuoteAsset  string   // quote asset token address
	Instruments []string // option token addresses, comma-separated in env
}

type Config struct {
	Relayer Relayer
	Book    Book
	Market  Market
	APIAddr string
	LogFile string
}

func Default() Config {
	return Config{
		Relayer: Relayer{
			HTTPURL:          "http://localhost:4000/v2",
			WSURL:            "ws://localhost:4000/v2/ws",
			SnapshotInterval: 30 * time.Second,
			SnapshotPerPage:  100,
		},
		Book: Book{
			SweepInterval: 5 * time.Second,
		},
		Market: Market{
			QuoteAsset: "0x0000000000000000000000000000000000000000",
		},
		APIAddr: ":8080",
		LogFile: "data/bookd.log",
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("RELAYER_HTTP_URL"); v != "" {
		cfg.Relayer.HTTPURL = v
	}
	if v := os.Getenv("RELAYER_WS_URL"); v != "" {
		cfg.Relayer.WSURL = v
	}
	if v := os.Getenv("SNAPSHOT_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Relayer.SnapshotInterval = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("SNAPSHOT_PER_PAGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Relayer.SnapshotPerPage = n
		}
	}
	if v := os.Getenv("SWEEP_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Book.SweepInterval = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("QUOTE_ASSET"); v != "" {
		cfg.Market.QuoteAsset = v
	}
	if v := os.Getenv("INSTRUMENTS"); v != "" {
		// Example: "0xabc...,0xdef..."
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				cfg.Market.Instruments = append(cfg.Market.Instruments, addr)
			}
		}
	}
	if v := os.Getenv("API_ADDR"); v != "" {
		cfg.APIAddr = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	return cfg
}
