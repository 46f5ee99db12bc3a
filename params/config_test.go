package params

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("RELAYER_HTTP_URL", "https://relayer.test/v2")
	t.Setenv("SNAPSHOT_INTERVAL_MS", "1500")
	t.Setenv("SWEEP_INTERVAL_MS", "250")
	t.Setenv("INSTRUMENTS", " 0x1111111111111111111111111111111111111111 ,0x2222222222222222222222222222222222222222,")

	cfg := LoadFromEnv("")
	require.Equal(t, "https://relayer.test/v2", cfg.Relayer.HTTPURL)
	require.Equal(t, 1500*time.Millisecond, cfg.Relayer.SnapshotInterval)
	require.Equal(t, 250*time.Millisecond, cfg.Book.SweepInterval)
	require.Len(t, cfg.Market.Instruments, 2)
	require.Equal(t, "0x1111111111111111111111111111111111111111", cfg.Market.Instruments[0])
}

func TestLoadFromEnvKeepsDefaultOnBadInterval(t *testing.T) {
	// A zero or negative interval would turn the timer loops into busy loops.
	t.Setenv("SNAPSHOT_INTERVAL_MS", "0")
	t.Setenv("SWEEP_INTERVAL_MS", "-50")
	t.Setenv("SNAPSHOT_PER_PAGE", "not-a-number")

	cfg := LoadFromEnv("")
	def := Default()
	require.Equal(t, def.Relayer.SnapshotInterval, cfg.Relayer.SnapshotInterval)
	require.Equal(t, def.Book.SweepInterval, cfg.Book.SweepInterval)
	require.Equal(t, def.Relayer.SnapshotPerPage, cfg.Relayer.SnapshotPerPage)
}
