package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "PHASE_FILE", "NATS_URL", "METRICS_ENABLED", "TICK_INTERVAL", "NATS_SUBJECT_PREFIX"} {
		t.Setenv(key, "")
	}

	cfg := NewConfigFromEnv()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.PhaseFile)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, "nightreign", cfg.NATSSubjectPrefix)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, time.Second, cfg.TickInterval)
}

func TestNewConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("TICK_INTERVAL", "250ms")
	t.Setenv("NATS_URL", "nats://broker:4222")

	cfg := NewConfigFromEnv()
	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "nats://broker:4222", cfg.NATSURL)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("METRICS_ENABLED", "maybe")
	t.Setenv("TICK_INTERVAL", "-1s")

	cfg := NewConfigFromEnv()
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, time.Second, cfg.TickInterval)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SHARE_TITLE=From dotenv\n"), 0o600))
	t.Setenv("SHARE_TITLE", "")
	require.NoError(t, os.Unsetenv("SHARE_TITLE"))

	LoadDotEnv(path)
	assert.Equal(t, "From dotenv", NewConfigFromEnv().ShareTitle)

	// missing files are not fatal
	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetupLogging("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetupLogging("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
