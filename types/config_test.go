package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, time.Duration(0), cfg.PollTimeout, "unbounded polling must be an explicit default, not an accident")
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, uint(3), cfg.RecordAttempts)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PAYFLOW_POLL_INTERVAL", "250ms")
	t.Setenv("PAYFLOW_POLL_TIMEOUT", "2m")
	t.Setenv("PAYFLOW_BUILDER_URL", "http://localhost:3001/api/create-transaction")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 2*time.Minute, cfg.PollTimeout)
	assert.Equal(t, "http://localhost:3001/api/create-transaction", cfg.BuilderURL)
}

func TestConfig_Normalize(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()

	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, uint(3), cfg.RecordAttempts)
	assert.Equal(t, time.Duration(0), cfg.PollTimeout)
}
