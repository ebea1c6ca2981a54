package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("CAREER_API_URL", "http://env/api")
	t.Setenv("CAREER_RATE_LIMIT", "0.5")
	t.Setenv("CAREER_REQUEST_TIMEOUT", "1m")
	t.Setenv("CAREER_EPHEMERAL", "true")

	cfg := &Config{KeyPath: "keep.key"}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "http://env/api", cfg.APIBaseURL)
	assert.Equal(t, 0.5, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RequestTimeout)
	assert.True(t, cfg.Ephemeral)
	assert.Equal(t, "keep.key", cfg.KeyPath)
}

func TestParseEnv_BadValue(t *testing.T) {
	t.Setenv("CAREER_REQUEST_TIMEOUT", "whenever")

	assert.Error(t, parseEnv(&Config{}))
}
