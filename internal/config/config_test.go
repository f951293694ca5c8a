package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	cfg := &Config{}
	var got *Config
	cmd := NewCommand(cfg, func(_ context.Context, c *Config) error {
		got = c
		return nil
	})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	return got, nil
}

func TestDefaults(t *testing.T) {
	cfg, err := parse(t)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5050", cfg.TCPAddr())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, 64, cfg.HeaderLen)
	assert.Equal(t, 500, cfg.ScoreLimit)
	assert.Equal(t, 60*time.Second, cfg.RoundDuration)
	assert.True(t, cfg.Bot)
	assert.Equal(t, 2*time.Second, cfg.WriteTimeout)
}

func TestFlagsAndEnv(t *testing.T) {
	t.Setenv("SKETCHROOM_SCORE_LIMIT", "120")
	t.Setenv("SKETCHROOM_ROUND_DURATION", "30s")
	t.Setenv("SKETCHROOM_PORT", "6000")

	cfg, err := parse(t, "--port", "7000", "--http-port", "0", "--bot=false")
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.ScoreLimit)
	assert.Equal(t, 30*time.Second, cfg.RoundDuration)
	assert.Equal(t, 7000, cfg.Port, "explicit flag wins over env")
	assert.Empty(t, cfg.HTTPAddr())
	assert.False(t, cfg.Bot)
}

func TestValidate(t *testing.T) {
	_, err := parse(t, "--port", "0")
	assert.ErrorContains(t, err, "invalid port")

	_, err = parse(t, "--port", "8080")
	assert.ErrorContains(t, err, "must differ")

	_, err = parse(t, "--round-duration", "1s")
	assert.ErrorContains(t, err, "round duration")

	_, err = parse(t, "--header-len", "4")
	assert.ErrorContains(t, err, "header length")

	_, err = parse(t, "--write-timeout", "0s")
	assert.ErrorContains(t, err, "write timeout")
}
