package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Marquee.Port)
	assert.Equal(t, "marquee.db", cfg.Marquee.DbPath)
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Equal(t, time.Second, cfg.DriftTolerance())
	assert.Equal(t, true, cfg.Marquee.BackgroundJobsEnabled)
	assert.Equal(t, "mpris", cfg.Player.Backend)
	assert.Equal(t, "localhost:6600", cfg.Player.MPDAddress)
	assert.Equal(t, defaultLastFMAPIKey, cfg.LastFM.APIKey)
	assert.NotEmpty(t, cfg.Artwork.CacheDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MARQUEE_PORT", "9090")
	t.Setenv("POLL_INTERVAL_SECONDS", "5")
	t.Setenv("POSITION_DRIFT_SECONDS", "3")
	t.Setenv("PLAYER_BACKEND", "mpd")
	t.Setenv("MPD_ADDRESS", "media.local:6600")
	t.Setenv("LASTFM_API_KEY", "deadbeef")
	t.Setenv("BACKGROUND_JOBS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Marquee.Port)
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 3*time.Second, cfg.DriftTolerance())
	assert.Equal(t, "mpd", cfg.Player.Backend)
	assert.Equal(t, "media.local:6600", cfg.Player.MPDAddress)
	assert.Equal(t, "deadbeef", cfg.LastFM.APIKey)
	assert.Equal(t, false, cfg.Marquee.BackgroundJobsEnabled)
}

func TestGetLogLevel(t *testing.T) {
	cases := map[string]slog.Leveler{
		"error":    slog.LevelError,
		"warning":  slog.LevelWarn,
		"info":     slog.LevelInfo,
		"debug":    slog.LevelDebug,
		"DEBUG":    slog.LevelDebug,
		"verbose":  slog.LevelInfo,
		"anything": slog.LevelInfo,
	}

	for input, expected := range cases {
		cfg := Config{Marquee: MarqueeConfig{LogLevel: input}}
		assert.Equal(t, expected, cfg.GetLogLevel(), "level %q", input)
	}
}
