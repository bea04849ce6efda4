package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
)

// defaultLastFMAPIKey is the well known sample key from the Last.fm docs.
// It works for unauthenticated metadata lookups but anyone running their
// own instance should really set LASTFM_API_KEY themselves.
const defaultLastFMAPIKey = "b25b959554ed76058ac220b7b2e0a026"

type Config struct {
	Marquee  MarqueeConfig
	Player   PlayerConfig
	Artwork  ArtworkConfig
	LastFM   LastFMConfig
	Pushover PushoverConfig
}

type MarqueeConfig struct {
	Port                  int    `env:"MARQUEE_PORT"`
	LogLevel              string `env:"LOG_LEVEL"`
	DbPath                string `env:"DB_PATH"`
	StorageDir            string `env:"STORAGE_DIR"`
	BackgroundJobsEnabled bool   `env:"BACKGROUND_JOBS_ENABLED"`
	PollIntervalSeconds   int    `env:"POLL_INTERVAL_SECONDS"`
	PositionDriftSeconds  int    `env:"POSITION_DRIFT_SECONDS"`
}

type PlayerConfig struct {
	Backend     string `env:"PLAYER_BACKEND"`
	BusName     string `env:"MPRIS_BUS_NAME"`
	MPDAddress  string `env:"MPD_ADDRESS"`
	MPDPassword string `env:"MPD_PASSWORD"`
	MusicDir    string `env:"MUSIC_DIR"`
}

type ArtworkConfig struct {
	CacheDir string `env:"ARTWORK_CACHE_DIR"`
}

type LastFMConfig struct {
	APIKey string `env:"LASTFM_API_KEY"`
}

type PushoverConfig struct {
	Token     string `env:"PUSHOVER_TOKEN"`
	Recipient string `env:"PUSHOVER_RECIPIENT"`
}

// Load feeds the config struct from the process environment and then
// papers over anything left unset with defaults. An empty environment
// produces a fully working local setup.
func Load() (Config, error) {
	var cfg Config

	c := config.New()
	c.AddFeeder(feeder.Env{})
	c.AddStruct(&cfg)

	if err := c.Feed(); err != nil {
		return cfg, err
	}

	if cfg.Marquee.Port == 0 {
		cfg.Marquee.Port = 8080
	}
	if cfg.Marquee.LogLevel == "" {
		cfg.Marquee.LogLevel = "info"
	}
	if cfg.Marquee.DbPath == "" {
		cfg.Marquee.DbPath = "marquee.db"
	}
	if cfg.Marquee.StorageDir == "" {
		cfg.Marquee.StorageDir = os.TempDir()
	}
	if cfg.Marquee.PollIntervalSeconds == 0 {
		cfg.Marquee.PollIntervalSeconds = 2
	}
	if cfg.Marquee.PositionDriftSeconds == 0 {
		cfg.Marquee.PositionDriftSeconds = 1
	}
	if os.Getenv("BACKGROUND_JOBS_ENABLED") == "" {
		cfg.Marquee.BackgroundJobsEnabled = true
	}
	if cfg.Player.Backend == "" {
		cfg.Player.Backend = "mpris"
	}
	if cfg.Player.MPDAddress == "" {
		cfg.Player.MPDAddress = "localhost:6600"
	}
	if cfg.Artwork.CacheDir == "" {
		cfg.Artwork.CacheDir = defaultCacheDir()
	}
	if cfg.LastFM.APIKey == "" {
		cfg.LastFM.APIKey = defaultLastFMAPIKey
	}

	return cfg, nil
}

// defaultCacheDir points at the freedesktop media-art location which is
// where most Linux players drop downloaded covers. On other platforms it
// still resolves to something sensible under the user cache dir.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "media-art")
	}
	return filepath.Join(base, "media-art")
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Marquee.PollIntervalSeconds) * time.Second
}

func (c *Config) DriftTolerance() time.Duration {
	return time.Duration(c.Marquee.PositionDriftSeconds) * time.Second
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.Marquee.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}
