package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/models"
)

// ErrNotPlaying means the player is reachable but has nothing loaded, or
// no player is running at all. The poller turns it into a stop rather
// than treating it as a failure.
var ErrNotPlaying = errors.New("nothing is playing")

// Source is a local media player that can be asked what it's doing right now.
type Source interface {
	Name() string
	NowPlaying(ctx context.Context) (models.Observation, error)
}

// ForConfig picks the player backend named in the config.
func ForConfig(cfg config.Config) (Source, error) {
	switch cfg.Player.Backend {
	case "mpris":
		return NewMPRISSource(cfg), nil
	case "mpd":
		return NewMPDSource(cfg), nil
	default:
		return nil, fmt.Errorf("unknown player backend %q", cfg.Player.Backend)
	}
}
