package publish

import (
	"log/slog"

	"github.com/mxwhit/marquee/models"
)

// Publisher pushes a freshly observed playback state out to anything
// that renders it. Implementations must tolerate being called on every
// change event and should never block the poll loop.
type Publisher interface {
	Publish(np *models.NowPlaying) error
}

// Fanout delivers one update to several publishers. A failing adapter
// is logged and skipped so the rest still receive the update.
type Fanout struct {
	publishers []Publisher
}

func NewFanout(publishers ...Publisher) *Fanout {
	return &Fanout{publishers: publishers}
}

func (f *Fanout) Publish(np *models.NowPlaying) error {
	for _, p := range f.publishers {
		if err := p.Publish(np); err != nil {
			slog.Error("Failed to publish update", slog.String("error", err.Error()))
		}
	}
	return nil
}
