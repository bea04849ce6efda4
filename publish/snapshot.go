package publish

import (
	"sync"

	"github.com/mxwhit/marquee/models"
)

// Snapshot is the pull adapter: it keeps hold of the latest published
// payload for anything that polls /api/current-song.
type Snapshot struct {
	mu     sync.RWMutex
	latest *models.NowPlaying
}

func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

func (s *Snapshot) Publish(np *models.NowPlaying) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = np
	return nil
}

// Latest returns nil until something has been published, which callers
// render as a JSON null.
func (s *Snapshot) Latest() *models.NowPlaying {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
