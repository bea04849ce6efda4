package display

import (
	"time"

	"github.com/mxwhit/marquee/models"
)

// Progress tracks where a song is up to without hammering the server:
// between polls the position is simulated against the wall clock.
type Progress struct {
	Position   time.Duration
	Duration   time.Duration
	Playing    bool
	ObservedAt time.Time
}

func ProgressFrom(np *models.NowPlaying) Progress {
	if np == nil {
		return Progress{}
	}
	return Progress{
		Position:   time.Duration(np.PositionSeconds * float64(time.Second)),
		Duration:   time.Duration(np.DurationSeconds * float64(time.Second)),
		Playing:    np.Status == models.StatusPlaying && np.IsActive,
		ObservedAt: np.ObservedAt,
	}
}

// At returns the simulated position. Only a playing track advances, and
// never past the end of the song.
func (p Progress) At(now time.Time) time.Duration {
	pos := p.Position
	if p.Playing {
		pos += now.Sub(p.ObservedAt)
	}
	if pos < 0 {
		pos = 0
	}
	if p.Duration > 0 && pos > p.Duration {
		pos = p.Duration
	}
	return pos
}

// Percent returns playback progress as a percentage (0-100).
func (p Progress) Percent(now time.Time) float64 {
	if p.Duration == 0 {
		return 0
	}
	pct := float64(p.At(now)) / float64(p.Duration) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
