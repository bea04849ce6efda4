package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mxwhit/marquee/models"
)

func TestProgress_Percent(t *testing.T) {
	observed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	p := Progress{
		Position:   30 * time.Second,
		Duration:   200 * time.Second,
		Playing:    true,
		ObservedAt: observed,
	}

	// 1. Five seconds after the last poll a playing track has moved on
	assert.Equal(t, 35*time.Second, p.At(observed.Add(5*time.Second)))
	assert.InDelta(t, 17.5, p.Percent(observed.Add(5*time.Second)), 1e-9)

	// 2. A paused track stays put no matter how long we look away
	p.Playing = false
	assert.Equal(t, 30*time.Second, p.At(observed.Add(time.Hour)))
	assert.InDelta(t, 15.0, p.Percent(observed.Add(time.Hour)), 1e-9)

	// 3. The simulation never runs past the end of the song
	p.Playing = true
	assert.Equal(t, 200*time.Second, p.At(observed.Add(time.Hour)))
	assert.InDelta(t, 100.0, p.Percent(observed.Add(time.Hour)), 1e-9)
}

func TestProgress_ZeroDuration(t *testing.T) {
	p := Progress{Playing: true, ObservedAt: time.Now()}
	assert.Zero(t, p.Percent(time.Now()))
}

func TestProgressFrom(t *testing.T) {
	observed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	np := &models.NowPlaying{
		Status:          models.StatusPlaying,
		IsActive:        true,
		PositionSeconds: 30,
		DurationSeconds: 200,
		ObservedAt:      observed,
	}

	p := ProgressFrom(np)
	assert.Equal(t, 30*time.Second, p.Position)
	assert.Equal(t, 200*time.Second, p.Duration)
	assert.Equal(t, observed, p.ObservedAt)
	assert.True(t, p.Playing)

	// Paused and stopped tracks don't advance
	np.Status = models.StatusPaused
	assert.False(t, ProgressFrom(np).Playing)

	// Neither does an active status on a retired play
	np.Status = models.StatusPlaying
	np.IsActive = false
	assert.False(t, ProgressFrom(np).Playing)

	assert.Equal(t, Progress{}, ProgressFrom(nil))
}
