package playback

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/models"
	"github.com/mxwhit/marquee/publish"
)

// System owns the last known playback state. The poll loop feeds it
// observations, it decides what changed, journals the result and hands
// the fresh payload to the publisher.
type System struct {
	mu             sync.RWMutex
	current        *models.NowPlaying
	driftTolerance time.Duration
	db             *sqlx.DB
	publisher      publish.Publisher
}

func NewSystem(cfg config.Config, db *sqlx.DB, publisher publish.Publisher) *System {
	return &System{
		driftTolerance: cfg.DriftTolerance(),
		db:             db,
		publisher:      publisher,
	}
}

// Current returns the latest known state, nil when nothing has ever
// been observed.
func (s *System) Current() *models.NowPlaying {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Assess classifies an observation against the last known state without
// mutating anything. Position is compared against a wall clock
// expectation: a playing track is expected to have advanced by however
// long it has been since we last looked at it.
func (s *System) Assess(obs models.Observation) ChangeKind {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cur := s.current
	if cur == nil {
		return ChangeTrack
	}
	// Backfilled state has no artwork payload so resolve it fresh
	if cur.Backfilled {
		return ChangeTrack
	}
	if cur.Artist != obs.Track.Artist || cur.Title != obs.Track.Title || cur.Album != obs.Track.Album {
		return ChangeTrack
	}
	if cur.Status != obs.Status {
		return ChangeProgress
	}
	expected := time.Duration(cur.PositionSeconds * float64(time.Second))
	if cur.Status == models.StatusPlaying {
		expected += obs.At.Sub(cur.ObservedAt)
	}
	drift := obs.Position - expected
	if drift < 0 {
		drift = -drift
	}
	if drift > s.driftTolerance {
		return ChangeProgress
	}
	return ChangeNone
}

// ReplaceTrack swaps the whole state over to a new track: any active
// play is closed off, the track metadata is journalled and a new play
// begins. The fresh payload goes out to every publisher.
func (s *System) ReplaceTrack(obs models.Observation, art models.Artwork) error {
	id := GenerateTrackID(obs.Source, obs.Track)

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}

	var committed bool
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec(`
	  UPDATE plays
	  SET is_active = FALSE, status = ?, updated_at = ?
	  WHERE is_active = TRUE`,
		models.StatusStopped, obs.At)
	if err != nil {
		return fmt.Errorf("failed to deactivate old plays: %w", err)
	}

	record := TrackRecord{
		ID:              id,
		Title:           obs.Track.Title,
		Artist:          obs.Track.Artist,
		Album:           obs.Track.Album,
		Duration:        int(obs.Track.Duration.Milliseconds()),
		Source:          obs.Source,
		Image:           art.Location,
		DominantColours: art.Colours,
	}

	// If the track has been played before, a no-op is perfectly fine
	_, err = tx.NamedExec(`
	  INSERT INTO tracks
	  (id, title, artist, album, duration, source, image, dominant_colours)
	  VALUES (:id, :title, :artist, :album, :duration, :source, :image, :dominant_colours)
	  ON CONFLICT (id) DO NOTHING`,
		record)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	_, err = tx.Exec(`
	  INSERT INTO plays
	  (track_id, started_at, elapsed, status, is_active, updated_at)
	  VALUES (?, ?, ?, ?, ?, ?)`,
		id, obs.At, int(obs.Position.Milliseconds()), obs.Status, obs.Status != models.StatusStopped, obs.At)
	if err != nil {
		return fmt.Errorf("failed to insert play: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true

	np := s.buildNowPlaying(obs, art, id)
	s.setCurrent(np)

	slog.Debug("Replaced current track",
		slog.String("track_id", id),
		slog.String("title", np.Title))

	return s.publisher.Publish(np)
}

// UpdateProgress applies a lightweight state change: play/pause flips
// and position corrections. Artwork and track metadata stay untouched.
func (s *System) UpdateProgress(obs models.Observation) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return fmt.Errorf("no current track to update")
	}
	np := *s.current
	np.Status = obs.Status
	np.IsActive = obs.Status != models.StatusStopped
	np.PositionSeconds = obs.Position.Seconds()
	np.ObservedAt = obs.At
	s.current = &np
	s.mu.Unlock()

	res, err := s.db.Exec(`
	  UPDATE plays
	  SET elapsed = ?, status = ?, is_active = ?, updated_at = ?
	  WHERE track_id = ? AND is_active = TRUE`,
		int(obs.Position.Milliseconds()), obs.Status, np.IsActive, obs.At, np.TrackID)
	if err != nil {
		return fmt.Errorf("failed to update play: %w", err)
	}

	// A track picked up again after stopping counts as a new listen
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		_, err = s.db.Exec(`
		  INSERT INTO plays
		  (track_id, started_at, elapsed, status, is_active, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?)`,
			np.TrackID, obs.At, int(obs.Position.Milliseconds()), obs.Status, np.IsActive, obs.At)
		if err != nil {
			return fmt.Errorf("failed to revive play: %w", err)
		}
	}

	slog.Debug("Updated playback progress",
		slog.String("track_id", np.TrackID),
		slog.String("status", string(np.Status)))

	return s.publisher.Publish(&np)
}

// MarkStopped closes off the current play when the player reports
// nothing at all. It only publishes on the first call so a silent
// player doesn't spam clients every poll.
func (s *System) MarkStopped(at time.Time) error {
	s.mu.Lock()
	if s.current == nil || !s.current.IsActive {
		s.mu.Unlock()
		return nil
	}
	np := *s.current
	np.Status = models.StatusStopped
	np.IsActive = false
	np.ObservedAt = at
	s.current = &np
	s.mu.Unlock()

	if _, err := s.db.Exec(`
	  UPDATE plays
	  SET is_active = FALSE, status = ?, updated_at = ?
	  WHERE is_active = TRUE`,
		models.StatusStopped, at); err != nil {
		return fmt.Errorf("failed to deactivate plays: %w", err)
	}

	return s.publisher.Publish(&np)
}

// GetHistory returns completed listens, newest first.
func (s *System) GetHistory(limit int) ([]PlayEntry, error) {
	var results []PlayEntry

	if limit <= 0 {
		return results, fmt.Errorf("must request at least one historical item")
	}

	err := s.db.Select(&results, `
	  SELECT
	    t.id, t.title, t.artist, t.album, t.duration, t.source, t.image, t.dominant_colours,
		p.id as play_id, p.started_at, p.elapsed, p.status, p.is_active, p.updated_at
	  FROM tracks t
	  JOIN plays p ON t.id = p.track_id
	  WHERE p.is_active = FALSE
	  ORDER BY p.updated_at DESC
	  LIMIT ?
	`, limit)

	return results, err
}

// Preload repopulates the most recent journal entry after a redeploy so
// the API has something to serve before the first poll lands. The
// payload is flagged as backfilled which keeps notification adapters
// quiet and forces artwork resolution on the next real observation.
func (s *System) Preload() {
	if s.Current() != nil {
		return
	}

	var entry PlayEntry
	err := s.db.Get(&entry, `
	  SELECT
	    t.id, t.title, t.artist, t.album, t.duration, t.source, t.image, t.dominant_colours,
		p.id as play_id, p.started_at, p.elapsed, p.status, p.is_active, p.updated_at
	  FROM tracks t
	  JOIN plays p ON t.id = p.track_id
	  ORDER BY p.updated_at DESC
	  LIMIT 1`)
	if err != nil {
		return
	}

	np := &models.NowPlaying{
		SchemaVersion:   models.SchemaVersion,
		TrackID:         entry.ID,
		Title:           entry.Title,
		Artist:          entry.Artist,
		Album:           entry.Album,
		Status:          models.StatusStopped,
		IsActive:        false,
		PositionSeconds: float64(entry.Elapsed) / 1000,
		DurationSeconds: float64(entry.Duration) / 1000,
		Image:           entry.Image,
		DominantColours: entry.DominantColours,
		Source:          entry.Source,
		ObservedAt:      entry.UpdatedAt,
		Backfilled:      true,
	}
	s.setCurrent(np)
	s.publisher.Publish(np)
}

func (s *System) buildNowPlaying(obs models.Observation, art models.Artwork, id string) *models.NowPlaying {
	return &models.NowPlaying{
		SchemaVersion:   models.SchemaVersion,
		TrackID:         id,
		Title:           obs.Track.Title,
		Artist:          obs.Track.Artist,
		Album:           obs.Track.Album,
		Status:          obs.Status,
		IsActive:        obs.Status != models.StatusStopped,
		PositionSeconds: obs.Position.Seconds(),
		DurationSeconds: obs.Track.Duration.Seconds(),
		Artwork:         art.Encoded,
		ArtworkMIME:     art.MIME,
		Image:           art.Location,
		DominantColours: art.Colours,
		Source:          obs.Source,
		ObservedAt:      obs.At,
	}
}

func (s *System) setCurrent(np *models.NowPlaying) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = np
}
