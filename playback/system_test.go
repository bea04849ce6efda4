package playback

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/migrations"
	"github.com/mxwhit/marquee/models"
)

type spyPublisher struct {
	published []*models.NowPlaying
}

func (s *spyPublisher) Publish(np *models.NowPlaying) error {
	s.published = append(s.published, np)
	return nil
}

func setupTestDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)

	goose.SetBaseFS(migrations.GetMigrations())

	err = goose.SetDialect("sqlite3")
	require.NoError(t, err)

	err = goose.Up(db.DB, ".")
	require.NoError(t, err)

	return db
}

func newTestSystem(t *testing.T) (*System, *spyPublisher, *sqlx.DB) {
	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	spy := &spyPublisher{}
	cfg := config.Config{Marquee: config.MarqueeConfig{PositionDriftSeconds: 1}}
	return NewSystem(cfg, db, spy), spy, db
}

func observation(title, artist, album string, status models.Status, position time.Duration, at time.Time) models.Observation {
	return models.Observation{
		Track: models.Track{
			Title:    title,
			Artist:   artist,
			Album:    album,
			Duration: 200 * time.Second,
		},
		Status:   status,
		Position: position,
		Source:   "mpris",
		At:       at,
	}
}

func TestSystem_Assess(t *testing.T) {
	s, _, _ := newTestSystem(t)
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	// 1. Nothing known yet, so any track is a track change
	obs := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 30*time.Second, base)
	assert.Equal(t, ChangeTrack, s.Assess(obs))

	require.NoError(t, s.ReplaceTrack(obs, models.Artwork{}))

	// 2. Position advancing in step with the wall clock is no change
	next := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 32*time.Second, base.Add(2*time.Second))
	assert.Equal(t, ChangeNone, s.Assess(next))

	// 2a. Half a second of jitter sits inside the tolerance
	next.Position = 32500 * time.Millisecond
	assert.Equal(t, ChangeNone, s.Assess(next))

	// 3. A play/pause flip is a progress change
	paused := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPaused, 32*time.Second, base.Add(2*time.Second))
	assert.Equal(t, ChangeProgress, s.Assess(paused))

	// 4. A seek beyond the tolerance is a progress change
	seek := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 90*time.Second, base.Add(2*time.Second))
	assert.Equal(t, ChangeProgress, s.Assess(seek))

	// 5. A different identity wins over everything else
	other := observation("Solar Winds", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 0, base.Add(2*time.Second))
	assert.Equal(t, ChangeTrack, s.Assess(other))
}

func TestSystem_Assess_PausedPositionStaysPut(t *testing.T) {
	s, _, _ := newTestSystem(t)
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	obs := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPaused, 30*time.Second, base)
	require.NoError(t, s.ReplaceTrack(obs, models.Artwork{}))

	// 1. A paused track is expected to hold its position indefinitely
	later := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPaused, 30*time.Second, base.Add(90*time.Second))
	assert.Equal(t, ChangeNone, s.Assess(later))

	// 2. A position jump while paused means someone seeked
	seeked := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPaused, 45*time.Second, base.Add(90*time.Second))
	assert.Equal(t, ChangeProgress, s.Assess(seeked))
}

func TestSystem_ReplaceTrack(t *testing.T) {
	s, spy, db := newTestSystem(t)
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	obs := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 30*time.Second, base)
	art := models.Artwork{
		Encoded:   "data:image/jpeg;base64,abc123",
		MIME:      "image/jpeg",
		Extension: "jpeg",
		Colours:   models.SerializableColours{"#112233", "#445566"},
		Bytes:     []byte{0x1},
		Location:  "/static/cover.xyz.jpeg",
		Strategy:  "player",
	}

	require.NoError(t, s.ReplaceTrack(obs, art))
	id := GenerateTrackID("mpris", obs.Track)

	// 1. Track metadata was journalled
	var record TrackRecord
	err := db.Get(&record, "SELECT * FROM tracks WHERE id = ?", id)
	require.NoError(t, err)
	assert.Equal(t, "Cosmic Dust", record.Title)
	assert.Equal(t, "Stellar Drifters", record.Artist)
	assert.Equal(t, "Nebula Lanes", record.Album)
	assert.Equal(t, 200000, record.Duration)
	assert.Equal(t, "mpris", record.Source)
	assert.Equal(t, "/static/cover.xyz.jpeg", record.Image)
	assert.Equal(t, models.SerializableColours{"#112233", "#445566"}, record.DominantColours)

	// 2. An active play row exists
	var play Play
	err = db.Get(&play, "SELECT * FROM plays WHERE track_id = ?", id)
	require.NoError(t, err)
	assert.Equal(t, 30000, play.Elapsed)
	assert.Equal(t, models.StatusPlaying, play.Status)
	assert.Equal(t, true, play.IsActive)

	// 3. The published payload mirrors the observation
	require.Len(t, spy.published, 1)
	np := spy.published[0]
	assert.Equal(t, models.SchemaVersion, np.SchemaVersion)
	assert.Equal(t, id, np.TrackID)
	assert.Equal(t, models.StatusPlaying, np.Status)
	assert.Equal(t, true, np.IsActive)
	assert.Equal(t, 30.0, np.PositionSeconds)
	assert.Equal(t, 200.0, np.DurationSeconds)
	assert.Equal(t, "data:image/jpeg;base64,abc123", np.Artwork)
	assert.Equal(t, "/static/cover.xyz.jpeg", np.Image)
	assert.Equal(t, base, np.ObservedAt)

	// 4. Current serves the same payload
	assert.Equal(t, np, s.Current())

	// 5. A second track closes off the first play
	obs2 := observation("Solar Winds", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 0, base.Add(time.Minute))
	require.NoError(t, s.ReplaceTrack(obs2, models.Artwork{}))

	err = db.Get(&play, "SELECT * FROM plays WHERE track_id = ?", id)
	require.NoError(t, err)
	assert.Equal(t, false, play.IsActive)
	assert.Equal(t, models.StatusStopped, play.Status)

	// 5a. Replaying a known track reuses its metadata row
	require.NoError(t, s.ReplaceTrack(obs, art))
	var trackCount int
	require.NoError(t, db.Get(&trackCount, "SELECT COUNT(*) FROM tracks"))
	assert.Equal(t, 2, trackCount)
}

func TestSystem_UpdateProgress(t *testing.T) {
	s, spy, db := newTestSystem(t)
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	obs := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 30*time.Second, base)
	art := models.Artwork{Encoded: "data:image/jpeg;base64,abc123", Bytes: []byte{0x1}}
	require.NoError(t, s.ReplaceTrack(obs, art))
	id := GenerateTrackID("mpris", obs.Track)

	// 1. Pausing updates status and position in place
	paused := obs
	paused.Status = models.StatusPaused
	paused.Position = 31 * time.Second
	paused.At = base.Add(time.Second)
	require.NoError(t, s.UpdateProgress(paused))

	np := s.Current()
	assert.Equal(t, models.StatusPaused, np.Status)
	assert.Equal(t, 31.0, np.PositionSeconds)
	assert.Equal(t, true, np.IsActive)

	// 1a. Artwork is untouched by progress updates
	assert.Equal(t, "data:image/jpeg;base64,abc123", np.Artwork)

	// 1b. The active play row was updated, not replaced
	var play Play
	require.NoError(t, db.Get(&play, "SELECT * FROM plays WHERE track_id = ?", id))
	assert.Equal(t, 31000, play.Elapsed)
	assert.Equal(t, models.StatusPaused, play.Status)

	var playCount int
	require.NoError(t, db.Get(&playCount, "SELECT COUNT(*) FROM plays"))
	assert.Equal(t, 1, playCount)

	// 2. Both changes went out to the publisher
	assert.Len(t, spy.published, 2)
}

func TestSystem_UpdateProgress_RevivesStoppedPlay(t *testing.T) {
	s, _, db := newTestSystem(t)
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	obs := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 30*time.Second, base)
	require.NoError(t, s.ReplaceTrack(obs, models.Artwork{}))
	require.NoError(t, s.MarkStopped(base.Add(time.Minute)))

	// Picking the same track up again counts as a fresh listen
	resumed := obs
	resumed.Position = 30 * time.Second
	resumed.At = base.Add(2 * time.Minute)
	require.NoError(t, s.UpdateProgress(resumed))

	var playCount int
	require.NoError(t, db.Get(&playCount, "SELECT COUNT(*) FROM plays"))
	assert.Equal(t, 2, playCount)

	var active int
	require.NoError(t, db.Get(&active, "SELECT COUNT(*) FROM plays WHERE is_active = TRUE"))
	assert.Equal(t, 1, active)
}

func TestSystem_UpdateProgress_NothingToUpdate(t *testing.T) {
	s, _, _ := newTestSystem(t)
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	obs := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 30*time.Second, base)
	assert.Error(t, s.UpdateProgress(obs))
}

func TestSystem_MarkStopped_PublishesOnce(t *testing.T) {
	s, spy, db := newTestSystem(t)
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	obs := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 30*time.Second, base)
	require.NoError(t, s.ReplaceTrack(obs, models.Artwork{}))
	require.Len(t, spy.published, 1)

	// 1. First silence closes the play and notifies clients
	require.NoError(t, s.MarkStopped(base.Add(time.Minute)))
	require.Len(t, spy.published, 2)
	assert.Equal(t, models.StatusStopped, spy.published[1].Status)
	assert.Equal(t, false, spy.published[1].IsActive)

	var active int
	require.NoError(t, db.Get(&active, "SELECT COUNT(*) FROM plays WHERE is_active = TRUE"))
	assert.Equal(t, 0, active)

	// 2. A player that stays silent doesn't spam further events
	require.NoError(t, s.MarkStopped(base.Add(2*time.Minute)))
	assert.Len(t, spy.published, 2)
}

func TestSystem_GetHistory(t *testing.T) {
	s, _, _ := newTestSystem(t)
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	first := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 30*time.Second, base)
	require.NoError(t, s.ReplaceTrack(first, models.Artwork{}))

	// 1. An active play isn't history yet
	history, err := s.GetHistory(10)
	require.NoError(t, err)
	assert.Len(t, history, 0)

	// 2. Starting another track retires the first
	second := observation("Solar Winds", "Aurora Tape Club", "Night Commute", models.StatusPlaying, 0, base.Add(time.Minute))
	require.NoError(t, s.ReplaceTrack(second, models.Artwork{}))

	history, err = s.GetHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Cosmic Dust", history[0].Title)
	assert.Equal(t, "Stellar Drifters", history[0].Artist)
	assert.Equal(t, false, history[0].IsActive)

	// 3. Newest retired plays come back first
	require.NoError(t, s.MarkStopped(base.Add(2*time.Minute)))

	history, err = s.GetHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Solar Winds", history[0].Title)
	assert.Equal(t, "Cosmic Dust", history[1].Title)

	// 4. Limits are respected and zero is rejected
	history, err = s.GetHistory(1)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = s.GetHistory(0)
	assert.Error(t, err)

	_, err = s.GetHistory(-1)
	assert.Error(t, err)
}

func TestSystem_Preload(t *testing.T) {
	s, _, db := newTestSystem(t)
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	obs := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 30*time.Second, base)
	require.NoError(t, s.ReplaceTrack(obs, models.Artwork{Location: "/static/cover.xyz.jpeg"}))
	require.NoError(t, s.MarkStopped(base.Add(time.Minute)))

	// 1. A fresh system on the same database picks up where we left off
	spy := &spyPublisher{}
	cfg := config.Config{Marquee: config.MarqueeConfig{PositionDriftSeconds: 1}}
	restarted := NewSystem(cfg, db, spy)
	restarted.Preload()

	np := restarted.Current()
	require.NotNil(t, np)
	assert.Equal(t, "Cosmic Dust", np.Title)
	assert.Equal(t, false, np.IsActive)
	assert.Equal(t, true, np.Backfilled)
	assert.Equal(t, "/static/cover.xyz.jpeg", np.Image)
	assert.Len(t, spy.published, 1)

	// 2. Backfilled state forces artwork resolution on the next poll
	assert.Equal(t, ChangeTrack, restarted.Assess(obs))

	// 3. Preload never clobbers live state
	restarted.Preload()
	assert.Len(t, spy.published, 1)
}

func TestSystem_Preload_EmptyDatabase(t *testing.T) {
	s, spy, _ := newTestSystem(t)

	s.Preload()

	assert.Nil(t, s.Current())
	assert.Len(t, spy.published, 0)
}

func TestSystem_ReplaceTrack_JournalFailure(t *testing.T) {
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	cfg := config.Config{Marquee: config.MarqueeConfig{PositionDriftSeconds: 1}}

	// 1. A connection that can't even open a transaction
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	spy := &spyPublisher{}
	s := NewSystem(cfg, sqlx.NewDb(db, "sqlmock"), spy)

	mock.ExpectBegin().WillReturnError(errors.New("disk I/O error"))

	obs := observation("Cosmic Dust", "Stellar Drifters", "Nebula Lanes", models.StatusPlaying, 30*time.Second, base)
	err = s.ReplaceTrack(obs, models.Artwork{})
	assert.Error(t, err)

	// 1a. Nothing goes out to clients when the journal fails
	assert.Len(t, spy.published, 0)
	assert.Nil(t, s.Current())

	// 2. A failure mid transaction rolls back cleanly
	db2, mock2, err := sqlmock.New()
	require.NoError(t, err)
	defer db2.Close()

	s2 := NewSystem(cfg, sqlx.NewDb(db2, "sqlmock"), spy)

	mock2.ExpectBegin()
	mock2.ExpectExec("UPDATE plays").WillReturnError(errors.New("table is locked"))
	mock2.ExpectRollback()

	err = s2.ReplaceTrack(obs, models.Artwork{})
	assert.Error(t, err)
	assert.Len(t, spy.published, 0)
	assert.NoError(t, mock2.ExpectationsWereMet())
}

func TestGenerateTrackID(t *testing.T) {
	track := models.Track{Title: "Cosmic Dust", Artist: "Stellar Drifters", Album: "Nebula Lanes"}

	id := GenerateTrackID("mpris", track)
	assert.Contains(t, id, "mpris:track:")

	// Identity is deterministic
	assert.Equal(t, id, GenerateTrackID("mpris", track))

	// Any part of the triple changing produces a new ID
	other := track
	other.Album = "Night Commute"
	assert.NotEqual(t, id, GenerateTrackID("mpris", other))
}
