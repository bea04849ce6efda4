package playback

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/mxwhit/marquee/models"
)

// ChangeKind classifies what a fresh observation means relative to the
// last known state.
type ChangeKind int

const (
	// ChangeNone means the poll matched expectations and nothing happens.
	ChangeNone ChangeKind = iota
	// ChangeProgress covers play/pause flips and position jumps beyond
	// the drift tolerance. Artwork is left alone.
	ChangeProgress
	// ChangeTrack means the (artist, title, album) identity moved so the
	// full state is replaced, artwork included.
	ChangeTrack
)

func (c ChangeKind) String() string {
	switch c {
	case ChangeProgress:
		return "progress"
	case ChangeTrack:
		return "track"
	default:
		return "none"
	}
}

// TrackRecord mirrors the tracks table. One row exists per unique track
// identity no matter how many times it is played.
type TrackRecord struct {
	ID              string                     `db:"id"`
	Title           string                     `db:"title"`
	Artist          string                     `db:"artist"`
	Album           string                     `db:"album"`
	Duration        int                        `db:"duration"` // milliseconds
	Source          string                     `db:"source"`
	Image           string                     `db:"image"`
	DominantColours models.SerializableColours `db:"dominant_colours"`
}

// Play is a single listen of a track. A play may be revived, such as a
// paused album picked up again later, but once its track stops or
// changes it is closed off and becomes history.
type Play struct {
	ID        int           `db:"id"`
	TrackID   string        `db:"track_id"`
	StartedAt time.Time     `db:"started_at"`
	Elapsed   int           `db:"elapsed"` // milliseconds
	Status    models.Status `db:"status"`
	IsActive  bool          `db:"is_active"`
	UpdatedAt time.Time     `db:"updated_at"`
}

// PlayEntry is a Play joined with its track metadata in order to power
// any clients that want to render full playback info.
type PlayEntry struct {
	// TrackRecord fields
	ID              string                     `db:"id" json:"track_id"`
	Title           string                     `db:"title" json:"title"`
	Artist          string                     `db:"artist" json:"artist"`
	Album           string                     `db:"album" json:"album"`
	Duration        int                        `db:"duration" json:"duration_ms"`
	Source          string                     `db:"source" json:"source"`
	Image           string                     `db:"image" json:"image"`
	DominantColours models.SerializableColours `db:"dominant_colours" json:"dominant_colours"`

	// Play fields
	PlayID    int           `db:"play_id" json:"-"`
	StartedAt time.Time     `db:"started_at" json:"started_at"`
	Elapsed   int           `db:"elapsed" json:"elapsed_ms"`
	Status    models.Status `db:"status" json:"status"`
	IsActive  bool          `db:"is_active" json:"is_active"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// GenerateTrackID produces a deterministic ID from the track identity so
// replays of the same song always map onto the same row.
func GenerateTrackID(source string, t models.Track) string {
	hashString := fmt.Sprintf("%s-%s-%s", t.Artist, t.Title, t.Album)
	return fmt.Sprintf("%s:track:%d", source, xxhash.Sum64String(hashString))
}
