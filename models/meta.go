package models

import (
	"database/sql/driver"
	"errors"
	"strings"
	"time"
)

// SchemaVersion tags every published payload so clients can detect
// incompatible server upgrades.
const SchemaVersion = 1

// SerializableColours is a custom DB extension type that stores
// a string slice as a comma separated value in the database
// Example input: []string{"#020304", "#6581be"}
// Example DB value: #020304,#6581be
type SerializableColours []string

func (s SerializableColours) Value() (driver.Value, error) {
	return strings.Join(s, ","), nil
}

func (s *SerializableColours) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		if v == "" {
			*s = nil
			return nil
		}
		*s = SerializableColours(strings.Split(v, ","))
	default:
		return errors.New("incompatible type for SerializableColours")
	}
	return nil
}

// NowPlaying is the payload published to clients and mirrored at
// /api/current-song. Position and duration are expressed in seconds
// as that's what display clients want to render.
type NowPlaying struct {
	SchemaVersion   int                 `json:"schema_version"`
	TrackID         string              `json:"track_id"`
	Title           string              `json:"title"`
	Artist          string              `json:"artist"`
	Album           string              `json:"album"`
	Status          Status              `json:"status"`
	IsActive        bool                `json:"is_active"`
	PositionSeconds float64             `json:"position_seconds"`
	DurationSeconds float64             `json:"duration_seconds"`
	Artwork         string              `json:"artwork,omitempty"`
	ArtworkMIME     string              `json:"artwork_mime,omitempty"`
	Image           string              `json:"image,omitempty"`
	DominantColours SerializableColours `json:"dominant_colours,omitempty"`
	Source          string              `json:"source"`
	ObservedAt      time.Time           `json:"observed_at"`
	Backfilled      bool                `json:"-"`
}
