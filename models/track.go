package models

import "time"

type Status string

const (
	StatusPlaying Status = "playing"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

// Track identity is the (artist, title, album) triple. File and ArtRef
// are resolution hints handed to artwork strategies: File is a local
// path when the player exposes one, ArtRef is whatever artwork handle
// the player itself advertises such as an MPRIS artUrl or an MPD queue URI.
type Track struct {
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	File     string
	ArtRef   string
}

func (t Track) SameIdentity(other Track) bool {
	return t.Artist == other.Artist && t.Title == other.Title && t.Album == other.Album
}

func (t Track) Empty() bool {
	return t.Artist == "" && t.Title == "" && t.Album == ""
}

// Observation is a single poll of the player.
type Observation struct {
	Track    Track
	Status   Status
	Position time.Duration
	Source   string
	At       time.Time
}

// Artwork is the output of the resolver waterfall: one uniformly encoded
// image regardless of which strategy produced it. Location is filled in
// once the cover has been written out for serving under /static/.
type Artwork struct {
	Encoded   string
	MIME      string
	Extension string
	Colours   SerializableColours
	Bytes     []byte
	Location  string
	Strategy  string
}

func (a Artwork) Present() bool {
	return len(a.Bytes) > 0
}
