package player

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fhs/gompd/v2/mpd"

	"github.com/mxwhit/marquee/artwork"
	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/models"
)

// MPDSource polls an MPD server. It dials per poll since MPD drops idle
// clients and the protocol makes a fresh connection cheap.
type MPDSource struct {
	address  string
	password string
}

func NewMPDSource(cfg config.Config) *MPDSource {
	return &MPDSource{
		address:  cfg.Player.MPDAddress,
		password: cfg.Player.MPDPassword,
	}
}

func (s *MPDSource) Name() string {
	return "mpd"
}

func (s *MPDSource) NowPlaying(ctx context.Context) (models.Observation, error) {
	conn, err := s.dial()
	if err != nil {
		return models.Observation{}, fmt.Errorf("failed to reach mpd at %s: %w", s.address, err)
	}
	defer conn.Close()

	status, err := conn.Status()
	if err != nil {
		return models.Observation{}, err
	}

	if status["state"] != "play" && status["state"] != "pause" {
		return models.Observation{}, ErrNotPlaying
	}

	song, err := conn.CurrentSong()
	if err != nil {
		return models.Observation{}, err
	}

	obs := observationFromAttrs(song, status, time.Now())
	if obs.Track.Empty() {
		return models.Observation{}, ErrNotPlaying
	}

	return obs, nil
}

// EmbeddedArtwork asks MPD for the picture embedded in the file itself,
// then for a cover image sitting next to it in the music directory.
func (s *MPDSource) EmbeddedArtwork(ctx context.Context, track models.Track) ([]byte, error) {
	if track.File == "" {
		return nil, artwork.ErrNoArtwork
	}

	conn, err := s.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if picture, err := conn.ReadPicture(track.File); err == nil && len(picture) > 0 {
		return picture, nil
	}

	if cover, err := conn.AlbumArt(track.File); err == nil && len(cover) > 0 {
		return cover, nil
	}

	return nil, artwork.ErrNoArtwork
}

func (s *MPDSource) dial() (*mpd.Client, error) {
	if s.password != "" {
		return mpd.DialAuthenticated("tcp", s.address, s.password)
	}
	return mpd.Dial("tcp", s.address)
}

// observationFromAttrs maps MPD's raw key/value pairs onto an observation.
func observationFromAttrs(song, status mpd.Attrs, at time.Time) models.Observation {
	track := models.Track{
		Title:  song["Title"],
		Artist: song["Artist"],
		Album:  song["Album"],
		File:   song["file"],
	}

	// Untagged files at least get their queue path as a name
	if track.Title == "" {
		track.Title = song["file"]
	}

	if duration, err := strconv.ParseFloat(status["duration"], 64); err == nil {
		track.Duration = time.Duration(duration * float64(time.Second))
	} else if duration, err := strconv.ParseFloat(song["duration"], 64); err == nil {
		track.Duration = time.Duration(duration * float64(time.Second))
	}

	obs := models.Observation{
		Track:  track,
		Status: statusFromState(status["state"]),
		Source: "mpd",
		At:     at,
	}

	if elapsed, err := strconv.ParseFloat(status["elapsed"], 64); err == nil {
		obs.Position = time.Duration(elapsed * float64(time.Second))
	}

	return obs
}

func statusFromState(state string) models.Status {
	switch state {
	case "play":
		return models.StatusPlaying
	case "pause":
		return models.StatusPaused
	default:
		return models.StatusStopped
	}
}
