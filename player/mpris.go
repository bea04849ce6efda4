package player

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/mxwhit/marquee/artwork"
	"github.com/mxwhit/marquee/config"
	"github.com/mxwhit/marquee/models"
	"github.com/mxwhit/marquee/utils"
)

const (
	mprisPrefix     = "org.mpris.MediaPlayer2."
	mprisObjectPath = "/org/mpris/MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
)

// MPRISSource polls desktop media players over the D-Bus session bus.
// By default it talks to the first player it finds; MPRIS_BUS_NAME pins
// it to one when several are running.
type MPRISSource struct {
	busName string
	client  http.Client

	mu   sync.Mutex
	conn *dbus.Conn
}

func NewMPRISSource(cfg config.Config) *MPRISSource {
	return &MPRISSource{busName: cfg.Player.BusName}
}

func (s *MPRISSource) Name() string {
	return "mpris"
}

func (s *MPRISSource) NowPlaying(ctx context.Context) (models.Observation, error) {
	conn, err := s.connection()
	if err != nil {
		return models.Observation{}, fmt.Errorf("failed to reach the session bus: %w", err)
	}

	busName, err := s.findPlayer(ctx, conn)
	if err != nil {
		if err != ErrNotPlaying {
			s.reset()
		}
		return models.Observation{}, err
	}

	obj := conn.Object(busName, mprisObjectPath)

	statusVariant, err := obj.GetProperty(playerInterface + ".PlaybackStatus")
	if err != nil {
		s.reset()
		return models.Observation{}, fmt.Errorf("failed to read playback status: %w", err)
	}

	status, _ := statusVariant.Value().(string)
	if status == "" || status == "Stopped" {
		return models.Observation{}, ErrNotPlaying
	}

	metadataVariant, err := obj.GetProperty(playerInterface + ".Metadata")
	if err != nil {
		s.reset()
		return models.Observation{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	metadata, ok := metadataVariant.Value().(map[string]dbus.Variant)
	if !ok {
		return models.Observation{}, ErrNotPlaying
	}

	track := parseMetadata(metadata)
	if track.Empty() {
		return models.Observation{}, ErrNotPlaying
	}

	obs := models.Observation{
		Track:  track,
		Status: parseStatus(status),
		Source: "mpris",
		At:     time.Now(),
	}

	// Position lives outside Metadata and some players don't implement it
	if positionVariant, err := obj.GetProperty(playerInterface + ".Position"); err == nil {
		if micros, ok := positionVariant.Value().(int64); ok {
			obs.Position = time.Duration(micros) * time.Microsecond
		}
	}

	return obs, nil
}

// EmbeddedArtwork chases whatever handle the player put in mpris:artUrl.
// Players hand out local paths, web URLs or inline data URIs depending on
// where the music comes from.
func (s *MPRISSource) EmbeddedArtwork(ctx context.Context, track models.Track) ([]byte, error) {
	switch {
	case track.ArtRef == "":
		return nil, artwork.ErrNoArtwork
	case strings.HasPrefix(track.ArtRef, "file://"):
		u, err := url.Parse(track.ArtRef)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(u.Path)
	case strings.HasPrefix(track.ArtRef, "http://"), strings.HasPrefix(track.ArtRef, "https://"):
		return utils.FetchImage(ctx, s.client, track.ArtRef)
	case strings.HasPrefix(track.ArtRef, "data:"):
		return utils.DecodeDataURI(track.ArtRef)
	}
	return nil, artwork.ErrNoArtwork
}

// connection dials a private session bus connection on first use and
// holds onto it across polls. A failed poll drops it so the next one
// redials, which covers the bus daemon restarting underneath us.
func (s *MPRISSource) connection() (*dbus.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn, nil
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

func (s *MPRISSource) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

func (s *MPRISSource) findPlayer(ctx context.Context, conn *dbus.Conn) (string, error) {
	var names []string
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return "", fmt.Errorf("failed to list bus names: %w", err)
	}

	for _, name := range names {
		if !strings.HasPrefix(name, mprisPrefix) {
			continue
		}
		if s.busName != "" && name != s.busName {
			continue
		}
		return name, nil
	}

	return "", ErrNotPlaying
}

func parseStatus(status string) models.Status {
	switch status {
	case "Playing":
		return models.StatusPlaying
	case "Paused":
		return models.StatusPaused
	default:
		return models.StatusStopped
	}
}

// parseMetadata maps the xesam/mpris fields onto a track. Everything is
// optional and loosely typed, so each field is fished out defensively.
func parseMetadata(metadata map[string]dbus.Variant) models.Track {
	var track models.Track

	if titleVariant, ok := metadata["xesam:title"]; ok {
		if title, ok := titleVariant.Value().(string); ok {
			track.Title = title
		}
	}

	// xesam:artist is a string list per spec but some players send a string
	if artistVariant, ok := metadata["xesam:artist"]; ok {
		switch artists := artistVariant.Value().(type) {
		case []string:
			if len(artists) > 0 {
				track.Artist = artists[0]
			}
		case string:
			track.Artist = artists
		}
	}

	if albumVariant, ok := metadata["xesam:album"]; ok {
		if album, ok := albumVariant.Value().(string); ok {
			track.Album = album
		}
	}

	if lengthVariant, ok := metadata["mpris:length"]; ok {
		track.Duration = parseLength(lengthVariant.Value())
	}

	if artVariant, ok := metadata["mpris:artUrl"]; ok {
		if artURL, ok := artVariant.Value().(string); ok {
			track.ArtRef = artURL
		}
	}

	if urlVariant, ok := metadata["xesam:url"]; ok {
		if trackURL, ok := urlVariant.Value().(string); ok {
			track.File = fileFromURL(trackURL)
		}
	}

	return track
}

// parseLength copes with the integer widths players actually send for
// the track length in microseconds.
func parseLength(value any) time.Duration {
	switch length := value.(type) {
	case int64:
		return time.Duration(length) * time.Microsecond
	case uint64:
		return time.Duration(length) * time.Microsecond
	case int32:
		return time.Duration(length) * time.Microsecond
	case uint32:
		return time.Duration(length) * time.Microsecond
	case float64:
		return time.Duration(length * float64(time.Microsecond))
	}
	return 0
}

func fileFromURL(trackURL string) string {
	u, err := url.Parse(trackURL)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	return u.Path
}
