package artwork

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"

	"github.com/mxwhit/marquee/models"
)

// tagStrategy pulls the embedded picture out of the audio file itself.
// Only useful when the player reports a file path, which MPD does for
// everything and MPRIS does for local libraries.
type tagStrategy struct {
	musicDir string
}

func (s *tagStrategy) Name() string {
	return "tags"
}

func (s *tagStrategy) Fetch(ctx context.Context, track models.Track) ([]byte, error) {
	if track.File == "" {
		return nil, ErrNoArtwork
	}

	// MPD reports paths relative to its music directory
	path := track.File
	if !filepath.IsAbs(path) {
		if s.musicDir == "" {
			return nil, ErrNoArtwork
		}
		path = filepath.Join(s.musicDir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	metadata, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	pic := metadata.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, ErrNoArtwork
	}

	return pic.Data, nil
}
