package artwork

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mxwhit/marquee/models"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// cacheDirStrategy is the last resort: desktop players following the
// freedesktop media-art convention drop covers into a cache directory as
// they play, so the most recently written image there is very likely the
// current track's.
type cacheDirStrategy struct {
	dir string
}

func (s *cacheDirStrategy) Name() string {
	return "cachedir"
}

func (s *cacheDirStrategy) Fetch(ctx context.Context, track models.Track) ([]byte, error) {
	if s.dir == "" {
		return nil, ErrNoArtwork
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		// A machine with no media-art directory is a miss, not a failure
		return nil, ErrNoArtwork
	}

	newest := ""
	var newestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = entry.Name()
			newestTime = info.ModTime()
		}
	}

	if newest == "" {
		return nil, ErrNoArtwork
	}

	return os.ReadFile(filepath.Join(s.dir, newest))
}
