package artwork

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxwhit/marquee/models"
)

// Minimal ID3v2.3 tag builders, enough to exercise the picture frame path.

func id3v2Frame(id string, body []byte) []byte {
	frame := []byte(id)
	frame = append(frame, byte(len(body)>>24), byte(len(body)>>16), byte(len(body)>>8), byte(len(body)))
	frame = append(frame, 0x00, 0x00)
	return append(frame, body...)
}

func id3v2File(frames ...[]byte) []byte {
	var body []byte
	for _, frame := range frames {
		body = append(body, frame...)
	}

	size := len(body)
	header := []byte("ID3")
	header = append(header, 0x03, 0x00, 0x00)
	header = append(header, byte(size>>21)&0x7f, byte(size>>14)&0x7f, byte(size>>7)&0x7f, byte(size)&0x7f)
	return append(header, body...)
}

func apicFrame(picture []byte) []byte {
	body := []byte{0x00}
	body = append(body, []byte("image/jpeg")...)
	body = append(body, 0x00, 0x03, 0x00)
	body = append(body, picture...)
	return id3v2Frame("APIC", body)
}

func tit2Frame(title string) []byte {
	body := []byte{0x00}
	body = append(body, []byte(title)...)
	return id3v2Frame("TIT2", body)
}

func TestTagStrategy_ReadsEmbeddedPicture(t *testing.T) {
	dir := t.TempDir()
	picture := []byte{0xff, 0xd8, 0xff, 0xdb, 0x01, 0x02, 0x03, 0xff, 0xd9}
	path := filepath.Join(dir, "cosmic-dust.mp3")
	require.NoError(t, os.WriteFile(path, id3v2File(apicFrame(picture)), 0644))

	s := &tagStrategy{}

	data, err := s.Fetch(context.Background(), models.Track{File: path})
	require.NoError(t, err)
	assert.Equal(t, picture, data)
}

func TestTagStrategy_RelativePathsResolveAgainstMusicDir(t *testing.T) {
	picture := []byte{0xff, 0xd8, 0x09, 0xff, 0xd9}

	// 1. A relative path with no music directory configured goes nowhere
	s := &tagStrategy{}
	_, err := s.Fetch(context.Background(), models.Track{File: "albums/cosmic-dust.mp3"})
	assert.ErrorIs(t, err, ErrNoArtwork)

	// 2. With one configured, the path joins up
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "albums"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "albums", "cosmic-dust.mp3"), id3v2File(apicFrame(picture)), 0644))

	s = &tagStrategy{musicDir: dir}

	data, err := s.Fetch(context.Background(), models.Track{File: "albums/cosmic-dust.mp3"})
	require.NoError(t, err)
	assert.Equal(t, picture, data)
}

func TestTagStrategy_NoPictureInTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.mp3")
	require.NoError(t, os.WriteFile(path, id3v2File(tit2Frame("Cosmic Dust")), 0644))

	s := &tagStrategy{}

	_, err := s.Fetch(context.Background(), models.Track{File: path})
	assert.ErrorIs(t, err, ErrNoArtwork)
}

func TestTagStrategy_MissingOrUnreadableFiles(t *testing.T) {
	s := &tagStrategy{}

	// 1. The player never reported a file
	_, err := s.Fetch(context.Background(), models.Track{})
	assert.ErrorIs(t, err, ErrNoArtwork)

	// 2. The player points at something that doesn't exist
	_, err = s.Fetch(context.Background(), models.Track{File: "/nonexistent/track.flac"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoArtwork)

	// 3. The file carries no recognisable tags
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.mp3")
	require.NoError(t, os.WriteFile(junk, []byte("this is not music at all"), 0644))

	_, err = s.Fetch(context.Background(), models.Track{File: junk})
	assert.Error(t, err)
}
