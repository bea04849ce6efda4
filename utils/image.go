package utils

import (
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mxwhit/marquee/config"
)

// BytesToGUIDLocation derives a stable GUID from the image contents so
// identical covers land on identical /static/ URLs and stay cacheable.
func BytesToGUIDLocation(image []byte, extension string) (string, uuid.UUID) {
	imageHash := md5.Sum(image)
	var genericBytes []byte = imageHash[:] // Disgusting :)
	guid, _ := uuid.FromBytes(genericBytes)
	location := fmt.Sprintf("/static/cover.%s.%s", guid, extension)
	return location, guid
}

func LoadCover(cfg config.Config, guid string, extension string) (string, error) {
	img, err := os.ReadFile(filepath.Join(cfg.Marquee.StorageDir, fmt.Sprintf("cover.%s.%s", guid, extension)))
	if err != nil {
		return "", err
	}
	return string(img), nil
}

// SaveCover writes the cover under its GUID for /static/ serving and
// refreshes current.jpeg, a scratch copy that always holds whatever
// artwork was extracted most recently.
func SaveCover(cfg config.Config, guid string, image []byte, extension string) error {
	os.WriteFile(filepath.Join(cfg.Marquee.StorageDir, "current.jpeg"), image, 0644)
	return os.WriteFile(filepath.Join(cfg.Marquee.StorageDir, fmt.Sprintf("cover.%s.%s", guid, extension)), image, 0644)
}

// DecodeDataURI unwraps the base64 payload of a data: URI, the format
// artwork travels in between the server and its clients.
func DecodeDataURI(uri string) ([]byte, error) {
	_, encoded, found := strings.Cut(uri, "base64,")
	if !found {
		return nil, fmt.Errorf("not a base64 data URI")
	}
	return base64.StdEncoding.DecodeString(encoded)
}
