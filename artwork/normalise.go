package artwork

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	color_extractor "github.com/marekm4/color-extractor"

	"github.com/mxwhit/marquee/models"
)

const (
	maxEdge     = 600
	jpegQuality = 90
)

// normalise turns whatever a strategy dug up into the one shape the rest
// of the system deals in: a JPEG no larger than maxEdge on either side,
// carried as a MIME-tagged base64 data URI, plus its dominant colours.
func normalise(raw []byte) (models.Artwork, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return models.Artwork{}, fmt.Errorf("failed to decode artwork: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return models.Artwork{}, fmt.Errorf("failed to encode artwork: %w", err)
	}

	encoded := buf.Bytes()

	return models.Artwork{
		Encoded:   fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(encoded)),
		MIME:      "image/jpeg",
		Extension: "jpeg",
		Colours:   dominantColours(img),
		Bytes:     encoded,
	}, nil
}

func dominantColours(img image.Image) models.SerializableColours {
	var domColours models.SerializableColours
	for _, c := range color_extractor.ExtractColors(img) {
		domColours = append(domColours, colorToHexString(c))
	}
	return domColours
}

func colorToHexString(c color.Color) string {
	r, g, b, a := c.RGBA()
	rgba := color.RGBA{uint8(r), uint8(g), uint8(b), uint8(a)}
	return fmt.Sprintf("#%.2x%.2x%.2x", rgba.R, rgba.G, rgba.B)
}
