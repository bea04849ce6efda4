package display

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/EdlinOrg/prominentcolor"

	"github.com/mxwhit/marquee/models"
	"github.com/mxwhit/marquee/utils"
)

// Palette is the colour scheme a track is rendered with. Background and
// Highlight form the gradient, Text is picked to stay readable on top.
type Palette struct {
	Background string
	Highlight  string
	Text       string
	Dim        string
}

func DefaultPalette() Palette {
	return Palette{
		Background: "#282A36",
		Highlight:  "#44475A",
		Text:       "#F8F8F2",
		Dim:        "#6272A4",
	}
}

// PaletteFor derives a palette from whatever the payload carries: the
// inline artwork when present, the precomputed dominant colours as a
// fallback, and a stock scheme when there's neither.
func PaletteFor(np *models.NowPlaying) Palette {
	if np == nil {
		return DefaultPalette()
	}
	if np.Artwork != "" {
		if p, err := paletteFromArtwork(np.Artwork); err == nil {
			return p
		}
	}
	if len(np.DominantColours) > 0 {
		return paletteFromColours(np.DominantColours)
	}
	return DefaultPalette()
}

func paletteFromArtwork(encoded string) (Palette, error) {
	raw, err := utils.DecodeDataURI(encoded)
	if err != nil {
		return Palette{}, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Palette{}, err
	}
	// Covers are already tightly cropped so border detection has
	// nothing useful to remove.
	colours, err := prominentcolor.KmeansWithAll(3, img, prominentcolor.ArgumentNoCropping, prominentcolor.DefaultSize, nil)
	if err != nil {
		return Palette{}, err
	}
	if len(colours) == 0 {
		return Palette{}, fmt.Errorf("no colours could be extracted")
	}
	hexes := make([]string, 0, len(colours))
	for _, c := range colours {
		hexes = append(hexes, fmt.Sprintf("#%02x%02x%02x", c.Color.R, c.Color.G, c.Color.B))
	}
	return paletteFromColours(hexes), nil
}

func paletteFromColours(hexes []string) Palette {
	p := DefaultPalette()
	p.Background = hexes[0]
	if len(hexes) > 1 {
		p.Highlight = hexes[1]
	} else {
		p.Highlight = hexes[0]
	}
	p.Text = textColourFor(p.Background)
	return p
}

// textColourFor picks dark or light text, whichever reads better on the
// given background.
func textColourFor(hex string) string {
	r, g, b, err := parseHexColour(hex)
	if err != nil {
		return "#F8F8F2"
	}
	luminance := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	if luminance >= 140 {
		return "#1A1A1A"
	}
	return "#F8F8F2"
}

// Blend mixes two palettes, t running from 0 (all from) to 1 (all to).
func Blend(from, to Palette, t float64) Palette {
	return Palette{
		Background: blendHex(from.Background, to.Background, t),
		Highlight:  blendHex(from.Highlight, to.Highlight, t),
		Text:       blendHex(from.Text, to.Text, t),
		Dim:        blendHex(from.Dim, to.Dim, t),
	}
}

func blendHex(from, to string, t float64) string {
	if t <= 0 {
		return from
	}
	if t >= 1 {
		return to
	}
	fr, fg, fb, err := parseHexColour(from)
	if err != nil {
		return to
	}
	tr, tg, tb, err := parseHexColour(to)
	if err != nil {
		return to
	}
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(fr, tr), mix(fg, tg), mix(fb, tb))
}

func parseHexColour(hex string) (uint8, uint8, uint8, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(strings.TrimSpace(hex), "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0, err
	}
	return r, g, b, nil
}
