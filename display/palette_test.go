package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mxwhit/marquee/models"
)

func TestPaletteForFallsBackWithoutArtwork(t *testing.T) {
	assert.Equal(t, DefaultPalette(), PaletteFor(nil))
	assert.Equal(t, DefaultPalette(), PaletteFor(&models.NowPlaying{}))
}

func TestPaletteForUsesDominantColours(t *testing.T) {
	np := &models.NowPlaying{
		DominantColours: models.SerializableColours{"#112233", "#445566"},
	}
	p := PaletteFor(np)
	assert.Equal(t, "#112233", p.Background)
	assert.Equal(t, "#445566", p.Highlight)
}

func TestPaletteForSingleColour(t *testing.T) {
	np := &models.NowPlaying{
		DominantColours: models.SerializableColours{"#112233"},
	}
	p := PaletteFor(np)
	assert.Equal(t, "#112233", p.Background)
	assert.Equal(t, "#112233", p.Highlight)
}

func TestTextColourContrast(t *testing.T) {
	// Dark backgrounds get light text and vice versa
	assert.Equal(t, "#F8F8F2", textColourFor("#000000"))
	assert.Equal(t, "#F8F8F2", textColourFor("#282A36"))
	assert.Equal(t, "#1A1A1A", textColourFor("#FFFFFF"))
	assert.Equal(t, "#1A1A1A", textColourFor("#F1FA8C"))
}

func TestBlend(t *testing.T) {
	from := Palette{Background: "#000000", Highlight: "#000000", Text: "#000000", Dim: "#000000"}
	to := Palette{Background: "#ffffff", Highlight: "#ffffff", Text: "#ffffff", Dim: "#ffffff"}

	assert.Equal(t, from, Blend(from, to, 0))
	assert.Equal(t, to, Blend(from, to, 1))

	mid := Blend(from, to, 0.5)
	assert.Equal(t, "#808080", mid.Background)
}

func TestBlendInvalidColourFallsThrough(t *testing.T) {
	from := Palette{Background: "not a colour"}
	to := Palette{Background: "#ffffff"}
	assert.Equal(t, "#ffffff", Blend(from, to, 0.5).Background)
}
