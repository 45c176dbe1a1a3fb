package termsink

import (
	"image"
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func screen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

// stripes paints the top half of every 2 pixel band red and the bottom blue.
func stripes(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		c := color.RGBA{R: 255, A: 255}
		if y%2 == 1 {
			c = color.RGBA{B: 255, A: 255}
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDrawHalfBlocks(t *testing.T) {
	s := screen(t, 4, 2)
	sink := New(s)
	sink.Draw(stripes(4, 4))

	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			r, _, style, _ := s.GetContent(x, y)
			assert.Equal(t, halfBlock, r)
			fg, bg, _ := style.Decompose()
			assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
			assert.Equal(t, tcell.NewRGBColor(0, 0, 255), bg)
		}
	}
}

func TestCellScales(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	img.SetRGBA(20, 20, color.RGBA{G: 200, A: 255})

	top, bottom := Cell(img, 2, 2, 1, 1)
	assert.Equal(t, uint8(200), top.G)
	assert.Zero(t, bottom.G)
}

func TestStatusRow(t *testing.T) {
	s := screen(t, 10, 3)
	sink := New(s)
	sink.SetStatus("fiber")

	w, h := sink.Size()
	assert.Equal(t, 10, w)
	assert.Equal(t, 4, h)

	sink.Draw(stripes(10, 4))
	var got []rune
	for x := 0; x < 5; x++ {
		r, _, _, _ := s.GetContent(x, 2)
		got = append(got, r)
	}
	assert.Equal(t, "fiber", string(got))

	r, _, _, _ := s.GetContent(0, 1)
	assert.Equal(t, halfBlock, r)
}

func TestDrawNilImage(t *testing.T) {
	s := screen(t, 4, 2)
	assert.NotPanics(t, func() { New(s).Draw(nil) })
}
