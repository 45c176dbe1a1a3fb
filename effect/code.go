package effect

import (
	"image/color"

	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/glyph"
	"github.com/esimov/illusion/mathx"
)

// codeLayer holds the glyph grid shared by the falling code renderers. The
// grid is created on the first tick and kept for the rest of the session.
type codeLayer struct {
	grid *glyph.Grid
	rng  *mathx.Rand
}

// Grid returns the glyph grid, nil before the first tick.
func (c *codeLayer) Grid() *glyph.Grid { return c.grid }

func (c *codeLayer) ensure(in *Input) *glyph.Grid {
	if c.grid == nil {
		c.grid = glyph.NewGrid(in.Width, in.Height, c.rng)
		return c.grid
	}
	c.grid.Resize(in.Width, in.Height, c.rng)
	return c.grid
}

// background paints the black base plus a translucent tint over the whole
// viewport.
func background(in *Input, out *draw.List, tint color.NRGBA) {
	w, h := in.vp()
	out.Add(
		draw.Clear{Color: black},
		draw.Rect{X: 0, Y: 0, W: w, H: h, Fill: tint},
	)
}

// sampleAt returns the brightness of the capture pixel under viewport point
// (x, y), using the mirrored column rule.
func sampleAt(in *Input, x, y float64) float64 {
	f := in.Frame
	w, h := in.vp()
	vx := mathx.Clamp(int(x*in.vw()/w), 0, f.Width-1)
	vy := mathx.Clamp(int(y*in.vh()/h), 0, f.Height-1)
	return f.Brightness(f.MirrorIndex(vx, vy))
}

// glyphText builds the text primitive of one symbol at the standard size.
func glyphText(x, y float64, r rune, c color.NRGBA) draw.Text {
	return draw.Text{X: x, Y: y, Value: string(r), Size: glyph.SymbolSize, Color: c}
}

// silhouette visits the logical capture cells on the given stride whose
// brightness exceeds min, passing the viewport position and brightness.
func silhouette(in *Input, step int, min float64, fn func(x, y int, px, py, bright float64)) {
	f := in.Frame
	w, h := in.vp()
	sx, sy := w/in.vw(), h/in.vh()
	for y := 0; y < f.Height; y += step {
		for x := 0; x < f.Width; x += step {
			bright := f.Brightness(f.MirrorIndex(x, y))
			if bright > min {
				fn(x, y, float64(x)*sx, float64(y)*sy, bright)
			}
		}
	}
}

// visible reports whether a viewport point lies inside the viewport.
func visible(in *Input, x, y float64) bool {
	w, h := in.vp()
	return x >= 0 && x <= w && y >= 0 && y <= h
}

// hasMotionSource reports whether a previous capture is available to diff
// against.
func hasMotionSource(in *Input) bool {
	return in.Previous != nil && in.Previous.SameSize(in.Frame)
}
