package effect

import (
	"image/color"

	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/glyph"
	"github.com/esimov/illusion/mathx"
)

const (
	denseUserLight   = 50
	denseHighlight   = 180
	denseReroll      = 3
	denseBackgroundP = 0.4
)

var (
	denseTint   = color.NRGBA{A: 25}
	denseUser   = color.NRGBA{R: 80, G: 255, B: 80, A: 255}
	denseBright = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	denseBase   = color.NRGBA{G: 255, B: 65, A: 255}
)

// Dense renders the classic falling code. Glyphs over the viewer are dense,
// bright and hyperactive while the background stays sparse and dim.
type Dense struct {
	codeLayer
}

// NewDense creates the dense code renderer.
func NewDense(rng *mathx.Rand) *Dense {
	return &Dense{codeLayer{rng: rng}}
}

// Render implements Renderer.
func (d *Dense) Render(in *Input, out *draw.List) error {
	grid := d.ensure(in)
	background(in, out, denseTint)

	for _, s := range grid.Streams {
		s.Update(in.Tick, in.Frozen, grid.Width, grid.Height, d.rng)

		for i := range s.Glyphs {
			g := &s.Glyphs[i]
			x, y := s.Pos(i)
			if y < 0 || y > grid.Height {
				continue
			}
			bright := sampleAt(in, x, y)

			if bright > denseUserLight {
				if in.Tick%denseReroll == 0 {
					g.Value = glyph.RandomSymbol(d.rng)
				}
				density := mathx.Map(bright, denseUserLight, 255, 0.5, 1)
				if d.rng.Float64() > density {
					continue
				}
				alpha := mathx.Map(bright, denseUserLight, 255, 150, 255)
				c := denseUser
				if bright > denseHighlight {
					c = denseBright
				}
				out.Add(glyphText(x, y, g.Value, draw.WithAlpha(c, alpha)))
				continue
			}

			if d.rng.Float64() > denseBackgroundP {
				continue
			}
			alpha := 180.0
			if i > 0 {
				alpha = mathx.Map(float64(i), 0, float64(s.Len()), 120, 20)
			}
			out.Add(glyphText(x, y, g.Value, draw.WithAlpha(denseBase, alpha)))
		}
	}
	return nil
}
