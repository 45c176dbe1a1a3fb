package draw

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/esimov/illusion/mathx"
)

// Transparent disables a fill or a stroke.
var Transparent = color.NRGBA{}

// RGBA builds a colour from float channels, clamping each to [0, 255].
func RGBA(r, g, b, a float64) color.NRGBA {
	return color.NRGBA{
		R: clamp(r),
		G: clamp(g),
		B: clamp(b),
		A: clamp(a),
	}
}

// RGB builds an opaque colour from float channels.
func RGB(r, g, b float64) color.NRGBA {
	return RGBA(r, g, b, 255)
}

// Scale multiplies the colour channels by f, keeping alpha.
func Scale(c color.NRGBA, f float64) color.NRGBA {
	return RGBA(float64(c.R)*f, float64(c.G)*f, float64(c.B)*f, float64(c.A))
}

// WithAlpha returns c with its alpha channel replaced.
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = clamp(a)
	return c
}

// CSS formats the colour as a canvas style string.
func CSS(c color.NRGBA) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, float64(c.A)/255)
}

func clamp(v float64) uint8 {
	if v != v {
		return 0
	}
	return uint8(mathx.Clamp(v, 0, 255))
}

// Ramp is a linear gradient between two colours.
type Ramp struct {
	From colorful.Color
	To   colorful.Color
}

// NewRamp creates a ramp between two 8-bit colours.
func NewRamp(from, to color.NRGBA) Ramp {
	return Ramp{
		From: colorful.Color{R: float64(from.R) / 255, G: float64(from.G) / 255, B: float64(from.B) / 255},
		To:   colorful.Color{R: float64(to.R) / 255, G: float64(to.G) / 255, B: float64(to.B) / 255},
	}
}

// At returns the colour at position t in [0, 1], channel-wise linear in RGB.
// t is clamped.
func (r Ramp) At(t float64) (red, green, blue float64) {
	c := r.From.BlendRgb(r.To, mathx.Clamp(t, 0, 1))
	return c.R * 255, c.G * 255, c.B * 255
}
