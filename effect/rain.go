package effect

import (
	"image/color"

	"github.com/aquilax/go-perlin"

	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/mathx"
)

const (
	rainSpacing   = 5.0
	rainBoxSize   = 2.0
	rainMinLight  = 15
	rainThreshold = 0.6
)

var (
	rainBody      = color.NRGBA{G: 30, A: 255}
	rainHighlight = color.NRGBA{R: 200, G: 255, B: 200, A: 255}
	rainBase      = color.NRGBA{G: 150, B: 50, A: 255}
)

// Rain renders the capture as green columns whose caps flicker along a noise
// field scrolling upwards over time.
type Rain struct {
	noise *perlin.Perlin
}

// NewRain creates the rain renderer with a noise field seeded from rng.
func NewRain(rng *mathx.Rand) *Rain {
	return &Rain{
		noise: perlin.NewPerlin(2, 2, 3, rng.Int63()),
	}
}

// Noise returns the noise field in [0, 1] at capture cell (x, y) and tick.
func (r *Rain) Noise(x, y int, tick uint64) float64 {
	n := r.noise.Noise2D(float64(x)*0.1, float64(y)*0.1-float64(tick)*0.05)
	return mathx.Clamp((n+1)/2, 0, 1)
}

// Render implements Renderer.
func (r *Rain) Render(in *Input, out *draw.List) error {
	stage(in, out)

	f := in.Frame
	startX, startY := in.grid3D(rainSpacing)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			bright := f.Brightness(f.MirrorIndex(x, y))
			if bright < rainMinLight {
				continue
			}
			z := mathx.Map(bright, 0, 255, 10, 250)
			px := startX + float64(x)*rainSpacing
			py := startY + float64(y)*rainSpacing

			tip := rainBase
			if r.Noise(x, y, in.Tick) > rainThreshold {
				tip = rainHighlight
			}
			out.Add(
				draw.Box{
					Center:    draw.Vec3{X: px, Y: py, Z: z / 2},
					Size:      draw.Vec3{X: rainBoxSize, Y: rainBoxSize, Z: z},
					Color:     rainBody,
					Material:  draw.Specular,
					Shininess: 100,
				},
				draw.Box{
					Center:   draw.Vec3{X: px, Y: py, Z: z + 1},
					Size:     draw.Vec3{X: rainBoxSize, Y: rainBoxSize, Z: 2},
					Color:    tip,
					Material: draw.Emissive,
				},
			)
		}
	}
	return nil
}
