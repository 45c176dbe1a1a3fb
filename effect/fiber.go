package effect

import (
	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/mathx"
)

const (
	fiberSpacing  = 5.0
	fiberWidth    = 1.8
	fiberMinLight = 20
)

// Fiber extrudes every capture pixel into a glass fiber whose height follows
// the pixel brightness and whose tip glows with the pixel colour.
type Fiber struct{}

// NewFiber creates the fiber renderer. It holds no state.
func NewFiber() *Fiber { return &Fiber{} }

// Render implements Renderer.
func (*Fiber) Render(in *Input, out *draw.List) error {
	stage(in, out)

	f := in.Frame
	startX, startY := in.grid3D(fiberSpacing)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			idx := f.MirrorIndex(x, y)
			bright := f.Brightness(idx)
			if bright < fiberMinLight {
				continue
			}
			r, g, b := f.RGB(idx)
			rf, gf, bf := float64(r), float64(g), float64(b)

			z := mathx.Map(bright/255, 0, 1, 10, 200)
			px := startX + float64(x)*fiberSpacing
			py := startY + float64(y)*fiberSpacing

			out.Add(
				draw.Box{
					Center:    draw.Vec3{X: px, Y: py, Z: z / 2},
					Size:      draw.Vec3{X: fiberWidth, Y: fiberWidth, Z: z},
					Color:     draw.RGB(rf*0.1, gf*0.1, bf*0.1),
					Material:  draw.Specular,
					Shininess: 50,
				},
				draw.Box{
					Center:   draw.Vec3{X: px, Y: py, Z: z + 0.5},
					Size:     draw.Vec3{X: fiberWidth, Y: fiberWidth, Z: 2},
					Color:    draw.RGB(rf, gf, bf),
					Material: draw.Emissive,
				},
			)
		}
	}
	return nil
}
