package effect

import (
	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/mathx"
	"github.com/esimov/illusion/motion"
	"github.com/esimov/illusion/particle"
)

const (
	sandSpacing         = 5.0
	sandStep            = motion.CellStep
	sandMotionThreshold = 60
	sandSilhouetteLight = 30
)

// Sand spawns glowing particles wherever the capture moves and lets them fall
// through a dim silhouette of the viewer.
type Sand struct {
	pool *particle.Pool
	rng  *mathx.Rand
}

// NewSand creates the sand renderer with a pool of the given capacity.
func NewSand(capacity int, rng *mathx.Rand) *Sand {
	return &Sand{
		pool: particle.NewPool(capacity),
		rng:  rng,
	}
}

// Pool exposes the particle pool.
func (s *Sand) Pool() *particle.Pool { return s.pool }

// Render implements Renderer.
func (s *Sand) Render(in *Input, out *draw.List) error {
	stage(in, out)

	f := in.Frame
	startX, startY := in.grid3D(sandSpacing)

	fld := motion.Cells(f, in.Previous, sandStep)
	if !fld.Empty() {
		for y := 0; y < f.Height; y += sandStep {
			for x := 0; x < f.Width; x += sandStep {
				if fld.At(x, y) <= sandMotionThreshold {
					continue
				}
				r, g, b := f.RGB(f.MirrorIndex(x, y))
				s.pool.Spawn(particle.Particle{
					X:    startX + float64(x)*sandSpacing,
					Y:    startY + float64(y)*sandSpacing,
					Z:    s.rng.Range(50, 150),
					VZ:   s.rng.Range(-2, -0.5),
					R:    r,
					G:    g,
					B:    b,
					Life: particle.LifeStart,
					Size: s.rng.Range(2, 4),
				})
			}
		}
	}

	for y := 0; y < f.Height; y += sandStep {
		for x := 0; x < f.Width; x += sandStep {
			idx := f.MirrorIndex(x, y)
			if f.Brightness(idx) < sandSilhouetteLight {
				continue
			}
			r, g, b := f.RGB(idx)
			out.Add(draw.Box{
				Center: draw.Vec3{
					X: startX + float64(x)*sandSpacing,
					Y: startY + float64(y)*sandSpacing,
					Z: 10,
				},
				Size:     draw.Vec3{X: 4, Y: 4, Z: 10},
				Color:    draw.RGBA(float64(r)*0.3, float64(g)*0.3, float64(b)*0.3, 150),
				Material: draw.Matte,
			})
		}
	}

	s.pool.Step()
	s.pool.Each(func(p *particle.Particle) {
		a := p.Alpha()
		out.Add(draw.Sphere{
			Center:   draw.Vec3{X: p.X, Y: p.Y, Z: p.Z},
			Radius:   p.Size,
			Color:    draw.RGB(float64(p.R)*a, float64(p.G)*a, float64(p.B)*a),
			Material: draw.Emissive,
		})
	})
	return nil
}
