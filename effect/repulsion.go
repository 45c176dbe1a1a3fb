package effect

import (
	"image/color"
	"math"

	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/mathx"
	"github.com/esimov/illusion/motion"
)

const (
	repulsionCentroidLight = 60
	repulsionCentroidStep  = 4
	repulsionSmoothing     = 0.1
	repulsionRadius        = 250.0
	repulsionGlowLight     = 40
	repulsionGlowStep      = 2

	shockwaveCap    = 64
	shockwaveChance = 0.005
	shockwaveDelta  = 40
	shockwaveGrowth = 8
	shockwaveDecay  = 4
)

var (
	repulsionTint = color.NRGBA{A: 40}
	repelledCode  = color.NRGBA{G: 60, B: 30, A: 255}
	idleCode      = color.NRGBA{G: 80, B: 40, A: 255}
	goldenAura    = color.NRGBA{R: 255, G: 200, B: 100, A: 255}
	whiteCore     = color.NRGBA{R: 255, G: 255, B: 230, A: 255}
	shockRing     = color.NRGBA{R: 255, G: 220, B: 150, A: 255}
	shockEcho     = color.NRGBA{R: 255, G: 255, B: 200, A: 255}
)

// Repulsion renders the viewer as a golden glow that pushes the falling code
// away and emits shockwaves on sudden motion.
type Repulsion struct {
	codeLayer

	centerX, centerY float64
	shockwaves       *Queue[Shockwave]
}

// NewRepulsion creates the repulsion renderer.
func NewRepulsion(rng *mathx.Rand) *Repulsion {
	return &Repulsion{
		codeLayer:  codeLayer{rng: rng},
		shockwaves: NewQueue[Shockwave](shockwaveCap),
	}
}

// Center returns the smoothed centroid of the viewer silhouette.
func (r *Repulsion) Center() (float64, float64) { return r.centerX, r.centerY }

// Shockwaves returns the live shockwave queue.
func (r *Repulsion) Shockwaves() *Queue[Shockwave] { return r.shockwaves }

// track moves the centroid toward the mean position of the bright cells.
func (r *Repulsion) track(in *Input) {
	var sumX, sumY float64
	var count int
	silhouette(in, repulsionCentroidStep, repulsionCentroidLight, func(_, _ int, px, py, _ float64) {
		sumX += px
		sumY += py
		count++
	})
	if count == 0 {
		return
	}
	r.centerX = mathx.Lerp(r.centerX, sumX/float64(count), repulsionSmoothing)
	r.centerY = mathx.Lerp(r.centerY, sumY/float64(count), repulsionSmoothing)
}

// Displace returns the render position of a glyph at (x, y) pushed away from
// the centroid, and the alpha it is drawn with. Glyphs outside the radius
// are returned unchanged with ok set to false.
func (r *Repulsion) Displace(x, y float64) (rx, ry, alpha float64, ok bool) {
	dx, dy := x-r.centerX, y-r.centerY
	dist := math.Hypot(dx, dy)
	if dist >= repulsionRadius {
		return x, y, 0, false
	}
	force := mathx.Map(dist, 0, repulsionRadius, 1.2, 0)
	alpha = mathx.Map(dist, 0, repulsionRadius, 2, 25)
	return x + dx*force*0.6, y + dy*force*0.6, alpha, true
}

// Render implements Renderer.
func (r *Repulsion) Render(in *Input, out *draw.List) error {
	grid := r.ensure(in)
	background(in, out, repulsionTint)

	r.track(in)

	r.shockwaves.Retain(func(s *Shockwave) bool {
		s.Radius += shockwaveGrowth
		s.Alpha -= shockwaveDecay
		return s.Alpha > 0
	})

	for _, s := range grid.Streams {
		s.Update(in.Tick, in.Frozen, grid.Width, grid.Height, r.rng)

		for i := range s.Glyphs {
			x, y := s.Pos(i)
			if y < 0 || y > grid.Height {
				continue
			}
			rx, ry, alpha, near := r.Displace(x, y)
			c := repelledCode
			if !near {
				alpha = mathx.Map(float64(i), 0, float64(s.Len()), 40, 10)
				c = idleCode
			}
			out.Add(glyphText(rx, ry, s.Glyphs[i].Value, draw.WithAlpha(c, alpha)))
		}
	}

	out.Add(draw.Blend{Mode: draw.BlendAdd})
	moving := hasMotionSource(in)
	silhouette(in, repulsionGlowStep, repulsionGlowLight, func(x, y int, px, py, bright float64) {
		core := mathx.Map(bright, repulsionGlowLight, 255, 3, 10)
		intensity := mathx.Map(bright, repulsionGlowLight, 255, 50, 200)
		out.Add(
			draw.Circle{X: px, Y: py, R: core, Fill: draw.WithAlpha(goldenAura, intensity*0.5)},
			draw.Circle{X: px, Y: py, R: core / 2, Fill: draw.WithAlpha(whiteCore, intensity)},
		)
		if moving && r.rng.Chance(shockwaveChance) &&
			motion.BrightnessDelta(in.Frame, in.Previous, x, y) > shockwaveDelta {
			r.shockwaves.Push(Shockwave{X: px, Y: py, Radius: 20, Alpha: 200})
		}
	})
	out.Add(draw.Blend{Mode: draw.BlendNormal})

	r.shockwaves.Each(func(s *Shockwave) {
		out.Add(
			draw.Circle{X: s.X, Y: s.Y, R: s.Radius, Stroke: draw.WithAlpha(shockRing, s.Alpha), StrokeWidth: 3},
			draw.Circle{X: s.X, Y: s.Y, R: s.Radius * 1.25, Stroke: draw.WithAlpha(shockEcho, s.Alpha*0.5), StrokeWidth: 1},
		)
	})
	return nil
}
