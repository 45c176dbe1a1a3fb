package effect

import (
	"image/color"
	"math"

	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/glyph"
	"github.com/esimov/illusion/mathx"
	"github.com/esimov/illusion/motion"
)

const (
	chaosReshufflePeriod = 30
	chaosReshuffleShare  = 0.4
	chaosBrokenChance    = 0.15
	chaosBlinkChance     = 0.02
	chaosUserLight       = 30
	chaosUserStep        = 3
	chaosDistortChance   = 0.1
	chaosErrorChance     = 0.03

	ghostCap    = 500
	ghostChance = 0.04
	ghostDelta  = 15
	ghostDecay  = 2
	ghostStart  = 180
)

var (
	chaosTint   = color.NRGBA{R: 20, A: 30}
	chaosRed    = color.NRGBA{R: 255, B: 50, A: 255}
	chaosGreen  = color.NRGBA{G: 200, B: 50, A: 255}
	chaosPurple = color.NRGBA{R: 180, B: 255, A: 255}
	ghostColor  = color.NRGBA{R: 255, B: 50, A: 255}
	redChannel  = color.NRGBA{R: 255, A: 120}
	cyanChannel = color.NRGBA{G: 255, B: 255, A: 100}
	distortion  = color.NRGBA{R: 255, B: 80, A: 200}

	errorMessages = []string{"SYSTEM ERROR", "DATA CORRUPTION", "SIGNAL LOST", "VIRUS DETECTED", "MEMORY FAULT"}
)

// Chaos renders the system failure: scrambled streams, corrupted symbols,
// ghost artifacts, a sliced silhouette and the occasional blink.
type Chaos struct {
	codeLayer

	ghosts *Queue[GhostMark]
	last   draw.List
	blink  float64
}

// NewChaos creates the chaos renderer.
func NewChaos(rng *mathx.Rand) *Chaos {
	return &Chaos{
		codeLayer: codeLayer{rng: rng},
		ghosts:    NewQueue[GhostMark](ghostCap),
		blink:     chaosBlinkChance,
	}
}

// Ghosts returns the ghost mark queue.
func (c *Chaos) Ghosts() *Queue[GhostMark] { return c.ghosts }

// Render implements Renderer.
func (c *Chaos) Render(in *Input, out *draw.List) error {
	grid := c.ensure(in)

	if c.rng.Chance(c.blink) {
		if c.last == nil {
			out.Add(draw.Clear{Color: black})
			return nil
		}
		out.Add(c.last...)
		return nil
	}

	start := len(*out)
	background(in, out, chaosTint)

	// Reshuffling moves streams, so it waits while time is frozen.
	if in.Tick%chaosReshufflePeriod == 0 && !in.Frozen {
		grid.Scramble(chaosReshuffleShare, c.rng)
	}

	for _, s := range grid.Streams {
		s.Update(in.Tick, in.Frozen, grid.Width, grid.Height, c.rng)

		for i := range s.Glyphs {
			x, y := s.Pos(i)
			if !visible(in, x, y) {
				continue
			}
			alpha := 255.0
			if i > 0 {
				alpha = mathx.Map(float64(i), 0, float64(s.Len()), 200, 40)
			}
			out.Add(glyphText(x, y, c.corrupt(s.Glyphs[i].Value), draw.WithAlpha(c.palette(), alpha)))
		}
	}

	c.ghosts.Retain(func(g *GhostMark) bool {
		g.Alpha -= ghostDecay
		g.Y += c.rng.Range(-1, 2)
		return g.Alpha > 0
	})
	c.ghosts.Each(func(g *GhostMark) {
		out.Add(draw.Rect{X: g.X, Y: g.Y, W: 4, H: 4, Fill: draw.WithAlpha(ghostColor, g.Alpha)})
	})

	w, h := in.vp()
	slice := newBand(h, c.rng)

	moving := hasMotionSource(in)
	silhouette(in, chaosUserStep, chaosUserLight, func(x, y int, px, py, bright float64) {
		px += slice.shift(py)
		offset := mathx.Map(bright, chaosUserLight, 255, 6, 18)
		sym := "?"
		if c.rng.Float64() > 0.4 {
			sym = string(glyph.RandomBroken(c.rng))
		}
		out.Add(
			draw.Text{X: px - offset, Y: py, Value: sym, Size: 12, Color: redChannel},
			draw.Text{X: px + offset, Y: py, Value: sym, Size: 12, Color: cyanChannel},
		)
		if moving && c.rng.Chance(ghostChance) &&
			motion.BrightnessDelta(in.Frame, in.Previous, x, y) > ghostDelta {
			c.ghosts.Push(GhostMark{X: px, Y: py, Alpha: ghostStart})
		}
	})

	if c.rng.Chance(chaosDistortChance) {
		width := c.rng.Range(2, 5)
		n := int(c.rng.Range(3, 10))
		for i := 0; i < n; i++ {
			ly := c.rng.Range(0, h)
			x0 := c.rng.Range(0, w*0.3)
			x1 := x0 + c.rng.Range(w*0.3, w*0.7)
			out.Add(draw.Line{X1: x0, Y1: ly, X2: x1, Y2: ly, Color: distortion, Width: width})
		}
	}

	if c.rng.Chance(chaosErrorChance) && in.Tick%5 < 3 {
		msg := errorMessages[c.rng.Intn(len(errorMessages))]
		out.Add(draw.Text{
			X:     w/2 + c.rng.Range(-50, 50),
			Y:     h/2 + c.rng.Range(-100, 100),
			Value: msg,
			Size:  32,
			Color: chaosRed,
			Align: draw.AlignCenter,
		})
	}

	c.last = (*out)[start:].Clone()
	return nil
}

// palette picks the stream colour: mostly red, some green and purple.
func (c *Chaos) palette() color.NRGBA {
	switch p := c.rng.Float64(); {
	case p < 0.6:
		return chaosRed
	case p < 0.8:
		return chaosGreen
	}
	return chaosPurple
}

// corrupt substitutes a broken block for r with a fixed probability.
func (c *Chaos) corrupt(r rune) rune {
	if c.rng.Chance(chaosBrokenChance) {
		return glyph.RandomBroken(c.rng)
	}
	return r
}

// band is the horizontal strip of the silhouette displaced for one tick.
type band struct {
	y, h, offset float64
}

func newBand(height float64, rng *mathx.Rand) band {
	return band{
		offset: math.Floor(rng.Range(-30, 30)),
		y:      math.Floor(rng.Range(height*0.2, height*0.8)),
		h:      math.Floor(rng.Range(30, 100)),
	}
}

// shift returns the horizontal displacement of a point at row py.
func (b band) shift(py float64) float64 {
	if py > b.y && py < b.y+b.h {
		return b.offset
	}
	return 0
}
