package effect

import (
	"fmt"
	"image/color"
	"math"

	"github.com/esimov/illusion/detector"
	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/mathx"
	"github.com/esimov/illusion/motion"
)

const (
	// GlitchThreshold is the aggregate motion that triggers the glitch.
	GlitchThreshold = 50000
	// GlitchDuration is the number of ticks a glitch lasts.
	GlitchDuration = 30

	glitchStep     = 2
	glitchDarkEdge = 80
	glitchLines    = 10
	eyeRadius      = 25
	hudCorner      = 20
)

var (
	darkRamp    = draw.NewRamp(color.NRGBA{R: 10, G: 10, B: 40}, color.NRGBA{R: 30, G: 20, B: 80})
	cyanRamp    = draw.NewRamp(color.NRGBA{R: 0, G: 200, B: 200}, color.NRGBA{R: 50, G: 255, B: 255})
	magentaRamp = draw.NewRamp(color.NRGBA{R: 200, G: 0, B: 200}, color.NRGBA{R: 255, G: 100, B: 255})

	hudColor   = color.NRGBA{G: 255, B: 200, A: 255}
	hudFrame   = color.NRGBA{G: 255, B: 200, A: 200}
	hotPink    = color.NRGBA{R: 255, B: 100, A: 255}
	scanline   = color.NRGBA{G: 255, B: 200, A: 20}
	slitColor  = color.NRGBA{R: 255, B: 100, A: 150}
	alarmColor = color.NRGBA{R: 255, B: 80, A: 255}
)

// Glitch is the cyberpunk HUD: neon colour grading with chromatic
// aberration, a motion triggered glitch and face annotations.
type Glitch struct {
	timer Timer
	rng   *mathx.Rand
}

// NewGlitch creates the glitch renderer.
func NewGlitch(rng *mathx.Rand) *Glitch {
	return &Glitch{rng: rng}
}

// Timer returns the glitch countdown state.
func (g *Glitch) Timer() Timer { return g.timer }

// Grade maps a brightness to the colour graded channels. Dark cells follow a
// navy ramp, bright cells alternate between a cyan and a magenta ramp.
func Grade(bright float64, x, y int, tick uint64) (r, g, b float64) {
	if bright < glitchDarkEdge {
		return darkRamp.At(bright / glitchDarkEdge)
	}
	t := (bright - glitchDarkEdge) / (255 - glitchDarkEdge)
	blend := float64((uint64(x+y)+tick*2)%100) / 100
	if blend > 0.5 {
		return cyanRamp.At(t)
	}
	return magentaRamp.At(t)
}

// Render implements Renderer.
func (g *Glitch) Render(in *Input, out *draw.List) error {
	f := in.Frame
	if err := validateFaces(in.Faces, f.Width, f.Height); err != nil {
		return err
	}

	if motion.AggregateDelta(f, in.Previous) > GlitchThreshold {
		g.timer.Trigger(GlitchDuration)
	} else {
		g.timer.Tick()
	}

	out.Add(draw.Clear{Color: black})

	w, h := in.vp()
	vw, vh := in.vw(), in.vh()
	scale := math.Min(w/vw, h/vh)
	offX := (w - vw*scale) / 2
	offY := (h - vh*scale) / 2

	for y := 0; y < f.Height; y += glitchStep {
		for x := 0; x < f.Width; x += glitchStep {
			bright := f.Brightness(f.MirrorIndex(x, y))
			mr, mg, mb := Grade(bright, x, y, in.Tick)

			px := offX + float64(x)*scale
			py := offY + float64(y)*scale
			sz := scale * glitchStep

			aberration := 2.0
			if g.timer.Active {
				aberration = g.rng.Range(3, 8)
			}
			out.Add(
				draw.Rect{X: px - aberration, Y: py, W: sz, H: sz, Fill: draw.RGBA(mr, 0, 0, 100)},
				draw.Rect{X: px, Y: py, W: sz, H: sz, Fill: draw.RGBA(0, mg, 0, 100)},
				draw.Rect{X: px + aberration, Y: py, W: sz, H: sz, Fill: draw.RGBA(0, 0, mb, 100)},
			)
		}
	}

	if g.timer.Active {
		for i := 0; i < glitchLines; i++ {
			ly := g.rng.Range(0, h)
			out.Add(draw.Line{X1: 0, Y1: ly, X2: w, Y2: ly, Color: slitColor, Width: 2})
		}
		if in.Tick%10 < 5 {
			out.Add(draw.Text{X: w / 2, Y: h / 2, Value: "[ SIGNAL LOST ]", Size: 48, Color: alarmColor, Align: draw.AlignCenter})
		}
	}

	for _, face := range in.Faces {
		face = face.Fit(f.Width, f.Height, in.Width, in.Height)
		hud(out, face.X, face.Y, face.W, face.H)

		le, okL := face.Landmarks[detector.LeftEye]
		re, okR := face.Landmarks[detector.RightEye]
		if okL && okR {
			cyberEye(out, le.X, le.Y, in.Tick)
			cyberEye(out, re.X, re.Y, in.Tick)
		}
	}

	for i := 0.0; i < h; i += 4 {
		out.Add(draw.Line{X1: 0, Y1: i, X2: w, Y2: i, Color: scanline, Width: 1})
	}
	return nil
}

// hud draws the bracketed frame and the status labels around a face.
func hud(out *draw.List, fx, fy, fw, fh float64) {
	out.Add(draw.Rect{X: fx, Y: fy, W: fw, H: fh, Stroke: hudFrame, StrokeWidth: 2})

	c := float64(hudCorner)
	for _, l := range [][4]float64{
		{fx, fy, fx + c, fy},
		{fx, fy, fx, fy + c},
		{fx + fw, fy, fx + fw - c, fy},
		{fx + fw, fy, fx + fw, fy + c},
		{fx, fy + fh, fx + c, fy + fh},
		{fx, fy + fh, fx, fy + fh - c},
		{fx + fw, fy + fh, fx + fw - c, fy + fh},
		{fx + fw, fy + fh, fx + fw, fy + fh - c},
	} {
		out.Add(draw.Line{X1: l[0], Y1: l[1], X2: l[2], Y2: l[3], Color: hudFrame, Width: 2})
	}
	out.Add(
		draw.Text{X: fx, Y: fy - 20, Value: "ID: UNKNOWN", Size: 12, Color: hudColor},
		draw.Text{X: fx, Y: fy + fh + 5, Value: "STATUS: SCANNING...", Size: 12, Color: hudColor},
	)
}

// cyberEye draws a crosshair with a marker orbiting the pupil.
func cyberEye(out *draw.List, x, y float64, tick uint64) {
	r := float64(eyeRadius)
	angle := float64(tick) * 0.05
	out.Add(
		draw.Circle{X: x, Y: y, R: r, Stroke: draw.WithAlpha(hudColor, 150), StrokeWidth: 2},
		draw.Line{X1: x - r, Y1: y, X2: x + r, Y2: y, Color: hotPink, Width: 1},
		draw.Line{X1: x, Y1: y - r, X2: x, Y2: y + r, Color: hotPink, Width: 1},
		draw.Circle{X: x, Y: y, R: 3, Fill: hotPink},
		draw.Circle{X: x + math.Cos(angle)*r*0.7, Y: y + math.Sin(angle)*r*0.7, R: 2, Fill: hudColor},
	)
}

// validateFaces rejects detection payloads that cannot be mapped onto the
// capture grid.
func validateFaces(faces []detector.Face, width, height int) error {
	for i, f := range faces {
		if err := f.Validate(width, height); err != nil {
			return fmt.Errorf("%w: face %d: %v", ErrMalformedDetection, i, err)
		}
	}
	return nil
}
