// Package effect implements the per-mode renderers. Each renderer owns the
// mutable simulation state of its mode and advances it once per Render call.
package effect

import (
	"errors"
	"image/color"

	"github.com/esimov/illusion/detector"
	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/frame"
)

// ErrMalformedDetection is returned when the detection snapshot handed to a
// renderer cannot be drawn.
var ErrMalformedDetection = errors.New("effect: malformed detection")

// Input carries everything a renderer reads during one tick.
type Input struct {
	// Frame is the current capture. Previous is the capture of the prior
	// tick, nil on the first tick.
	Frame    *frame.Frame
	Previous *frame.Frame

	Tick   uint64
	Frozen bool

	// Width and Height are the viewport size in pixels.
	Width, Height int

	// Scene holds the camera and light primitives of the 3D modes.
	Scene []draw.Primitive

	// Faces is the latest detection snapshot, possibly stale or empty.
	Faces []detector.Face
}

// Renderer maps one tick of input to draw primitives appended to out.
type Renderer interface {
	Render(in *Input, out *draw.List) error
}

var (
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// vw and vh return the capture size as floats.
func (in *Input) vw() float64 { return float64(in.Frame.Width) }
func (in *Input) vh() float64 { return float64(in.Frame.Height) }

// vp returns the viewport size as floats.
func (in *Input) vp() (float64, float64) { return float64(in.Width), float64(in.Height) }

// grid3D returns the world-space origin of the capture grid for the given
// cell spacing, centring the grid on the world origin.
func (in *Input) grid3D(spacing float64) (startX, startY float64) {
	return -(in.vw() * spacing) / 2, -(in.vh() * spacing) / 2
}

// stage clears the viewport and installs the 3D scene.
func stage(in *Input, out *draw.List) {
	out.Add(draw.Clear{Color: black})
	out.Add(in.Scene...)
}
