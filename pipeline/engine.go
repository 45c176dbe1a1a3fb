// Package pipeline runs one frame of the effect per display tick: it keeps
// the capture history, smooths the camera orbit, feeds the detector and
// invokes the renderer of the selected mode.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/esimov/illusion/detector"
	"github.com/esimov/illusion/dispatch"
	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/effect"
	"github.com/esimov/illusion/frame"
	"github.com/esimov/illusion/mathx"
)

// ErrRenderPanic wraps a panic recovered from a renderer.
var ErrRenderPanic = errors.New("pipeline: renderer panicked")

const (
	// DefaultSmoothing is the fraction of the remaining distance the camera
	// covers toward its target on every tick.
	DefaultSmoothing = 0.1

	fovY = math.Pi / 3
)

// Faces provides detection results to the engine. Submit hands over the
// current frame, Latest returns the newest snapshot without blocking.
type Faces interface {
	Submit(ctx context.Context, f *frame.Frame) bool
	Latest() []detector.Face
}

// Engine is the per-tick orchestrator. It is not safe for concurrent use:
// Tick, SetPointer and SetFrozen must be called from the render loop.
type Engine struct {
	ctx      context.Context
	modes    *dispatch.Dispatcher
	faces    Faces
	history  frame.History
	out      draw.List
	viewport struct{ width, height int }

	camX, camY       float64
	targetX, targetY float64
	smoothing        float64

	frozen bool
	tick   uint64
	failed uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithViewport sets the output size in pixels.
func WithViewport(width, height int) Option {
	return func(e *Engine) {
		e.viewport.width, e.viewport.height = width, height
	}
}

// WithFaces attaches a detection provider.
func WithFaces(f Faces) Option {
	return func(e *Engine) { e.faces = f }
}

// WithSmoothing sets the camera smoothing factor in (0, 1].
func WithSmoothing(s float64) Option {
	return func(e *Engine) {
		if s > 0 && s <= 1 {
			e.smoothing = s
		}
	}
}

// WithContext sets the context handed to detection requests.
func WithContext(ctx context.Context) Option {
	return func(e *Engine) { e.ctx = ctx }
}

// New creates an engine over the given dispatcher.
func New(modes *dispatch.Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		ctx:       context.Background(),
		modes:     modes,
		smoothing: DefaultSmoothing,
	}
	e.viewport.width, e.viewport.height = 640, 480
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetPointer sets the camera orbit target.
func (e *Engine) SetPointer(x, y float64) {
	e.targetX, e.targetY = x, y
}

// SetFrozen toggles the time freeze.
func (e *Engine) SetFrozen(frozen bool) { e.frozen = frozen }

// Frozen reports whether time is frozen.
func (e *Engine) Frozen() bool { return e.frozen }

// SetViewport changes the output size.
func (e *Engine) SetViewport(width, height int) {
	e.viewport.width, e.viewport.height = width, height
}

// Viewport returns the output size.
func (e *Engine) Viewport() (int, int) { return e.viewport.width, e.viewport.height }

// Camera returns the smoothed orbit position.
func (e *Engine) Camera() (float64, float64) { return e.camX, e.camY }

// Ticks returns the number of rendered ticks.
func (e *Engine) Ticks() uint64 { return e.tick }

// Failures returns the number of ticks dropped by a renderer failure.
func (e *Engine) Failures() uint64 { return e.failed }

// Dispatcher returns the mode dispatcher.
func (e *Engine) Dispatcher() *dispatch.Dispatcher { return e.modes }

// Tick renders one frame in mode m. The returned list is reused by the next
// call and must be consumed before it.
//
// A frame that is not ready renders nothing but the background. A renderer
// failure is logged and the tick renders nothing but the background; the
// next tick renders normally.
func (e *Engine) Tick(f *frame.Frame, m dispatch.Mode) draw.List {
	e.out.Reset()
	if !f.Valid() || e.viewport.width <= 0 || e.viewport.height <= 0 {
		e.out.Add(draw.Clear{Color: color.NRGBA{A: 255}})
		return e.out
	}
	e.tick++
	e.history.Set(f)

	e.camX = mathx.Lerp(e.camX, e.targetX, e.smoothing)
	e.camY = mathx.Lerp(e.camY, e.targetY, e.smoothing)

	in := &effect.Input{
		Frame:    e.history.Current(),
		Previous: e.history.Previous(),
		Tick:     e.tick,
		Frozen:   e.frozen,
		Width:    e.viewport.width,
		Height:   e.viewport.height,
		Scene:    e.scene(),
	}
	if e.faces != nil {
		in.Faces = e.faces.Latest()
		e.faces.Submit(e.ctx, f)
	}

	if err := e.render(e.modes.Renderer(m), in); err != nil {
		e.failed++
		Logf("pipeline: %s tick %d dropped: %v", m, e.tick, err)
		e.out.Reset()
		e.out.Add(draw.Clear{Color: color.NRGBA{A: 255}})
	}
	e.history.Advance()
	return e.out
}

// render calls the renderer and turns a panic into an error.
func (e *Engine) render(r effect.Renderer, in *effect.Input) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrRenderPanic, p)
		}
	}()
	return r.Render(in, &e.out)
}

// scene returns the camera and the lights of the 3D modes. The camera orbits
// the origin at the distance where the viewport height spans a 60 degree
// field of view.
func (e *Engine) scene() []draw.Primitive {
	camZ := (float64(e.viewport.height) / 2) / math.Tan(fovY/2)
	return []draw.Primitive{
		draw.Camera{
			Eye:  draw.Vec3{X: e.camX, Y: e.camY - 100, Z: camZ + 300},
			Up:   draw.Vec3{Y: 1},
			FovY: fovY,
		},
		draw.Light{Kind: draw.AmbientLight, Color: color.NRGBA{R: 40, G: 40, B: 40, A: 255}},
		draw.Light{
			Kind:   draw.PointLight,
			Color:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
			Vector: draw.Vec3{X: e.camX, Y: e.camY, Z: 300},
		},
		draw.Light{
			Kind:   draw.DirectionalLight,
			Color:  color.NRGBA{R: 50, G: 50, B: 100, A: 255},
			Vector: draw.Vec3{X: 1, Z: -0.5},
		},
	}
}
