package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esimov/illusion/detector"
	"github.com/esimov/illusion/dispatch"
	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/effect"
	"github.com/esimov/illusion/frame"
)

var _ Faces = (*detector.Poller)(nil)

func TestMain(m *testing.M) {
	SetLogger(nil)
	m.Run()
}

func solid(w, h int, v uint8) *frame.Frame {
	f := frame.New(w, h)
	f.Fill(0, 0, w, h, v, v, v)
	return f
}

type recorder struct {
	inputs []effect.Input
	err    error
	panic  bool
}

func (r *recorder) Render(in *effect.Input, out *draw.List) error {
	if r.panic {
		panic("boom")
	}
	// the engine recycles both buffers, keep copies
	c := *in
	c.Frame = in.Frame.Clone()
	if in.Previous != nil {
		c.Previous = in.Previous.Clone()
	}
	r.inputs = append(r.inputs, c)
	out.Add(draw.Clear{}, draw.Rect{W: 1, H: 1})
	return r.err
}

type staticFaces struct {
	faces     []detector.Face
	submitted int
}

func (s *staticFaces) Submit(context.Context, *frame.Frame) bool {
	s.submitted++
	return true
}

func (s *staticFaces) Latest() []detector.Face { return s.faces }

func TestTickNotReady(t *testing.T) {
	rec := &recorder{}
	e := New(dispatch.New(1, dispatch.WithRenderer(dispatch.Fiber, rec)))

	for _, f := range []*frame.Frame{nil, {}, {Width: 2, Height: 2}} {
		out := e.Tick(f, dispatch.Fiber)
		require.Len(t, out, 1)
		assert.IsType(t, draw.Clear{}, out[0])
	}
	assert.Empty(t, rec.inputs)
	assert.Zero(t, e.Ticks())
}

func TestTickHandsPreviousFrameCopy(t *testing.T) {
	rec := &recorder{}
	e := New(dispatch.New(1, dispatch.WithRenderer(dispatch.Fiber, rec)))

	buf := solid(4, 4, 10)
	e.Tick(buf, dispatch.Fiber)
	// the source overwrites its buffer in place
	buf.Fill(0, 0, 4, 4, 90, 90, 90)
	e.Tick(buf, dispatch.Fiber)

	require.Len(t, rec.inputs, 2)
	assert.Nil(t, rec.inputs[0].Previous)
	prev := rec.inputs[1].Previous
	require.NotNil(t, prev)
	assert.Equal(t, uint8(10), prev.Pix[0])
	assert.Equal(t, uint8(90), rec.inputs[1].Frame.Pix[0])
	assert.Equal(t, []uint64{1, 2}, []uint64{rec.inputs[0].Tick, rec.inputs[1].Tick})
}

func TestCameraSmoothing(t *testing.T) {
	rec := &recorder{}
	e := New(dispatch.New(1, dispatch.WithRenderer(dispatch.Fiber, rec)), WithViewport(640, 480))
	e.SetPointer(100, 50)

	e.Tick(solid(4, 4, 0), dispatch.Fiber)
	x, y := e.Camera()
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 5, y, 1e-9)

	e.Tick(solid(4, 4, 0), dispatch.Fiber)
	x, _ = e.Camera()
	assert.InDelta(t, 19, x, 1e-9)

	cam, ok := rec.inputs[0].Scene[0].(draw.Camera)
	require.True(t, ok)
	camZ := 240 / math.Tan(math.Pi/6)
	assert.InDelta(t, 10, cam.Eye.X, 1e-9)
	assert.InDelta(t, -95, cam.Eye.Y, 1e-9)
	assert.InDelta(t, camZ+300, cam.Eye.Z, 1e-9)
	assert.Len(t, rec.inputs[0].Scene, 4)
}

func TestFrozenFlagReachesRenderer(t *testing.T) {
	rec := &recorder{}
	e := New(dispatch.New(1, dispatch.WithRenderer(dispatch.Fiber, rec)))
	e.SetFrozen(true)
	e.Tick(solid(2, 2, 0), dispatch.Fiber)
	e.SetFrozen(false)
	e.Tick(solid(2, 2, 0), dispatch.Fiber)

	assert.True(t, rec.inputs[0].Frozen)
	assert.False(t, rec.inputs[1].Frozen)
}

func TestRendererFailureIsContained(t *testing.T) {
	rec := &recorder{err: errors.New("bad payload")}
	e := New(dispatch.New(1, dispatch.WithRenderer(dispatch.Rain, rec)))

	out := e.Tick(solid(2, 2, 0), dispatch.Rain)
	require.Len(t, out, 1)
	assert.IsType(t, draw.Clear{}, out[0])
	assert.EqualValues(t, 1, e.Failures())

	rec.err = nil
	out = e.Tick(solid(2, 2, 0), dispatch.Rain)
	assert.Len(t, out, 2)
	assert.NotNil(t, rec.inputs[1].Previous, "history advanced across the failed tick")
}

func TestRendererPanicIsRecovered(t *testing.T) {
	rec := &recorder{panic: true}
	e := New(dispatch.New(1, dispatch.WithRenderer(dispatch.Sand, rec)))

	var out draw.List
	require.NotPanics(t, func() { out = e.Tick(solid(2, 2, 0), dispatch.Sand) })
	require.Len(t, out, 1)

	rec.panic = false
	out = e.Tick(solid(2, 2, 0), dispatch.Sand)
	assert.Len(t, out, 2)
}

func TestMalformedDetectionKeepsGlitchState(t *testing.T) {
	faces := &staticFaces{faces: []detector.Face{{X: 1, Y: 1}}}
	e := New(dispatch.New(1), WithFaces(faces))

	black, white := solid(160, 120, 0), solid(160, 120, 255)
	e.Tick(black, dispatch.Glitch)
	out := e.Tick(white, dispatch.Glitch)
	require.Len(t, out, 1, "tick dropped")

	g := e.Dispatcher().Renderer(dispatch.Glitch).(*effect.Glitch)
	assert.Equal(t, effect.Timer{}, g.Timer())

	faces.faces = nil
	out = e.Tick(black, dispatch.Glitch)
	assert.Greater(t, len(out), 1)
	assert.True(t, g.Timer().Active, "next tick renders normally")
	assert.Equal(t, 3, faces.submitted)
}

func TestUnknownModeFallsBack(t *testing.T) {
	e := New(dispatch.New(1))
	m, _ := dispatch.ParseMode("nonsense")
	out := e.Tick(solid(4, 4, 200), m)
	assert.Greater(t, count(out), 0)
	assert.True(t, e.Dispatcher().Initialized(dispatch.Fiber))
}

func count(l draw.List) int {
	n := 0
	for _, p := range l {
		if _, ok := p.(draw.Box); ok {
			n++
		}
	}
	return n
}
