package effect

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esimov/illusion/detector"
	"github.com/esimov/illusion/draw"
	"github.com/esimov/illusion/frame"
	"github.com/esimov/illusion/glyph"
	"github.com/esimov/illusion/mathx"
)

func solid(w, h int, v uint8) *frame.Frame {
	f := frame.New(w, h)
	f.Fill(0, 0, w, h, v, v, v)
	return f
}

func input(cur, prev *frame.Frame, tick uint64) *Input {
	return &Input{
		Frame:    cur,
		Previous: prev,
		Tick:     tick,
		Width:    640,
		Height:   480,
	}
}

func count[T draw.Primitive](l draw.List) int {
	n := 0
	for _, p := range l {
		if _, ok := p.(T); ok {
			n++
		}
	}
	return n
}

func TestTimerCountdown(t *testing.T) {
	var tm Timer
	tm.Trigger(GlitchDuration)
	require.True(t, tm.Active)

	for i := 1; i < GlitchDuration; i++ {
		tm.Tick()
		require.True(t, tm.Active, "tick %d", i)
	}
	tm.Tick()
	assert.False(t, tm.Active)
	assert.Zero(t, tm.Remaining)

	tm.Tick()
	assert.False(t, tm.Active)
	assert.Zero(t, tm.Remaining)
}

func TestQueueEvictsOldestFirst(t *testing.T) {
	const n, k = 8, 3
	q := NewQueue[int](n)
	for i := 0; i < n+k; i++ {
		q.Push(i)
		require.LessOrEqual(t, q.Len(), n)
	}
	assert.Equal(t, n, q.Len())
	assert.EqualValues(t, k, q.Evicted())

	var got []int
	q.Each(func(v *int) { got = append(got, *v) })
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9, 10}, got)
}

func TestQueueRetainKeepsOrder(t *testing.T) {
	q := NewQueue[int](10)
	for i := 0; i < 6; i++ {
		q.Push(i)
	}
	q.Retain(func(v *int) bool { return *v%2 == 0 })

	var got []int
	q.Each(func(v *int) { got = append(got, *v) })
	assert.Equal(t, []int{0, 2, 4}, got)
	assert.Equal(t, 4, q.At(2))
}

func TestFiberSkipsDarkPixels(t *testing.T) {
	var out draw.List
	require.NoError(t, NewFiber().Render(input(solid(4, 4, 0), nil, 0), &out))
	assert.Len(t, out, 1)
	assert.IsType(t, draw.Clear{}, out[0])

	f := solid(4, 4, 0)
	f.Fill(0, 0, 1, 1, 255, 255, 255)
	out.Reset()
	require.NoError(t, NewFiber().Render(input(f, nil, 0), &out))
	require.Equal(t, 2, count[draw.Box](out))

	tip := out[2].(draw.Box)
	assert.Equal(t, draw.Emissive, tip.Material)
	// buffer column 0 is logical column 3
	assert.InDelta(t, -10+3*fiberSpacing, tip.Center.X, 1e-9)
	assert.InDelta(t, 200.5, tip.Center.Z, 1e-9)
}

func TestRainNoiseDeterministic(t *testing.T) {
	a, b := NewRain(mathx.NewRand(7)), NewRain(mathx.NewRand(7))
	for tick := uint64(0); tick < 20; tick++ {
		na := a.Noise(3, 5, tick)
		assert.GreaterOrEqual(t, na, 0.0)
		assert.LessOrEqual(t, na, 1.0)
		assert.Equal(t, na, b.Noise(3, 5, tick))
	}
}

func TestSandIdenticalFramesSpawnNothing(t *testing.T) {
	s := NewSand(0, mathx.NewRand(1))
	cur := solid(8, 8, 200)

	var out draw.List
	require.NoError(t, s.Render(input(cur, nil, 0), &out))
	assert.Zero(t, s.Pool().Len(), "no previous frame")

	require.NoError(t, s.Render(input(cur, cur.Clone(), 1), &out))
	assert.Zero(t, s.Pool().Len(), "identical frames")
}

func TestSandSpawnsAtMirroredCell(t *testing.T) {
	s := NewSand(0, mathx.NewRand(3))
	prev := solid(4, 4, 0)
	cur := solid(4, 4, 0)
	// buffer columns 2..3 hold logical columns 0..1
	cur.Fill(2, 0, 4, 2, 200, 200, 200)

	var out draw.List
	require.NoError(t, s.Render(input(cur, prev, 1), &out))

	parts := s.Pool().Snapshot()
	require.Len(t, parts, 1)
	p := parts[0]
	assert.Equal(t, [3]uint8{200, 200, 200}, [3]uint8{p.R, p.G, p.B})
	assert.InDelta(t, -10, p.X, 1e-9)
	assert.InDelta(t, -10, p.Y, 1e-9)
	assert.Less(t, p.Life, 255.0)
	assert.Equal(t, 1, count[draw.Sphere](out))
}

func TestSandPoolStaysBounded(t *testing.T) {
	s := NewSand(50, mathx.NewRand(9))
	black, white := solid(40, 40, 0), solid(40, 40, 255)
	var out draw.List
	for tick := uint64(0); tick < 10; tick++ {
		cur, prev := white, black
		if tick%2 == 1 {
			cur, prev = black, white
		}
		out.Reset()
		require.NoError(t, s.Render(input(cur, prev, tick), &out))
		require.LessOrEqual(t, s.Pool().Len(), 50)
	}
	assert.NotZero(t, s.Pool().Dropped())
}

func TestGlitchTimer(t *testing.T) {
	g := NewGlitch(mathx.NewRand(5))
	black, white := solid(160, 120, 0), solid(160, 120, 255)

	var out draw.List
	require.NoError(t, g.Render(input(white, black, 0), &out))
	require.Equal(t, Timer{Active: true, Remaining: GlitchDuration}, g.Timer())
	assert.Equal(t, 1, count[draw.Text](out), "signal lost banner")

	for i := 1; i <= GlitchDuration; i++ {
		out.Reset()
		require.NoError(t, g.Render(input(white, white, uint64(i)), &out))
		if i < GlitchDuration {
			require.True(t, g.Timer().Active, "tick %d", i)
		}
	}
	assert.False(t, g.Timer().Active)
}

func TestGlitchRejectsMalformedFaces(t *testing.T) {
	g := NewGlitch(mathx.NewRand(5))
	black, white := solid(160, 120, 0), solid(160, 120, 255)

	in := input(white, black, 0)
	in.Faces = []detector.Face{{X: 10, Y: 10}}

	var out draw.List
	err := g.Render(in, &out)
	assert.ErrorIs(t, err, ErrMalformedDetection)
	assert.Empty(t, out)
	assert.Equal(t, Timer{}, g.Timer(), "state untouched")
}

func TestGlitchFaceOverlay(t *testing.T) {
	g := NewGlitch(mathx.NewRand(5))
	cur := solid(160, 120, 10)

	in := input(cur, cur, 0)
	in.Faces = []detector.Face{{
		X: 40, Y: 30, W: 40, H: 40,
		Landmarks: map[string]detector.Point{
			detector.LeftEye:  {X: 50, Y: 45},
			detector.RightEye: {X: 70, Y: 45},
		},
	}}

	var out draw.List
	require.NoError(t, g.Render(in, &out))

	var labels []string
	for _, p := range out {
		if tx, ok := p.(draw.Text); ok {
			labels = append(labels, tx.Value)
		}
	}
	if diff := cmp.Diff([]string{"ID: UNKNOWN", "STATUS: SCANNING..."}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	// two eyes, three circles each
	assert.Equal(t, 6, count[draw.Circle](out))
}

func TestGradeRamps(t *testing.T) {
	r, g, b := Grade(0, 0, 0, 0)
	assert.InDelta(t, 10, r, 1e-6)
	assert.InDelta(t, 10, g, 1e-6)
	assert.InDelta(t, 40, b, 1e-6)

	// (x+y+2*tick)%100 = 60 selects the cyan ramp
	r, g, b = Grade(255, 60, 0, 0)
	assert.InDelta(t, 50, r, 1e-6)
	assert.InDelta(t, 255, g, 1e-6)
	assert.InDelta(t, 255, b, 1e-6)

	r, _, _ = Grade(80, 10, 0, 0)
	assert.InDelta(t, 200, r, 1e-6, "magenta ramp start")
}

func streamHeads(g *glyph.Grid) [][2]float64 {
	out := make([][2]float64, len(g.Streams))
	for i, s := range g.Streams {
		out[i] = [2]float64{s.X, s.Y}
	}
	return out
}

func TestDenseLazyGridAndFreeze(t *testing.T) {
	d := NewDense(mathx.NewRand(11))
	assert.Nil(t, d.Grid())

	cur := solid(160, 120, 100)
	var out draw.List
	require.NoError(t, d.Render(input(cur, nil, 1), &out))
	grid := d.Grid()
	require.NotNil(t, grid)
	assert.Len(t, grid.Streams, 46)

	before := streamHeads(grid)
	in := input(cur, nil, 2)
	in.Frozen = true
	require.NoError(t, d.Render(in, &out))
	assert.Same(t, grid, d.Grid())
	assert.Equal(t, before, streamHeads(grid), "frozen streams keep their position")

	require.NoError(t, d.Render(input(cur, nil, 3), &out))
	assert.NotEqual(t, before, streamHeads(grid))

	for _, s := range grid.Streams {
		for _, g := range s.Glyphs {
			require.True(t, glyph.InAlphabet(g.Value))
		}
	}
}

func TestRepulsionDisplace(t *testing.T) {
	r := NewRepulsion(mathx.NewRand(1))

	x, y, _, near := r.Displace(400, 0)
	assert.False(t, near)
	assert.Equal(t, [2]float64{400, 0}, [2]float64{x, y})

	x, y, alpha, near := r.Displace(100, 0)
	require.True(t, near)
	assert.Greater(t, x, 100.0, "pushed outwards")
	assert.Zero(t, y)
	assert.Greater(t, alpha, 2.0)
	assert.Less(t, alpha, 25.0)
}

func TestRepulsionShockwavesDecay(t *testing.T) {
	r := NewRepulsion(mathx.NewRand(1))
	r.Shockwaves().Push(Shockwave{X: 10, Y: 10, Radius: 20, Alpha: 8})

	dark := solid(16, 12, 0)
	var out draw.List
	require.NoError(t, r.Render(input(dark, dark, 0), &out))
	require.Equal(t, 1, r.Shockwaves().Len())
	sw := r.Shockwaves().At(0)
	assert.Equal(t, 28.0, sw.Radius)
	assert.Equal(t, 4.0, sw.Alpha)

	in := input(dark, dark, 1)
	in.Frozen = true
	require.NoError(t, r.Render(in, &out))
	assert.Zero(t, r.Shockwaves().Len(), "decay continues while frozen")
}

func TestRepulsionTracksCentroid(t *testing.T) {
	r := NewRepulsion(mathx.NewRand(1))
	f := solid(16, 12, 0)
	f.Fill(0, 0, 16, 12, 255, 255, 255)

	var out draw.List
	require.NoError(t, r.Render(input(f, nil, 0), &out))
	cx, cy := r.Center()
	assert.Greater(t, cx, 0.0)
	assert.Greater(t, cy, 0.0)
	assert.Equal(t, 2, count[draw.Blend](out), "additive glow pass")
}

func TestChaosGhostCap(t *testing.T) {
	c := NewChaos(mathx.NewRand(21))
	black, white := solid(160, 120, 0), solid(160, 120, 255)

	var out draw.List
	for tick := uint64(1); tick <= 40; tick++ {
		cur, prev := white, black
		if tick%2 == 0 {
			cur, prev = black, white
		}
		out.Reset()
		require.NoError(t, c.Render(input(cur, prev, tick), &out))
		require.NotEmpty(t, out)
		require.IsType(t, draw.Clear{}, out[0])
		require.LessOrEqual(t, c.Ghosts().Len(), ghostCap)
	}
	assert.NotZero(t, c.Ghosts().Evicted())
}

func TestChaosBlinkRepeatsLastList(t *testing.T) {
	c := NewChaos(mathx.NewRand(3))
	cur := solid(160, 120, 200)

	var out draw.List
	c.blink = 1
	require.NoError(t, c.Render(input(cur, nil, 1), &out))
	assert.Equal(t, draw.List{draw.Clear{Color: black}}, out, "nothing drawn yet")

	c.blink = 0
	out.Reset()
	require.NoError(t, c.Render(input(cur, nil, 2), &out))
	prev := out.Clone()
	require.Greater(t, len(prev), 1)

	c.blink = 1
	out.Reset()
	require.NoError(t, c.Render(input(cur, nil, 3), &out))
	assert.Equal(t, prev, out)
}

func orientation(g *glyph.Grid) [][2]int {
	out := make([][2]int, len(g.Streams))
	for i, s := range g.Streams {
		h := 0
		if s.Horizontal {
			h = 1
		}
		out[i] = [2]int{s.Dir, h}
	}
	return out
}

func TestChaosReshufflesOnPeriod(t *testing.T) {
	c := NewChaos(mathx.NewRand(5))
	c.blink = 0
	cur := solid(160, 120, 0)

	var out draw.List
	require.NoError(t, c.Render(input(cur, nil, 1), &out))
	grid := c.Grid()
	before := orientation(grid)

	for tick := uint64(2); tick < chaosReshufflePeriod; tick++ {
		out.Reset()
		require.NoError(t, c.Render(input(cur, nil, tick), &out))
		require.Equal(t, before, orientation(grid), "tick %d", tick)
	}

	out.Reset()
	require.NoError(t, c.Render(input(cur, nil, chaosReshufflePeriod), &out))
	after := orientation(grid)
	assert.NotEqual(t, before, after)

	for tick := uint64(chaosReshufflePeriod + 1); tick < 2*chaosReshufflePeriod; tick++ {
		out.Reset()
		require.NoError(t, c.Render(input(cur, nil, tick), &out))
		require.Equal(t, after, orientation(grid), "tick %d", tick)
	}
}

func TestChaosFrozenStreamsStayPut(t *testing.T) {
	c := NewChaos(mathx.NewRand(8))
	c.blink = 0
	cur := solid(160, 120, 0)

	var out draw.List
	var heads [][2]float64
	var dirs [][2]int
	for tick := uint64(1); tick <= 2*chaosReshufflePeriod; tick++ {
		in := input(cur, nil, tick)
		in.Frozen = true
		out.Reset()
		require.NoError(t, c.Render(in, &out))
		if heads == nil {
			heads, dirs = streamHeads(c.Grid()), orientation(c.Grid())
			continue
		}
		require.Equal(t, heads, streamHeads(c.Grid()), "tick %d", tick)
		require.Equal(t, dirs, orientation(c.Grid()), "tick %d", tick)
	}
}

func TestChaosCorruptUsesBrokenBlocks(t *testing.T) {
	c := NewChaos(mathx.NewRand(9))
	broken := 0
	for i := 0; i < 1000; i++ {
		r := c.corrupt('A')
		if r == 'A' {
			continue
		}
		require.True(t, glyph.IsBroken(r), "%q", r)
		broken++
	}
	assert.InDelta(t, 1000*chaosBrokenChance, broken, 60)

	c.blink = 0
	var out draw.List
	for tick := uint64(1); tick <= 10; tick++ {
		out.Reset()
		require.NoError(t, c.Render(input(solid(160, 120, 200), nil, tick), &out))
		for _, p := range out {
			txt, ok := p.(draw.Text)
			if !ok || txt.Value == "" {
				continue
			}
			r := []rune(txt.Value)[0]
			switch txt.Size {
			case glyph.SymbolSize:
				require.True(t, glyph.InAlphabet(r) || glyph.IsBroken(r), "%q", txt.Value)
			case 12:
				require.True(t, r == '?' || glyph.IsBroken(r), "%q", txt.Value)
			}
		}
	}
}

func TestChaosBand(t *testing.T) {
	b := band{y: 100, h: 50, offset: -12}
	for _, tc := range []struct {
		py   float64
		want float64
	}{
		{40, 0},
		{100, 0},
		{101, -12},
		{140, -12},
		{150, 0},
		{300, 0},
	} {
		assert.Equal(t, tc.want, b.shift(tc.py), "row %v", tc.py)
	}

	rng := mathx.NewRand(2)
	for i := 0; i < 200; i++ {
		b := newBand(480, rng)
		require.GreaterOrEqual(t, b.y, 96.0)
		require.Less(t, b.y, 384.0)
		require.GreaterOrEqual(t, b.h, 30.0)
		require.Less(t, b.h, 100.0)
		require.GreaterOrEqual(t, b.offset, -30.0)
		require.Less(t, b.offset, 30.0)
	}
}

func TestChaosSlicesOneBand(t *testing.T) {
	c := NewChaos(mathx.NewRand(14))
	c.blink = 0
	cur := solid(160, 120, 200)

	var out draw.List
	for tick := uint64(1); tick <= 20; tick++ {
		out.Reset()
		require.NoError(t, c.Render(input(cur, nil, tick), &out))

		// Silhouette cells sit on a 12px grid; only the displaced band leaves it.
		minY, maxY := math.Inf(1), math.Inf(-1)
		for i := 0; i+1 < len(out); i++ {
			red, ok := out[i].(draw.Text)
			if !ok || red.Color != redChannel {
				continue
			}
			cyan := out[i+1].(draw.Text)
			require.Equal(t, cyanChannel, cyan.Color)
			if math.Mod(math.Round((red.X+cyan.X)/2), 12) == 0 {
				continue
			}
			minY, maxY = math.Min(minY, red.Y), math.Max(maxY, red.Y)
		}
		if maxY >= minY {
			assert.Less(t, maxY-minY, 100.0, "tick %d", tick)
		}
	}
}

func TestDenseGrowsWithViewport(t *testing.T) {
	d := NewDense(mathx.NewRand(4))
	cur := solid(160, 120, 100)

	var out draw.List
	require.NoError(t, d.Render(input(cur, nil, 1), &out))
	grid := d.Grid()
	require.Len(t, grid.Streams, 46)

	in := input(cur, nil, 2)
	in.Width, in.Height = 800, 600
	out.Reset()
	require.NoError(t, d.Render(in, &out))
	assert.Same(t, grid, d.Grid())
	assert.Len(t, grid.Streams, 58)
	assert.Equal(t, 600.0, grid.Height)
}
