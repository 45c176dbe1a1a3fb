package glyph

import (
	"math"

	"github.com/esimov/illusion/mathx"
)

// Glyph is one symbol cell of a stream.
type Glyph struct {
	// Index is the position along the stream, 0 being the head.
	Index          int
	Value          rune
	SwitchInterval int
}

// Cycle re-rolls the symbol when the tick falls on the glyph's cadence.
func (g *Glyph) Cycle(tick uint64, rng *mathx.Rand) {
	if g.SwitchInterval > 0 && tick%uint64(g.SwitchInterval) == 0 {
		g.Value = RandomSymbol(rng)
	}
}

// Stream is a chain of glyphs trailing behind a translating head.
type Stream struct {
	X, Y       float64
	Speed      float64
	Dir        int
	Horizontal bool
	Glyphs     []Glyph
}

// NewStream creates a downward stream at column x with a random start above
// the viewport, speed and length.
func NewStream(x float64, rng *mathx.Rand) *Stream {
	s := &Stream{
		X:     x,
		Y:     rng.Range(-500, 0),
		Speed: rng.Range(3, 8),
		Dir:   1,
	}
	n := 10 + rng.Intn(20)
	s.Glyphs = make([]Glyph, n)
	for i := range s.Glyphs {
		s.Glyphs[i] = Glyph{
			Index:          i,
			Value:          RandomSymbol(rng),
			SwitchInterval: 5 + rng.Intn(15),
		}
	}
	return s
}

// Len returns the number of glyphs of the stream.
func (s *Stream) Len() int { return len(s.Glyphs) }

// span is the length of the chain in pixels.
func (s *Stream) span() float64 {
	return float64(len(s.Glyphs) * SymbolSize)
}

// Advance moves the head by speed*direction along its axis and wraps the
// stream to the opposite edge once the whole chain has left the viewport.
func (s *Stream) Advance(width, height float64, rng *mathx.Rand) {
	step := s.Speed * float64(s.Dir)
	if s.Horizontal {
		s.X += step
		if s.Dir > 0 && s.X-s.span() > width {
			s.X = -rng.Range(0, 100)
		} else if s.Dir < 0 && s.X+s.span() < 0 {
			s.X = width + rng.Range(0, 100)
		}
		return
	}
	s.Y += step
	if s.Dir > 0 && s.Y-s.span() > height {
		s.Y = rng.Range(-200, 0)
	} else if s.Dir < 0 && s.Y+s.span() < 0 {
		s.Y = height + rng.Range(0, 200)
	}
}

// Update runs one tick: translation unless frozen, then symbol cycling.
func (s *Stream) Update(tick uint64, frozen bool, width, height float64, rng *mathx.Rand) {
	if !frozen {
		s.Advance(width, height, rng)
	}
	for i := range s.Glyphs {
		s.Glyphs[i].Cycle(tick, rng)
	}
}

// Pos returns the viewport position of glyph i. The chain trails behind the
// head against the direction of travel.
func (s *Stream) Pos(i int) (x, y float64) {
	off := float64(i*SymbolSize) * float64(s.Dir)
	if s.Horizontal {
		return s.X - off, s.Y
	}
	return s.X, s.Y - off
}

// Grid is the set of streams of one glyph mode, one per symbol column.
type Grid struct {
	Width   float64
	Height  float64
	Streams []*Stream
}

// NewGrid creates one stream per SymbolSize column of a width x height viewport.
func NewGrid(width, height int, rng *mathx.Rand) *Grid {
	cols := int(math.Ceil(float64(width) / SymbolSize))
	g := &Grid{
		Width:   float64(width),
		Height:  float64(height),
		Streams: make([]*Stream, cols),
	}
	for i := range g.Streams {
		g.Streams[i] = NewStream(float64(i*SymbolSize), rng)
	}
	return g
}

// Resize adapts the grid to a new viewport. Streams are added for columns
// the grid does not cover yet; existing streams keep their state.
func (g *Grid) Resize(width, height int, rng *mathx.Rand) {
	g.Width, g.Height = float64(width), float64(height)
	cols := int(math.Ceil(float64(width) / SymbolSize))
	for i := len(g.Streams); i < cols; i++ {
		g.Streams = append(g.Streams, NewStream(float64(i*SymbolSize), rng))
	}
}

// Update advances every stream by one tick.
func (g *Grid) Update(tick uint64, frozen bool, rng *mathx.Rand) {
	for _, s := range g.Streams {
		s.Update(tick, frozen, g.Width, g.Height, rng)
	}
}

// Scramble gives a fraction of the streams a random direction, orientation
// and vertical position.
func (g *Grid) Scramble(fraction float64, rng *mathx.Rand) {
	for _, s := range g.Streams {
		if rng.Float64() > 1-fraction {
			s.Dir = rng.Sign()
			s.Horizontal = rng.Float64() > 0.5
			s.Y = rng.Range(-100, g.Height)
		}
	}
}
