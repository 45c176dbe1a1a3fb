// Package motion measures the pixel change between two consecutive frames.
//
// Every sampler reads the buffers through frame.MirrorIndex so that spatial
// motion data lines up with the mirrored geometry emitted by the renderers.
package motion

import (
	"github.com/esimov/illusion/frame"
	"github.com/esimov/illusion/mathx"
)

const (
	// AggregateStride is the pixel stride of the aggregate sum (every 40th byte).
	AggregateStride = 10
	// CellStep is the pixel stride of the per-cell difference field.
	CellStep = 2
)

// Sum adds the red channel of every stride-th pixel of the frame.
func Sum(f *frame.Frame, stride int) int64 {
	if !f.Valid() || stride <= 0 {
		return 0
	}
	var sum int64
	n := f.Width * f.Height
	for p := 0; p < n; p += stride {
		x, y := p%f.Width, p/f.Width
		sum += int64(f.Pix[f.MirrorIndex(x, y)])
	}
	return sum
}

// AggregateDelta is the absolute difference between the strided sums of the
// current and the previous frame. A missing or differently sized previous
// frame reports no motion.
func AggregateDelta(cur, prev *frame.Frame) int64 {
	if !cur.Valid() || !prev.Valid() || !cur.SameSize(prev) {
		return 0
	}
	return mathx.Abs(Sum(cur, AggregateStride) - Sum(prev, AggregateStride))
}

// CellDiff returns the summed absolute R, G and B difference of the pixel at
// logical column x and row y.
func CellDiff(cur, prev *frame.Frame, x, y int) int {
	idx := cur.MirrorIndex(x, y)
	return mathx.Abs(int(cur.Pix[idx])-int(prev.Pix[idx])) +
		mathx.Abs(int(cur.Pix[idx+1])-int(prev.Pix[idx+1])) +
		mathx.Abs(int(cur.Pix[idx+2])-int(prev.Pix[idx+2]))
}

// BrightnessDelta returns the absolute brightness change of the pixel at
// logical column x and row y.
func BrightnessDelta(cur, prev *frame.Frame, x, y int) float64 {
	idx := cur.MirrorIndex(x, y)
	return mathx.Abs(cur.Brightness(idx) - prev.Brightness(idx))
}

// Field is a per-cell difference map sampled every Step pixels, indexed by
// logical (mirrored) coordinates.
type Field struct {
	Step int
	Cols int
	Rows int
	Diff []int
}

// Cells computes the difference field between cur and prev. The field is
// empty when prev is absent or its dimensions differ.
func Cells(cur, prev *frame.Frame, step int) Field {
	if step <= 0 {
		step = CellStep
	}
	if !cur.Valid() || !prev.Valid() || !cur.SameSize(prev) {
		return Field{Step: step}
	}
	cols := (cur.Width + step - 1) / step
	rows := (cur.Height + step - 1) / step
	fld := Field{Step: step, Cols: cols, Rows: rows, Diff: make([]int, cols*rows)}

	for y, row := 0, 0; y < cur.Height; y, row = y+step, row+1 {
		for x, col := 0, 0; x < cur.Width; x, col = x+step, col+1 {
			fld.Diff[row*cols+col] = CellDiff(cur, prev, x, y)
		}
	}
	return fld
}

// Empty reports whether the field carries no samples.
func (f Field) Empty() bool {
	return len(f.Diff) == 0
}

// At returns the difference sampled at logical pixel (x, y). Coordinates are
// truncated to the sampling grid; out of range coordinates report zero.
func (f Field) At(x, y int) int {
	if f.Empty() || x < 0 || y < 0 {
		return 0
	}
	col, row := x/f.Step, y/f.Step
	if col >= f.Cols || row >= f.Rows {
		return 0
	}
	return f.Diff[row*f.Cols+col]
}

// Max returns the largest sample of the field.
func (f Field) Max() int {
	m := 0
	for _, d := range f.Diff {
		if d > m {
			m = d
		}
	}
	return m
}
