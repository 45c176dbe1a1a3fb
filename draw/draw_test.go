package draw

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBAClamps(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 12, A: 100}, RGBA(300, -4, 12.7, 100))
	assert.Equal(t, uint8(0), RGBA(math.NaN(), 0, 0, 0).R)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 25, A: 7}, Scale(color.NRGBA{R: 100, G: 200, B: 255, A: 7}, 0.1))
}

func TestRampEndpoints(t *testing.T) {
	r := NewRamp(color.NRGBA{R: 10, G: 10, B: 40}, color.NRGBA{R: 30, G: 20, B: 80})

	red, green, blue := r.At(0)
	assert.InDelta(t, 10, red, 1e-6)
	assert.InDelta(t, 10, green, 1e-6)
	assert.InDelta(t, 40, blue, 1e-6)

	red, green, blue = r.At(0.5)
	assert.InDelta(t, 20, red, 1e-6)
	assert.InDelta(t, 15, green, 1e-6)
	assert.InDelta(t, 60, blue, 1e-6)

	red, _, _ = r.At(7)
	assert.InDelta(t, 30, red, 1e-6, "t is clamped")
}

func TestCSS(t *testing.T) {
	assert.Equal(t, "rgba(0,255,200,1.000)", CSS(color.NRGBA{G: 255, B: 200, A: 255}))
}

func TestEllipseMask(t *testing.T) {
	e := &Ellipse{Cx: 10, Cy: 10, Rx: 4, Ry: 2}
	assert.Equal(t, color.Alpha{255}, e.At(10, 10))
	assert.Equal(t, color.Alpha{255}, e.At(14, 10))
	assert.Equal(t, color.Alpha{0}, e.At(10, 13))
	assert.True(t, e.Bounds().Dx() == 9 && e.Bounds().Dy() == 5)

	soft := &Ellipse{Cx: 0, Cy: 0, Rx: 4, Ry: 4, Soft: true}
	center := soft.At(0, 0).(color.Alpha).A
	rim := soft.At(3, 0).(color.Alpha).A
	assert.Equal(t, uint8(255), center)
	assert.Less(t, rim, center)
}

func TestListClone(t *testing.T) {
	var l List
	l.Add(Clear{}, Rect{W: 1})
	c := l.Clone()
	l.Reset()
	l.Add(Line{})

	assert.Len(t, c, 2)
	assert.IsType(t, Rect{}, c[1])
}
