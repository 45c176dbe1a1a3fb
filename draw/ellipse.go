package draw

import (
	"image"
	"image/color"
)

// Ellipse is an alpha mask shaped as an ellipse. The rasterizer uses it to
// stamp additive glows, so with Soft set the mask fades out towards the rim.
type Ellipse struct {
	Cx int // center x
	Cy int // center y
	Rx int // semi-major axis x
	Ry int // semi-minor axis y

	Soft bool
}

func (e *Ellipse) ColorModel() color.Model {
	return color.AlphaModel
}

func (e *Ellipse) Bounds() image.Rectangle {
	min := image.Point{
		X: e.Cx - e.Rx,
		Y: e.Cy - e.Ry,
	}
	max := image.Point{
		X: e.Cx + e.Rx + 1,
		Y: e.Cy + e.Ry + 1,
	}
	return image.Rectangle{Min: min, Max: max}
}

func (e *Ellipse) At(x, y int) color.Color {
	if e.Rx <= 0 || e.Ry <= 0 {
		if x == e.Cx && y == e.Cy {
			return color.Alpha{255}
		}
		return color.Alpha{0}
	}
	// Equation of ellipse
	p1 := float64((x-e.Cx)*(x-e.Cx)) / float64(e.Rx*e.Rx)
	p2 := float64((y-e.Cy)*(y-e.Cy)) / float64(e.Ry*e.Ry)
	eqn := p1 + p2

	if eqn > 1 {
		return color.Alpha{0}
	}
	if e.Soft {
		return color.Alpha{uint8(255 * (1 - eqn))}
	}
	return color.Alpha{255}
}
