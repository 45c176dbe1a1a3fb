package raster

import (
	"math"

	"github.com/esimov/illusion/draw"
)

const near = 1.0

// Projector maps world space points to viewport pixels through a pinhole
// camera. World y grows downwards on screen.
type Projector struct {
	eye            draw.Vec3
	forward, right draw.Vec3
	up             draw.Vec3
	focal          float64
	halfW, halfH   float64
}

// NewProjector builds the projection of cam onto a width x height viewport.
func NewProjector(cam draw.Camera, width, height int) Projector {
	fov := cam.FovY
	if fov <= 0 {
		fov = math.Pi / 3
	}
	up := cam.Up
	if up == (draw.Vec3{}) {
		up = draw.Vec3{Y: 1}
	}
	forward := normalize(cam.Center.Sub(cam.Eye))
	right := normalize(cross(forward, up))
	return Projector{
		eye:     cam.Eye,
		forward: forward,
		right:   right,
		up:      cross(right, forward),
		focal:   (float64(height) / 2) / math.Tan(fov/2),
		halfW:   float64(width) / 2,
		halfH:   float64(height) / 2,
	}
}

// DefaultProjector looks at the origin from the distance where the viewport
// height spans a 60 degree field of view.
func DefaultProjector(width, height int) Projector {
	z := (float64(height) / 2) / math.Tan(math.Pi/6)
	return NewProjector(draw.Camera{Eye: draw.Vec3{Z: z}, Up: draw.Vec3{Y: 1}}, width, height)
}

// Project returns the viewport position of v and the number of pixels one
// world unit spans at its depth. ok is false for points behind the camera.
func (p Projector) Project(v draw.Vec3) (x, y, scale float64, ok bool) {
	d := v.Sub(p.eye)
	z := dot(d, p.forward)
	if z < near {
		return 0, 0, 0, false
	}
	scale = p.focal / z
	x = p.halfW + dot(d, p.right)*scale
	y = p.halfH + dot(d, p.up)*scale
	return x, y, scale, true
}

// Depth returns the distance of v along the view axis.
func (p Projector) Depth(v draw.Vec3) float64 {
	return dot(v.Sub(p.eye), p.forward)
}

// Eye returns the camera position.
func (p Projector) Eye() draw.Vec3 { return p.eye }

func dot(a, b draw.Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func cross(a, b draw.Vec3) draw.Vec3 {
	return draw.Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func normalize(v draw.Vec3) draw.Vec3 {
	l := math.Sqrt(dot(v, v))
	if l == 0 {
		return v
	}
	return draw.Vec3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
}
