// Package draw defines the draw primitives emitted by the effect renderers and
// consumed by a presentation sink.
//
// 3D primitives (Camera, Light, Box, Sphere) live in world space centred on
// the origin. 2D primitives (Rect, Circle, Line, Text) live in viewport pixel
// space with the origin at the top-left corner.
package draw

import "image/color"

// Primitive is a single draw command.
type Primitive interface {
	primitive()
}

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Clear fills the whole viewport. A translucent colour fades the previous
// content instead of replacing it, which produces trails.
type Clear struct {
	Color color.NRGBA
}

// Camera positions the viewer for the 3D primitives that follow.
type Camera struct {
	Eye    Vec3
	Center Vec3
	Up     Vec3
	// FovY is the vertical field of view in radians.
	FovY float64
}

// LightKind enumerates the supported light sources.
type LightKind int

const (
	AmbientLight LightKind = iota
	PointLight
	DirectionalLight
)

// Light adds a light source to the 3D scene.
type Light struct {
	Kind  LightKind
	Color color.NRGBA
	// Position for point lights, direction for directional lights.
	Vector Vec3
}

// Material describes how a solid responds to light.
type Material int

const (
	// Matte solids are lit by the scene lights.
	Matte Material = iota
	// Specular solids are lit with a highlight of the given shininess.
	Specular
	// Emissive solids glow with their own colour and ignore lights.
	Emissive
)

// Box is an axis aligned box centred on Center.
type Box struct {
	Center    Vec3
	Size      Vec3
	Color     color.NRGBA
	Material  Material
	Shininess float64
}

// Sphere is a sphere centred on Center.
type Sphere struct {
	Center   Vec3
	Radius   float64
	Color    color.NRGBA
	Material Material
}

// Rect is an axis aligned rectangle with its top-left corner at X, Y.
// A zero alpha Fill or Stroke disables that part.
type Rect struct {
	X, Y, W, H  float64
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
}

// Circle is a circle centred on X, Y.
type Circle struct {
	X, Y, R     float64
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float64
}

// Line is a straight segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Color          color.NRGBA
	Width          float64
}

// Align selects the anchor of a text primitive.
type Align int

const (
	// AlignTopLeft anchors the text box at its top-left corner.
	AlignTopLeft Align = iota
	// AlignCenter anchors the text box at its centre.
	AlignCenter
)

// Text draws a string of glyphs.
type Text struct {
	X, Y  float64
	Value string
	Size  float64
	Color color.NRGBA
	Align Align
}

// BlendMode selects how subsequent 2D primitives are composited.
type BlendMode int

const (
	// BlendNormal is source-over alpha compositing.
	BlendNormal BlendMode = iota
	// BlendAdd sums the colour channels, used for glows.
	BlendAdd
)

// Blend switches the compositing mode for the primitives that follow.
type Blend struct {
	Mode BlendMode
}

func (Clear) primitive()  {}
func (Camera) primitive() {}
func (Light) primitive()  {}
func (Box) primitive()    {}
func (Sphere) primitive() {}
func (Rect) primitive()   {}
func (Circle) primitive() {}
func (Line) primitive()   {}
func (Text) primitive()   {}
func (Blend) primitive()  {}

// List is the ordered output of one tick.
type List []Primitive

// Add appends primitives to the list.
func (l *List) Add(p ...Primitive) {
	*l = append(*l, p...)
}

// Reset empties the list while keeping its capacity.
func (l *List) Reset() {
	*l = (*l)[:0]
}

// Clone returns a copy of the list that does not share its backing array.
func (l List) Clone() List {
	c := make(List, len(l))
	copy(c, l)
	return c
}
