// Package raster is the software presentation sink. It rasterizes a draw
// list into an RGBA image with gg, projecting the 3D primitives through the
// list's camera.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/esimov/stackblur-go"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/esimov/illusion/draw"
)

// fontHeight is the pixel height of the built-in face.
const fontHeight = 13.0

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithBloom adds a blurred copy of every frame on top of itself. A zero
// radius disables the pass.
func WithBloom(radius uint32) Option {
	return func(r *Rasterizer) { r.bloom = radius }
}

// Rasterizer keeps a persistent canvas: a translucent Clear fades the
// previous frame instead of erasing it.
type Rasterizer struct {
	dc     *gg.Context
	canvas *image.RGBA
	out    *image.RGBA
	width  int
	height int
	bloom  uint32

	proj   Projector
	lights []draw.Light
	blend  draw.BlendMode
	solids []solid
}

type solid struct {
	depth float64
	prim  draw.Primitive
}

// New creates a rasterizer with a black width x height canvas.
func New(width, height int, opts ...Option) *Rasterizer {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	dc := gg.NewContextForRGBA(canvas)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(color.Black)
	dc.Clear()

	r := &Rasterizer{
		dc:     dc,
		canvas: canvas,
		out:    canvas,
		width:  width,
		height: height,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Size returns the canvas size.
func (r *Rasterizer) Size() (int, int) { return r.width, r.height }

// Image returns the last composited frame. It is overwritten by the next
// Draw call.
func (r *Rasterizer) Image() *image.RGBA { return r.out }

// Draw rasterizes one tick of primitives.
func (r *Rasterizer) Draw(list draw.List) error {
	r.proj = DefaultProjector(r.width, r.height)
	r.lights = r.lights[:0]
	r.blend = draw.BlendNormal

	for _, p := range list {
		switch v := p.(type) {
		case draw.Camera:
			r.proj = NewProjector(v, r.width, r.height)
		case draw.Light:
			r.lights = append(r.lights, v)
		case draw.Box:
			r.solids = append(r.solids, solid{depth: r.proj.Depth(v.Center), prim: v})
		case draw.Sphere:
			r.solids = append(r.solids, solid{depth: r.proj.Depth(v.Center), prim: v})
		default:
			r.flush()
			r.draw2D(p)
		}
	}
	r.flush()

	if r.bloom == 0 {
		r.out = r.canvas
		return nil
	}
	blurred, err := stackblur.Process(r.canvas, r.bloom)
	if err != nil {
		return fmt.Errorf("raster: bloom: %w", err)
	}
	r.out = composite(r.out, r.canvas, blurred)
	return nil
}

// flush paints the pending solids from the farthest to the nearest.
func (r *Rasterizer) flush() {
	if len(r.solids) == 0 {
		return
	}
	sort.SliceStable(r.solids, func(i, j int) bool {
		return r.solids[i].depth > r.solids[j].depth
	})
	for _, s := range r.solids {
		switch v := s.prim.(type) {
		case draw.Box:
			r.box(v)
		case draw.Sphere:
			r.sphere(v)
		}
	}
	r.solids = r.solids[:0]
}

func (r *Rasterizer) box(b draw.Box) {
	half := b.Size.Z / 2
	top := draw.Vec3{X: b.Center.X, Y: b.Center.Y, Z: b.Center.Z + half}
	base := draw.Vec3{X: b.Center.X, Y: b.Center.Y, Z: b.Center.Z - half}
	tx, ty, ts, ok := r.proj.Project(top)
	if !ok {
		return
	}
	c := r.shade(b.Color, b.Material, b.Shininess, top)

	if bx, by, bs, ok := r.proj.Project(base); ok && (math.Abs(bx-tx) > 0.5 || math.Abs(by-ty) > 0.5) {
		r.dc.SetColor(draw.RGBA(float64(c.R)*0.6, float64(c.G)*0.6, float64(c.B)*0.6, float64(c.A)))
		r.dc.SetLineWidth(math.Max(1, b.Size.X*(ts+bs)/2))
		r.dc.DrawLine(bx, by, tx, ty)
		r.dc.Stroke()
	}
	w, h := math.Max(1, b.Size.X*ts), math.Max(1, b.Size.Y*ts)
	r.dc.SetColor(c)
	r.dc.DrawRectangle(tx-w/2, ty-h/2, w, h)
	r.dc.Fill()
}

func (r *Rasterizer) sphere(s draw.Sphere) {
	x, y, scale, ok := r.proj.Project(s.Center)
	if !ok {
		return
	}
	rad := math.Max(0.5, s.Radius*scale)
	if s.Material == draw.Emissive {
		r.glow(x, y, rad, s.Color, true)
		return
	}
	r.dc.SetColor(r.shade(s.Color, s.Material, 0, s.Center))
	r.dc.DrawCircle(x, y, rad)
	r.dc.Fill()
}

func (r *Rasterizer) draw2D(p draw.Primitive) {
	dc := r.dc
	switch v := p.(type) {
	case draw.Clear:
		if v.Color.A == 255 {
			dc.SetColor(v.Color)
			dc.Clear()
			return
		}
		dc.SetColor(v.Color)
		dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
		dc.Fill()
	case draw.Blend:
		r.blend = v.Mode
	case draw.Rect:
		if v.Fill.A > 0 {
			if r.blend == draw.BlendAdd {
				rect := image.Rect(int(v.X), int(v.Y), int(math.Ceil(v.X+v.W)), int(math.Ceil(v.Y+v.H)))
				r.add(rect, image.NewUniform(color.Alpha{A: 255}), v.Fill)
			} else {
				dc.SetColor(v.Fill)
				dc.DrawRectangle(v.X, v.Y, v.W, v.H)
				dc.Fill()
			}
		}
		if v.Stroke.A > 0 && v.StrokeWidth > 0 {
			dc.SetColor(v.Stroke)
			dc.SetLineWidth(v.StrokeWidth)
			dc.DrawRectangle(v.X, v.Y, v.W, v.H)
			dc.Stroke()
		}
	case draw.Circle:
		if v.Fill.A > 0 {
			if r.blend == draw.BlendAdd {
				r.glow(v.X, v.Y, v.R, v.Fill, false)
			} else {
				dc.SetColor(v.Fill)
				dc.DrawCircle(v.X, v.Y, v.R)
				dc.Fill()
			}
		}
		if v.Stroke.A > 0 && v.StrokeWidth > 0 {
			dc.SetColor(v.Stroke)
			dc.SetLineWidth(v.StrokeWidth)
			dc.DrawCircle(v.X, v.Y, v.R)
			dc.Stroke()
		}
	case draw.Line:
		dc.SetColor(v.Color)
		dc.SetLineWidth(math.Max(1, v.Width))
		dc.DrawLine(v.X1, v.Y1, v.X2, v.Y2)
		dc.Stroke()
	case draw.Text:
		r.text(v)
	}
}

func (r *Rasterizer) text(t draw.Text) {
	ax, ay := 0.0, 1.0
	if t.Align == draw.AlignCenter {
		ax, ay = 0.5, 0.5
	}
	size := t.Size
	if size <= 0 {
		size = fontHeight
	}
	dc := r.dc
	dc.Push()
	dc.Translate(t.X, t.Y)
	dc.Scale(size/fontHeight, size/fontHeight)
	dc.SetColor(t.Color)
	dc.DrawStringAnchored(t.Value, 0, 0, ax, ay)
	dc.Pop()
}

// glow adds c to the canvas through an elliptic mask.
func (r *Rasterizer) glow(x, y, rad float64, c color.NRGBA, soft bool) {
	ri := int(math.Round(rad))
	mask := &draw.Ellipse{
		Cx:   int(math.Round(x)),
		Cy:   int(math.Round(y)),
		Rx:   ri,
		Ry:   ri,
		Soft: soft,
	}
	r.add(mask.Bounds(), mask, c)
}

// add sums c, weighted by its alpha and the mask coverage, into the canvas.
func (r *Rasterizer) add(bounds image.Rectangle, mask image.Image, c color.NRGBA) {
	b := bounds.Intersect(r.canvas.Bounds())
	a := float64(c.A) / 255
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, ma := mask.At(x, y).RGBA()
			if ma == 0 {
				continue
			}
			k := a * float64(ma) / 0xffff
			i := r.canvas.PixOffset(x, y)
			px := r.canvas.Pix[i : i+4 : i+4]
			px[0] = sat(float64(px[0]) + float64(c.R)*k)
			px[1] = sat(float64(px[1]) + float64(c.G)*k)
			px[2] = sat(float64(px[2]) + float64(c.B)*k)
			px[3] = sat(float64(px[3]) + 255*k)
		}
	}
}

// shade lights a solid colour at world position pos. Surfaces face the
// camera side of the z axis.
func (r *Rasterizer) shade(c color.NRGBA, m draw.Material, shininess float64, pos draw.Vec3) color.NRGBA {
	if m == draw.Emissive || len(r.lights) == 0 {
		return c
	}
	normal := draw.Vec3{Z: 1}
	view := normalize(r.proj.Eye().Sub(pos))

	var diffuse, specular [3]float64
	for _, l := range r.lights {
		lc := [3]float64{float64(l.Color.R) / 255, float64(l.Color.G) / 255, float64(l.Color.B) / 255}
		var dir draw.Vec3
		switch l.Kind {
		case draw.AmbientLight:
			for i := range diffuse {
				diffuse[i] += lc[i]
			}
			continue
		case draw.PointLight:
			dir = normalize(l.Vector.Sub(pos))
		case draw.DirectionalLight:
			dir = normalize(draw.Vec3{X: -l.Vector.X, Y: -l.Vector.Y, Z: -l.Vector.Z})
		}
		k := math.Max(0, dot(normal, dir))
		var s float64
		if m == draw.Specular && shininess > 0 {
			s = math.Pow(math.Max(0, dot(normal, normalize(dir.Add(view)))), shininess)
		}
		for i := range diffuse {
			diffuse[i] += lc[i] * k
			specular[i] += lc[i] * s * 255
		}
	}
	return draw.RGBA(
		float64(c.R)*diffuse[0]+specular[0],
		float64(c.G)*diffuse[1]+specular[1],
		float64(c.B)*diffuse[2]+specular[2],
		float64(c.A),
	)
}

// composite writes canvas plus a dimmed blurred copy into dst, reusing dst
// when it is a separate buffer of the right size.
func composite(dst, canvas *image.RGBA, blurred *image.NRGBA) *image.RGBA {
	if dst == canvas || dst.Bounds() != canvas.Bounds() {
		dst = image.NewRGBA(canvas.Bounds())
	}
	const gain = 0.6
	for i := 0; i+3 < len(canvas.Pix) && i+3 < len(blurred.Pix); i += 4 {
		ba := float64(blurred.Pix[i+3]) / 255 * gain
		dst.Pix[i+0] = sat(float64(canvas.Pix[i+0]) + float64(blurred.Pix[i+0])*ba)
		dst.Pix[i+1] = sat(float64(canvas.Pix[i+1]) + float64(blurred.Pix[i+1])*ba)
		dst.Pix[i+2] = sat(float64(canvas.Pix[i+2]) + float64(blurred.Pix[i+2])*ba)
		dst.Pix[i+3] = max(canvas.Pix[i+3], dst.Pix[i+0], dst.Pix[i+1], dst.Pix[i+2])
	}
	return dst
}

func sat(v float64) uint8 {
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v)
}
