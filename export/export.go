// Package export writes snapshots of the composited frame.
package export

import (
	"fmt"
	"image"
	stddraw "image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/esimov/triangle/v2"
	"github.com/google/uuid"

	"github.com/esimov/illusion/detector"
	"github.com/esimov/illusion/draw"
)

// Prefix starts every snapshot file name.
const Prefix = "illusion_snapshot"

// Name returns a fresh snapshot file name.
func Name() string {
	return fmt.Sprintf("%s-%s.png", Prefix, uuid.NewString())
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("export: encode png: %w", err)
	}
	return nil
}

// Snapshot writes img into dir under a fresh name and returns the path.
func Snapshot(dir string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, Name())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: create snapshot: %w", err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("export: close snapshot: %w", err)
	}
	return path, nil
}

// Polygonizer renders low-poly versions of a snapshot.
type Polygonizer struct {
	mu        sync.Mutex
	processor *triangle.Processor
	triangle  *triangle.Image
}

// NewPolygonizer creates a polygonizer producing at most maxPoints vertices.
func NewPolygonizer(maxPoints int) *Polygonizer {
	if maxPoints <= 0 {
		maxPoints = 450
	}
	p := &triangle.Processor{
		BlurRadius:      2,
		Noise:           0,
		BlurFactor:      2,
		EdgeFactor:      4,
		PointRate:       0.075,
		MaxPoints:       maxPoints,
		PointsThreshold: 10,
		Wireframe:       triangle.WithoutWireframe,
		StrokeWidth:     0,
		IsStrokeSolid:   false,
		Grayscale:       false,
		BgColor:         "#ffffff00",
	}
	return &Polygonizer{
		processor: p,
		triangle:  &triangle.Image{Processor: *p},
	}
}

// Polygonize returns the low-poly rendition of img.
func (p *Polygonizer) Polygonize(img image.Image) (*image.NRGBA, error) {
	src := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	stddraw.Draw(src, src.Bounds(), img, img.Bounds().Min, stddraw.Src)

	p.mu.Lock()
	triangled, _, _, err := p.triangle.Draw(src, *p.processor, func() {})
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("export: triangulate: %w", err)
	}

	out := image.NewNRGBA(src.Bounds())
	stddraw.Draw(out, out.Bounds(), triangled, triangled.Bounds().Min, stddraw.Src)
	return out, nil
}

// PolygonizeFaces low-polys the face regions of img only. Faces are given in
// img pixels; an empty list polygonizes the whole image.
func (p *Polygonizer) PolygonizeFaces(img image.Image, faces []detector.Face) (*image.NRGBA, error) {
	poly, err := p.Polygonize(img)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return poly, nil
	}

	out := image.NewNRGBA(poly.Bounds())
	stddraw.Draw(out, out.Bounds(), img, img.Bounds().Min, stddraw.Src)

	unionMask := image.NewNRGBA(poly.Bounds())
	for _, f := range faces {
		ellipse := &draw.Ellipse{
			Cx: int(f.X + f.W/2),
			Cy: int(f.Y + f.H/2),
			Rx: int(f.W / 2),
			Ry: int(f.H / 2),
		}
		stddraw.Draw(unionMask, ellipse.Bounds(), ellipse, ellipse.Bounds().Min, stddraw.Over)
	}
	stddraw.DrawMask(out, out.Bounds(), poly, image.Point{}, unionMask, image.Point{}, stddraw.Over)
	return out, nil
}
