// Package detector finds faces and pupils in capture frames with the pigo
// cascades, and exposes the latest result to the render loop.
package detector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	pigo "github.com/esimov/pigo/core"
	"golang.org/x/sync/errgroup"

	"github.com/esimov/illusion/frame"
	"github.com/esimov/illusion/pixels"
)

// Landmark names.
const (
	LeftEye  = "left_eye"
	RightEye = "right_eye"
)

// ErrNoCascade is returned when the detector is built without a face cascade.
var ErrNoCascade = errors.New("detector: no face cascade")

// Point is a landmark position in capture pixels.
type Point struct {
	X, Y float64
}

// Face is one detected region in capture pixels.
type Face struct {
	X, Y, W, H float64
	Score      float64
	Landmarks  map[string]Point
}

// Validate checks that the face can be mapped onto a width x height capture.
func (f Face) Validate(width, height int) error {
	for _, v := range []float64{f.X, f.Y, f.W, f.H, f.Score} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non finite value %v", v)
		}
	}
	if f.W <= 0 || f.H <= 0 {
		return fmt.Errorf("empty box %vx%v", f.W, f.H)
	}
	if f.X+f.W < 0 || f.Y+f.H < 0 || f.X > float64(width) || f.Y > float64(height) {
		return fmt.Errorf("box (%v,%v %vx%v) outside %dx%d", f.X, f.Y, f.W, f.H, width, height)
	}
	for name, p := range f.Landmarks {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("landmark %q not finite", name)
		}
	}
	return nil
}

// Fit maps the face from a srcW x srcH capture onto a dstW x dstH viewport
// that shows the capture mirrored, scaled to fit and centred.
func (f Face) Fit(srcW, srcH, dstW, dstH int) Face {
	sw, sh := float64(srcW), float64(srcH)
	scale := math.Min(float64(dstW)/sw, float64(dstH)/sh)
	offX := (float64(dstW) - sw*scale) / 2
	offY := (float64(dstH) - sh*scale) / 2

	out := Face{
		X:     offX + (sw-f.X-f.W)*scale,
		Y:     offY + f.Y*scale,
		W:     f.W * scale,
		H:     f.H * scale,
		Score: f.Score,
	}
	if len(f.Landmarks) > 0 {
		out.Landmarks = make(map[string]Point, len(f.Landmarks))
		for name, p := range f.Landmarks {
			out.Landmarks[name] = Point{X: offX + (sw-p.X)*scale, Y: offY + p.Y*scale}
		}
	}
	return out
}

// Params tunes the cascade run.
type Params struct {
	MinSize     int
	MaxSize     int
	ShiftFactor float64
	ScaleFactor float64
	IoU         float64
	MinQuality  float32
	Perturbs    int
}

// DefaultParams returns parameters suited to a small capture.
func DefaultParams() Params {
	return Params{
		MinSize:     20,
		MaxSize:     1000,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		IoU:         0.2,
		MinQuality:  5,
		Perturbs:    63,
	}
}

// Detector runs the face cascade and, when present, the pupil localization
// cascade.
type Detector struct {
	face   *pigo.Pigo
	puploc *pigo.PuplocCascade
	params Params
}

// New unpacks the cascades. The pupil cascade is optional.
func New(faceCascade, puplocCascade []byte, params Params) (*Detector, error) {
	if len(faceCascade) == 0 {
		return nil, ErrNoCascade
	}
	classifier, err := pigo.NewPigo().Unpack(faceCascade)
	if err != nil {
		return nil, fmt.Errorf("detector: unpack face cascade: %w", err)
	}
	d := &Detector{face: classifier, params: params}

	if len(puplocCascade) > 0 {
		pl, err := pigo.NewPuplocCascade().UnpackCascade(puplocCascade)
		if err != nil {
			return nil, fmt.Errorf("detector: unpack puploc cascade: %w", err)
		}
		d.puploc = pl
	}
	return d, nil
}

// Load reads the cascades from disk. An empty puploc path skips pupil
// localization.
func Load(facePath, puplocPath string, params Params) (*Detector, error) {
	if facePath == "" {
		return nil, ErrNoCascade
	}
	face, err := os.ReadFile(facePath)
	if err != nil {
		return nil, fmt.Errorf("detector: read face cascade: %w", err)
	}
	var puploc []byte
	if puplocPath != "" {
		if puploc, err = os.ReadFile(puplocPath); err != nil {
			return nil, fmt.Errorf("detector: read puploc cascade: %w", err)
		}
	}
	return New(face, puploc, params)
}

// Detect returns the faces found in f. Pupils are located concurrently, one
// goroutine per face.
func (d *Detector) Detect(ctx context.Context, f *frame.Frame) ([]Face, error) {
	if !f.Valid() {
		return nil, nil
	}
	gray := pixels.RgbaToGrayscale(nil, f.Pix, f.Width, f.Height)
	img := pigo.ImageParams{
		Pixels: gray,
		Rows:   f.Height,
		Cols:   f.Width,
		Dim:    f.Width,
	}
	dets := d.face.RunCascade(pigo.CascadeParams{
		MinSize:     d.params.MinSize,
		MaxSize:     d.params.MaxSize,
		ShiftFactor: d.params.ShiftFactor,
		ScaleFactor: d.params.ScaleFactor,
		ImageParams: img,
	}, 0.0)
	dets = d.face.ClusterDetections(dets, d.params.IoU)

	kept := dets[:0]
	for _, det := range dets {
		if det.Q >= d.params.MinQuality {
			kept = append(kept, det)
		}
	}
	faces := make([]Face, len(kept))
	for i, det := range kept {
		faces[i] = FromDetection(det)
	}
	if d.puploc == nil {
		return faces, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range kept {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			faces[i].Landmarks = d.pupils(kept[i], img)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return faces, nil
}

// pupils locates both pupils inside a detected face.
func (d *Detector) pupils(det pigo.Detection, img pigo.ImageParams) map[string]Point {
	lm := make(map[string]Point, 2)
	scale := float32(det.Scale)
	for name, dx := range map[string]float32{LeftEye: -0.185, RightEye: 0.185} {
		pl := pigo.Puploc{
			Row:      det.Row - int(0.085*scale),
			Col:      det.Col + int(dx*scale),
			Scale:    scale * 0.4,
			Perturbs: d.params.Perturbs,
		}
		res := d.puploc.RunDetector(pl, img, 0.0, false)
		if res != nil && res.Row > 0 && res.Col > 0 {
			lm[name] = Point{X: float64(res.Col), Y: float64(res.Row)}
		}
	}
	return lm
}

// FromDetection converts a pigo detection, centred on (Col, Row), into a
// face box anchored at its top-left corner.
func FromDetection(det pigo.Detection) Face {
	s := float64(det.Scale)
	return Face{
		X:     float64(det.Col) - s/2,
		Y:     float64(det.Row) - s/2,
		W:     s,
		H:     s,
		Score: float64(det.Q),
	}
}
