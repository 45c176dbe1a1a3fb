package frame

import (
	"image"
	"math"
)

// Source supplies one frame per tick. Until Ready reports true the pipeline
// renders nothing but a cleared background.
type Source interface {
	Ready() bool
	Size() (width, height int)
	// Next returns the frame for the running tick. The returned buffer may be
	// reused by the source on the following call.
	Next() (*Frame, error)
}

// Synthetic is a deterministic source painting a bright blob that orbits over
// a dark gradient. It drives the native preview and the pipeline tests.
type Synthetic struct {
	width, height int
	tick          int
	radius        float64
	frame         *Frame
}

// NewSynthetic creates a synthetic source of the given size.
func NewSynthetic(width, height int) *Synthetic {
	return &Synthetic{
		width:  width,
		height: height,
		radius: float64(min(width, height)) / 5,
		frame:  New(width, height),
	}
}

// Ready implements Source.
func (s *Synthetic) Ready() bool { return s.width > 0 && s.height > 0 }

// Size implements Source.
func (s *Synthetic) Size() (int, int) { return s.width, s.height }

// Next implements Source.
func (s *Synthetic) Next() (*Frame, error) {
	w, h := s.width, s.height
	t := float64(s.tick) * 0.05
	cx := float64(w)/2 + math.Cos(t)*float64(w)/4
	cy := float64(h)/2 + math.Sin(t*1.3)*float64(h)/4

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := s.frame.Index(x, y)
			base := uint8(y * 24 / h)

			dx, dy := float64(x)-cx, float64(y)-cy
			d := math.Sqrt(dx*dx + dy*dy)
			if d < s.radius {
				v := uint8(255 - 120*d/s.radius)
				s.frame.Pix[i], s.frame.Pix[i+1], s.frame.Pix[i+2] = v, uint8(float64(v)*0.85), uint8(float64(v)*0.7)
			} else {
				s.frame.Pix[i], s.frame.Pix[i+1], s.frame.Pix[i+2] = base, base, base+8
			}
			s.frame.Pix[i+3] = 255
		}
	}
	s.tick++
	return s.frame, nil
}

// Still is a source replaying a single image on every tick.
type Still struct {
	frame *Frame
}

// NewStill wraps an image as a frame source.
func NewStill(img image.Image) *Still {
	return &Still{frame: FromImage(img)}
}

// NewStillScaled wraps an image resampled to width x height.
func NewStillScaled(img image.Image, width, height int) *Still {
	return &Still{frame: Scaled(img, width, height)}
}

// Ready implements Source.
func (s *Still) Ready() bool { return s.frame.Valid() }

// Size implements Source.
func (s *Still) Size() (int, int) { return s.frame.Width, s.frame.Height }

// Next implements Source.
func (s *Still) Next() (*Frame, error) { return s.frame, nil }
