// Package frame describes the pixel buffers produced by a video source and the
// two-generation history consumed by the motion detector and the renderers.
package frame

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Frame is a row-major RGBA pixel buffer of Width*Height*4 bytes.
// A Frame handed to a consumer must be treated as read-only.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a zeroed frame of the given size.
func New(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// Valid reports whether the frame has a non-zero size and a buffer matching it.
func (f *Frame) Valid() bool {
	return f != nil && f.Width > 0 && f.Height > 0 && len(f.Pix) == f.Width*f.Height*4
}

// SameSize reports whether both frames have identical dimensions.
func (f *Frame) SameSize(o *Frame) bool {
	return f != nil && o != nil && f.Width == o.Width && f.Height == o.Height
}

// Index returns the byte offset of the pixel at buffer column x and row y.
func (f *Frame) Index(x, y int) int {
	return (y*f.Width + x) * 4
}

// MirrorIndex returns the byte offset of logical column x in row y. The
// effect mirrors the viewer, so column x is read from buffer column W-1-x.
func (f *Frame) MirrorIndex(x, y int) int {
	return (y*f.Width + (f.Width - 1 - x)) * 4
}

// RGB returns the colour channels stored at byte offset idx.
func (f *Frame) RGB(idx int) (r, g, b uint8) {
	return f.Pix[idx], f.Pix[idx+1], f.Pix[idx+2]
}

// Brightness returns the mean of the three colour channels at byte offset idx.
func (f *Frame) Brightness(idx int) float64 {
	return float64(int(f.Pix[idx])+int(f.Pix[idx+1])+int(f.Pix[idx+2])) / 3
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{Width: f.Width, Height: f.Height, Pix: make([]uint8, len(f.Pix))}
	copy(c.Pix, f.Pix)
	return c
}

// Fill paints the rectangle [x0,x1)x[y0,y1), given in buffer coordinates,
// with a solid colour. Coordinates are clipped to the frame.
func (f *Frame) Fill(x0, y0, x1, y1 int, r, g, b uint8) {
	rect := image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, f.Width, f.Height))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			i := f.Index(x, y)
			f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = r, g, b, 255
		}
	}
}

// FromImage converts any image into a frame, scaled 1:1 from its bounds.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	return &Frame{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}

// Scaled converts img into a width x height frame with bilinear resampling.
func Scaled(img image.Image, width, height int) *Frame {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	return &Frame{Width: width, Height: height, Pix: dst.Pix}
}
