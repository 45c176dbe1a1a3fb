// Package pixels converts between raw RGBA buffers, images and the grayscale
// planes consumed by the face detector.
package pixels

import (
	"image"
	"image/color"
	"math"
)

// ImgToPix converts an image to row-major RGBA pixel data.
func ImgToPix(img image.Image) []uint8 {
	bounds := img.Bounds()
	pixels := make([]uint8, 0, bounds.Dx()*bounds.Dy()*4)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pixels = append(pixels, c.R, c.G, c.B, c.A)
		}
	}
	return pixels
}

// PixToImage wraps row-major RGBA pixel data of the given size into an image.
// The pixel data is copied.
func PixToImage(pixels []uint8, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels)
	return img
}

// RgbaToGrayscale converts row-major RGBA pixel data of cols x rows pixels
// to a luminance plane. The result is written into dst when it is large
// enough, otherwise into a new slice.
func RgbaToGrayscale(dst, data []uint8, cols, rows int) []uint8 {
	n := cols * rows
	if cap(dst) < n {
		dst = make([]uint8, n)
	}
	dst = dst[:n]
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			// gray = 0.2*red + 0.7*green + 0.1*blue
			dst[i] = uint8(math.Round(
				0.2126*float64(data[4*i+0]) +
					0.7152*float64(data[4*i+1]) +
					0.0722*float64(data[4*i+2])))
		}
	}
	return dst
}
