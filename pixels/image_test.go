package pixels

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImgToPixRowMajor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 40, G: 50, B: 60, A: 255})

	pix := ImgToPix(img)
	require.Len(t, pix, 16)
	assert.Equal(t, []uint8{10, 20, 30, 255}, pix[4:8])
	assert.Equal(t, []uint8{40, 50, 60, 255}, pix[8:12])
}

func TestPixToImageRoundTrip(t *testing.T) {
	pix := []uint8{
		1, 2, 3, 255, 4, 5, 6, 255, 7, 8, 9, 255,
	}
	img := PixToImage(pix, 3, 1)
	assert.Equal(t, image.Rect(0, 0, 3, 1), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 4, G: 5, B: 6, A: 255}, img.NRGBAAt(1, 0))
	assert.Equal(t, pix, ImgToPix(img))
}

func TestRgbaToGrayscale(t *testing.T) {
	data := []uint8{
		255, 255, 255, 255, 0, 0, 0, 255,
		255, 0, 0, 255, 0, 255, 0, 255,
	}
	gray := RgbaToGrayscale(nil, data, 2, 2)
	assert.Equal(t, []uint8{255, 0, 54, 182}, gray)

	buf := make([]uint8, 0, 8)
	out := RgbaToGrayscale(buf, data, 2, 2)
	assert.Equal(t, gray, out)
	assert.Same(t, &buf[:1][0], &out[0], "reuses the destination buffer")
}
