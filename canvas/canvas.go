// Package canvas holds rendered images and encodes them for output.
package canvas

import (
	"image"
	"image/color"
	"math"

	"stlshade/vmath/vec3"
)

// Canvas is a Width x Height grid of linear RGB colors, stored row-major.
// Pixel (0, 0) is the top left corner.
type Canvas struct {
	Width, Height int
	Pixels        []vec3.T
}

// New returns an all-black canvas.
func New(width, height int) *Canvas {
	return &Canvas{
		Width:  width,
		Height: height,
		Pixels: make([]vec3.T, width*height),
	}
}

func (c *Canvas) WritePixel(x, y int, color vec3.T) {
	c.Pixels[y*c.Width+x] = color
}

func (c *Canvas) PixelAt(x, y int) vec3.T {
	return c.Pixels[y*c.Width+x]
}

// Cut copies rows [rowSrc, rowLim) into a new canvas.
func (c *Canvas) Cut(rowSrc, rowLim int) *Canvas {
	dst := New(c.Width, rowLim-rowSrc)
	copy(dst.Pixels, c.Pixels[rowSrc*c.Width:rowLim*c.Width])
	return dst
}

// Paste overwrites the rows of c starting at rowSrc with the contents of src,
// which must be as wide as c.
func (c *Canvas) Paste(src *Canvas, rowSrc int) {
	copy(c.Pixels[rowSrc*c.Width:], src.Pixels)
}

// ToByte maps a color channel to 0-255, clamping out-of-range values.
func ToByte(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}

// ToImage converts c to an 8-bit image.
func (c *Canvas) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			p := c.PixelAt(x, y)
			img.SetNRGBA(x, y, color.NRGBA{
				R: ToByte(p[0]),
				G: ToByte(p[1]),
				B: ToByte(p[2]),
				A: 255,
			})
		}
	}
	return img
}
