package gfx

import (
	"bytes"
	"image"
	"image/color"
)

// Frame is an 8-bit RGB raster, stored row-major with 3 bytes per pixel. This is the
// layout ffmpeg expects for -pix_fmt rgb24.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates a black frame.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 3*width*height),
	}
}

// Shape returns (height, width, channels).
func (f *Frame) Shape() (int, int, int) {
	return f.Height, f.Width, 3
}

// At returns the color of pixel (x, y).
func (f *Frame) At(x, y int) color.RGBA {
	i := 3 * (y*f.Width + x)
	return color.RGBA{f.Pix[i], f.Pix[i+1], f.Pix[i+2], 0xff}
}

// Row returns the bytes of row y.
func (f *Frame) Row(y int) []uint8 {
	return f.Pix[3*y*f.Width : 3*(y+1)*f.Width]
}

// Equal reports whether two frames are pixel identical.
func (f *Frame) Equal(g *Frame) bool {
	return f.Width == g.Width && f.Height == g.Height && bytes.Equal(f.Pix, g.Pix)
}

// CopyRGBA fills f from img, dropping the alpha channel. img must have the same
// size as f.
func (f *Frame) CopyRGBA(img *image.RGBA) {
	b := img.Bounds()
	for y := 0; y < f.Height; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+4*b.Dx()]
		dst := f.Row(y)
		for x := 0; x < f.Width; x++ {
			dst[3*x] = src[4*x]
			dst[3*x+1] = src[4*x+1]
			dst[3*x+2] = src[4*x+2]
		}
	}
}

// RGBA converts the frame to an image, e.g. for PNG encoding.
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		row := f.Row(y)
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, color.RGBA{row[3*x], row[3*x+1], row[3*x+2], 0xff})
		}
	}
	return img
}
