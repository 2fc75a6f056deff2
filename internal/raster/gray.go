// Package raster holds the grayscale pixel transforms used to prepare
// passport captures for OCR.
//
// Every transform takes a Gray by value and returns a new Gray with its own
// sample buffer. Inputs are never written to.
package raster

import (
	"image"
	"image/draw"
)

// Gray is a row-major 8-bit grayscale image.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// New returns a black image of the given size.
func New(width, height int) Gray {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Gray{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// Filled returns an image with every sample set to v.
func Filled(width, height int, v uint8) Gray {
	g := New(width, height)
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// FromImage converts any image to luma samples.
func FromImage(img image.Image) Gray {
	b := img.Bounds()
	if src, ok := img.(*image.Gray); ok {
		g := New(b.Dx(), b.Dy())
		for y := 0; y < g.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(g.Pix[y*g.Width:(y+1)*g.Width], src.Pix[off:off+g.Width])
		}
		return g
	}

	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return Gray{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}

// Image returns a copy as *image.Gray for encoding.
func (g Gray) Image() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(out.Pix, g.Pix)
	return out
}

// Clone returns a deep copy.
func (g Gray) Clone() Gray {
	out := Gray{Width: g.Width, Height: g.Height, Pix: make([]uint8, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

// Empty reports whether the image has no samples.
func (g Gray) Empty() bool {
	return g.Width == 0 || g.Height == 0
}

// At returns the sample at (x, y). Coordinates must be in range.
func (g Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set writes a sample. Only used on freshly allocated outputs.
func (g Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Mean returns the average luminance, 0 for an empty image.
func (g Gray) Mean() float64 {
	if len(g.Pix) == 0 {
		return 0
	}
	var sum uint64
	for _, p := range g.Pix {
		sum += uint64(p)
	}
	return float64(sum) / float64(len(g.Pix))
}

// Histogram counts samples per level.
func (g Gray) Histogram() [256]int {
	var h [256]int
	for _, p := range g.Pix {
		h[p]++
	}
	return h
}

// Bounds returns the image rectangle anchored at the origin.
func (g Gray) Bounds() image.Rectangle { return image.Rect(0, 0, g.Width, g.Height) }

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
