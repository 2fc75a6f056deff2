package raster

import "math"

// MinBilinearSize is the smallest dimension bilinear resampling handles.
// Smaller images are replicated 2x with nearest neighbour.
const MinBilinearSize = 10

// UpscaleFactor picks a scale from the long edge of the source.
func UpscaleFactor(width, height int) float64 {
	long := max(width, height)
	switch {
	case long < 800:
		return 2.5
	case long < 1200:
		return 2.0
	default:
		return 1.5
	}
}

// NeedsUpscale reports whether either dimension is below minSide.
func NeedsUpscale(src Gray, minSide int) bool {
	return src.Width < minSide || src.Height < minSide
}

// Resize scales by factor with bilinear interpolation. Images with either
// dimension under MinBilinearSize are replicated into exact 2x2 blocks and
// factor is ignored.
func Resize(src Gray, factor float64) Gray {
	if src.Empty() {
		return New(0, 0)
	}
	if src.Width < MinBilinearSize || src.Height < MinBilinearSize {
		return replicate2x(src)
	}
	if factor <= 0 {
		factor = 1
	}

	dw := int(math.Round(float64(src.Width) * factor))
	dh := int(math.Round(float64(src.Height) * factor))
	dw, dh = max(dw, 1), max(dh, 1)
	out := New(dw, dh)

	sx := float64(src.Width) / float64(dw)
	sy := float64(src.Height) / float64(dh)
	maxX := float64(src.Width - 1)
	maxY := float64(src.Height - 1)

	for y := 0; y < dh; y++ {
		fy := clampf((float64(y)+0.5)*sy-0.5, 0, maxY)
		y0 := int(fy)
		y1 := min(y0+1, src.Height-1)
		ty := fy - float64(y0)
		for x := 0; x < dw; x++ {
			fx := clampf((float64(x)+0.5)*sx-0.5, 0, maxX)
			x0 := int(fx)
			x1 := min(x0+1, src.Width-1)
			tx := fx - float64(x0)

			top := lerp(float64(src.At(x0, y0)), float64(src.At(x1, y0)), tx)
			bottom := lerp(float64(src.At(x0, y1)), float64(src.At(x1, y1)), tx)
			out.Pix[y*dw+x] = clamp8(lerp(top, bottom, ty))
		}
	}
	return out
}

func replicate2x(src Gray) Gray {
	out := New(src.Width*2, src.Height*2)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			out.Pix[y*out.Width+x] = src.At(x/2, y/2)
		}
	}
	return out
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
