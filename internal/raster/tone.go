package raster

import "math"

const (
	darkFraction      = 0.6
	shadowDominated   = 0.30
	shadowBoost       = 2.5
	defaultDarkBoost  = 1.8
	brightCompression = 0.9
)

// Contrast stretches samples around the mean luminance by factor.
func Contrast(src Gray, factor float64) Gray {
	out := New(src.Width, src.Height)
	mean := src.Mean()

	var lut [256]uint8
	for v := range lut {
		lut[v] = clamp8(mean + factor*(float64(v)-mean))
	}
	for i, p := range src.Pix {
		out.Pix[i] = lut[p]
	}
	return out
}

// Threshold maps samples above t to 255 and everything else to 0.
func Threshold(src Gray, t uint8) Gray {
	out := New(src.Width, src.Height)
	for i, p := range src.Pix {
		if p > t {
			out.Pix[i] = 255
		}
	}
	return out
}

// Otsu returns the global threshold that maximises between-class variance.
func Otsu(src Gray) uint8 {
	if len(src.Pix) == 0 {
		return 127
	}
	hist := src.Histogram()
	total := float64(len(src.Pix))

	var sum float64
	for v, n := range hist {
		sum += float64(v * n)
	}

	var (
		sumB, wB float64
		best     float64
		level    int
	)
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = t
		}
	}
	return uint8(level)
}

// GlobalThreshold binarises with the Otsu level.
func GlobalThreshold(src Gray) Gray {
	return Threshold(src, Otsu(src))
}

// DarkThreshold is the level below which a sample counts as shadowed.
func DarkThreshold(src Gray) float64 {
	return darkFraction * src.Mean()
}

// ShadowLevel is the highest integer sample strictly below DarkThreshold.
// Thresholding an EnhanceDark output at this level separates the two classes.
func ShadowLevel(src Gray) uint8 {
	level := math.Ceil(DarkThreshold(src)) - 1
	if level < 0 {
		return 0
	}
	return uint8(level)
}

// EnhanceDark lifts shadowed regions while keeping them below the dark
// threshold, and compresses everything else towards it.
//
// Samples under the threshold are multiplied by 1 + (boost-1)*depth where
// depth is the relative distance below the threshold and boost is 2.5 when
// more than 30% of the image is dark, 1.8 otherwise. The result is capped at
// ShadowLevel so shadows never cross into the bright class. Samples at or
// above the threshold move to threshold + 0.9*(p-threshold).
func EnhanceDark(src Gray) Gray {
	out := New(src.Width, src.Height)
	if len(src.Pix) == 0 {
		return out
	}

	dark := DarkThreshold(src)
	ceiling := float64(ShadowLevel(src))

	var darkCount int
	for _, p := range src.Pix {
		if float64(p) < dark {
			darkCount++
		}
	}
	boost := defaultDarkBoost
	if float64(darkCount)/float64(len(src.Pix)) > shadowDominated {
		boost = shadowBoost
	}

	var lut [256]uint8
	for v := range lut {
		p := float64(v)
		if p < dark {
			depth := (dark - p) / dark
			lifted := p * (1 + (boost-1)*depth)
			if lifted > ceiling {
				lifted = ceiling
			}
			lut[v] = clamp8(lifted)
			continue
		}
		lut[v] = clamp8(dark + brightCompression*(p-dark))
	}
	for i, p := range src.Pix {
		out.Pix[i] = lut[p]
	}
	return out
}
