package raster

import "math"

const (
	maxSkewDegrees  = 10.0
	skewStepDegrees = 0.1
	minSkewDegrees  = 0.5
	// Sobel response (sum of weights 4 x level step) that counts as an edge.
	edgeStrength = 256
	background   = 255
)

// SkewEstimate is the outcome of DetectSkew and Deskew.
type SkewEstimate struct {
	// Angle in degrees. Positive means text lines fall to the right
	// (y grows with x in image coordinates).
	Angle float64
	// Votes is the peak accumulator count.
	Votes int
	// Applied is set by Deskew when a rotation was performed.
	Applied bool
}

// DetectSkew finds the dominant near-horizontal line angle in the bottom
// half of the image, where the MRZ sits, in [-10, 10] degrees at 0.1 degree
// resolution.
func DetectSkew(src Gray) SkewEstimate {
	if src.Width < 3 || src.Height < 3 {
		return SkewEstimate{}
	}

	steps := int(math.Round(2*maxSkewDegrees/skewStepDegrees)) + 1
	sin := make([]float64, steps)
	cos := make([]float64, steps)
	for i := range steps {
		rad := angleAt(i) * math.Pi / 180
		sin[i], cos[i] = math.Sin(rad), math.Cos(rad)
	}

	rhoOffset := int(math.Ceil(float64(src.Width)*math.Sin(maxSkewDegrees*math.Pi/180))) + 1
	bins := src.Height + rhoOffset + 2
	acc := make([]int32, steps*bins)

	w := src.Width
	p := src.Pix
	sobelY := func(x, y int) int {
		up, down := (y-1)*w, (y+1)*w
		return abs(int(p[down+x-1]) + 2*int(p[down+x]) + int(p[down+x+1]) -
			int(p[up+x-1]) - 2*int(p[up+x]) - int(p[up+x+1]))
	}
	sobelX := func(x, y int) int {
		up, row, down := (y-1)*w, y*w, (y+1)*w
		return abs(int(p[up+x+1]) + 2*int(p[row+x+1]) + int(p[down+x+1]) -
			int(p[up+x-1]) - 2*int(p[row+x-1]) - int(p[down+x-1]))
	}

	for y := max(src.Height/2, 2); y < src.Height-2; y++ {
		for x := 1; x < w-1; x++ {
			gy := sobelY(x, y)
			if gy < edgeStrength || gy <= sobelX(x, y) {
				continue
			}
			// thin to one pixel per edge crossing
			if gy < sobelY(x, y-1) || gy <= sobelY(x, y+1) {
				continue
			}
			fx, fy := float64(x), float64(y)
			for i := range steps {
				rho := int(math.Round(fy*cos[i]-fx*sin[i])) + rhoOffset
				if rho < 0 || rho >= bins {
					continue
				}
				acc[i*bins+rho]++
			}
		}
	}

	// Peaks are read over two adjacent offset bins so an edge that rounds
	// across a bin boundary is not split.
	var best SkewEstimate
	for i := range steps {
		angle := angleAt(i)
		cells := acc[i*bins : (i+1)*bins]
		for r := 0; r+1 < len(cells); r++ {
			votes := int(cells[r] + cells[r+1])
			if votes > best.Votes || (votes == best.Votes && votes > 0 && math.Abs(angle) < math.Abs(best.Angle)) {
				best = SkewEstimate{Angle: angle, Votes: votes}
			}
		}
	}
	return best
}

// Deskew rotates src by the negative detected angle. Estimates with fewer
// than width/10 votes or under half a degree are treated as noise and the
// input is returned as a copy.
func Deskew(src Gray) (Gray, SkewEstimate) {
	est := DetectSkew(src)
	if est.Votes < src.Width/10 || math.Abs(est.Angle) < minSkewDegrees {
		return src.Clone(), est
	}
	est.Applied = true
	return Rotate(src, -est.Angle), est
}

// Rotate turns the image by degrees with bilinear sampling onto a canvas
// large enough for the rotated bounds. Uncovered area is white.
func Rotate(src Gray, degrees float64) Gray {
	if src.Empty() {
		return New(0, 0)
	}
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	w, h := float64(src.Width), float64(src.Height)
	dw := int(math.Ceil(math.Abs(w*cos) + math.Abs(h*sin) - 1e-9))
	dh := int(math.Ceil(math.Abs(w*sin) + math.Abs(h*cos) - 1e-9))
	out := New(max(dw, 1), max(dh, 1))

	scx, scy := (w-1)/2, (h-1)/2
	dcx, dcy := float64(out.Width-1)/2, float64(out.Height-1)/2

	for y := 0; y < out.Height; y++ {
		ry := float64(y) - dcy
		for x := 0; x < out.Width; x++ {
			rx := float64(x) - dcx
			sx := rx*cos + ry*sin + scx
			sy := -rx*sin + ry*cos + scy
			out.Pix[y*out.Width+x] = sampleBilinear(src, sx, sy)
		}
	}
	return out
}

func sampleBilinear(src Gray, fx, fy float64) uint8 {
	if fx <= -1 || fy <= -1 || fx >= float64(src.Width) || fy >= float64(src.Height) {
		return background
	}
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)

	top := lerp(pixelOr(src, x0, y0), pixelOr(src, x0+1, y0), tx)
	bottom := lerp(pixelOr(src, x0, y0+1), pixelOr(src, x0+1, y0+1), tx)
	return clamp8(lerp(top, bottom, ty))
}

func pixelOr(src Gray, x, y int) float64 {
	if x < 0 || y < 0 || x >= src.Width || y >= src.Height {
		return background
	}
	return float64(src.At(x, y))
}

func angleAt(i int) float64 {
	return float64(i)*skewStepDegrees - maxSkewDegrees
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
