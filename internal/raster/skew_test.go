package raster

import (
	"math"
	"testing"
)

// ruled draws dark horizontal bars in the lower half of a white page, a
// stand-in for the two MRZ lines.
func ruled(width, height int) Gray {
	g := Filled(width, height, 255)
	for top := height/2 + 40; top+6 < height-40; top += 36 {
		for y := top; y < top+6; y++ {
			for x := 100; x < width-100; x++ {
				g.Set(x, y, 0)
			}
		}
	}
	return g
}

func TestDetectSkewOnRotatedPage(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
	}{
		{"clockwise", 3},
		{"counter clockwise", -3},
		{"slight", 1.5},
	}

	page := ruled(1000, 700)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rotated := Rotate(page, tt.angle)

			est := DetectSkew(rotated)
			if math.Abs(est.Angle-tt.angle) > 0.2 {
				t.Fatalf("Expected angle %.1f within 0.2, got %.2f (votes %d)", tt.angle, est.Angle, est.Votes)
			}

			corrected, applied := Deskew(rotated)
			if !applied.Applied {
				t.Fatalf("Expected rotation to be applied for %.1f degrees", tt.angle)
			}
			residual := DetectSkew(corrected)
			if math.Abs(residual.Angle) >= 0.5 {
				t.Errorf("Expected residual skew under 0.5, got %.2f", residual.Angle)
			}
		})
	}
}

func TestDeskewSkipsStraightPage(t *testing.T) {
	page := ruled(800, 600)
	out, est := Deskew(page)
	if est.Applied {
		t.Fatalf("Expected no rotation for straight page, detected %.2f", est.Angle)
	}
	if out.Width != page.Width || out.Height != page.Height {
		t.Errorf("Expected unchanged dimensions, got %dx%d", out.Width, out.Height)
	}
}

func TestDeskewSkipsBlankPage(t *testing.T) {
	page := Filled(400, 300, 255)
	_, est := Deskew(page)
	if est.Applied || est.Votes != 0 {
		t.Errorf("Expected no votes on a blank page, got %d", est.Votes)
	}
}

func TestRotateCanvas(t *testing.T) {
	src := Filled(200, 100, 0)
	out := Rotate(src, 90)
	if out.Width != 100 || out.Height != 200 {
		t.Fatalf("Expected 100x200 after quarter turn, got %dx%d", out.Width, out.Height)
	}

	tilted := Rotate(src, 10)
	if tilted.Width <= src.Width || tilted.Height <= src.Height {
		t.Fatalf("Expected enlarged canvas, got %dx%d", tilted.Width, tilted.Height)
	}
	if tilted.At(0, 0) != 255 {
		t.Errorf("Expected white background in corner, got %d", tilted.At(0, 0))
	}
	if tilted.At(tilted.Width/2, tilted.Height/2) != 0 {
		t.Errorf("Expected content preserved at the centre")
	}
}
