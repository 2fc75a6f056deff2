package raster

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

func noise(width, height int, seed int64) Gray {
	r := rand.New(rand.NewSource(seed))
	g := New(width, height)
	for i := range g.Pix {
		g.Pix[i] = uint8(r.Intn(256))
	}
	return g
}

func TestThresholdIsBinary(t *testing.T) {
	tests := []struct {
		name  string
		level uint8
	}{
		{"low", 0},
		{"mid", 128},
		{"high", 254},
		{"max", 255},
	}

	src := noise(64, 48, 1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Threshold(src, tt.level)
			for i, p := range out.Pix {
				if p != 0 && p != 255 {
					t.Fatalf("Expected binary sample at %d, got %d", i, p)
				}
				want := uint8(0)
				if src.Pix[i] > tt.level {
					want = 255
				}
				if p != want {
					t.Fatalf("Expected %d at %d (src %d), got %d", want, i, src.Pix[i], p)
				}
			}
		})
	}
}

func TestThresholdDoesNotMutateInput(t *testing.T) {
	src := noise(16, 16, 2)
	before := src.Clone()
	_ = Threshold(src, 100)
	_ = Contrast(src, 2)
	_ = Median(src)
	_ = EnhanceDark(src)
	for i := range src.Pix {
		if src.Pix[i] != before.Pix[i] {
			t.Fatalf("Input mutated at %d", i)
		}
	}
}

func TestContrast(t *testing.T) {
	src := Gray{Width: 4, Height: 1, Pix: []uint8{50, 100, 150, 200}}
	// mean 125
	out := Contrast(src, 2.0)
	want := []uint8{0, 75, 175, 255}
	for i := range want {
		if out.Pix[i] != want[i] {
			t.Errorf("Expected %d at %d, got %d", want[i], i, out.Pix[i])
		}
	}

	same := Contrast(src, 1.0)
	for i := range src.Pix {
		if same.Pix[i] != src.Pix[i] {
			t.Errorf("Factor 1 changed sample %d: %d -> %d", i, src.Pix[i], same.Pix[i])
		}
	}
}

func TestMedianPreservesBorder(t *testing.T) {
	src := noise(37, 23, 3)
	out := Median(src)

	for x := 0; x < src.Width; x++ {
		if out.At(x, 0) != src.At(x, 0) || out.At(x, src.Height-1) != src.At(x, src.Height-1) {
			t.Fatalf("Border row changed at x=%d", x)
		}
	}
	for y := 0; y < src.Height; y++ {
		if out.At(0, y) != src.At(0, y) || out.At(src.Width-1, y) != src.At(src.Width-1, y) {
			t.Fatalf("Border column changed at y=%d", y)
		}
	}
}

func TestMedianRemovesImpulse(t *testing.T) {
	src := Filled(5, 5, 200)
	src.Set(2, 2, 0)
	out := Median(src)
	if out.At(2, 2) != 200 {
		t.Errorf("Expected impulse removed, got %d", out.At(2, 2))
	}
}

func TestMedianTinyImageIsCopy(t *testing.T) {
	src := noise(2, 7, 4)
	out := Median(src)
	for i := range src.Pix {
		if out.Pix[i] != src.Pix[i] {
			t.Fatalf("Expected copy for image narrower than the window")
		}
	}
}

func TestEnhanceDark(t *testing.T) {
	// mean = (20*60 + 200*40) / 100 = 92, dark threshold 55.2
	src := New(10, 10)
	for i := range src.Pix {
		if i < 60 {
			src.Pix[i] = 20
		} else {
			src.Pix[i] = 200
		}
	}
	out := EnhanceDark(src)
	level := ShadowLevel(src)
	if level != 55 {
		t.Fatalf("Expected shadow level 55, got %d", level)
	}

	// 60% dark -> boost 2.5; depth (55.2-20)/55.2
	depth := (55.2 - 20) / 55.2
	want := uint8(math.Round(20 * (1 + 1.5*depth)))
	if out.Pix[0] != want {
		t.Errorf("Expected dark sample %d, got %d", want, out.Pix[0])
	}
	if out.Pix[0] <= 20 || out.Pix[0] > level {
		t.Errorf("Expected dark sample lifted but kept at or below %d, got %d", level, out.Pix[0])
	}

	wantBright := uint8(math.Round(55.2 + 0.9*(200-55.2)))
	if out.Pix[99] != wantBright {
		t.Errorf("Expected bright sample %d, got %d", wantBright, out.Pix[99])
	}

	bin := Threshold(out, level)
	if bin.Pix[0] != 0 || bin.Pix[99] != 255 {
		t.Errorf("Expected classes separated at shadow level, got %d/%d", bin.Pix[0], bin.Pix[99])
	}
}

func TestEnhanceDarkBoostDependsOnShadowShare(t *testing.T) {
	build := func(darkCount int) Gray {
		g := New(100, 1)
		for i := range g.Pix {
			if i < darkCount {
				g.Pix[i] = 10
			} else {
				g.Pix[i] = 220
			}
		}
		return g
	}
	light := build(20)
	heavy := build(40)

	// compare the lift ratio of the same sample value under each regime
	liftLight := float64(EnhanceDark(light).Pix[0]) / 10
	liftHeavy := float64(EnhanceDark(heavy).Pix[0]) / 10
	depthLight := (DarkThreshold(light) - 10) / DarkThreshold(light)
	depthHeavy := (DarkThreshold(heavy) - 10) / DarkThreshold(heavy)

	if math.Abs(liftLight-(1+0.8*depthLight)) > 0.1 {
		t.Errorf("Expected 1.8 boost for light image, lift %.3f", liftLight)
	}
	if math.Abs(liftHeavy-(1+1.5*depthHeavy)) > 0.1 {
		t.Errorf("Expected 2.5 boost for shadowed image, lift %.3f", liftHeavy)
	}
}

func TestOtsuSeparatesBimodal(t *testing.T) {
	g := New(100, 1)
	for i := range g.Pix {
		if i%2 == 0 {
			g.Pix[i] = 30
		} else {
			g.Pix[i] = 220
		}
	}
	level := Otsu(g)
	if level < 30 || level >= 220 {
		t.Errorf("Expected level between modes, got %d", level)
	}
	out := GlobalThreshold(g)
	if out.Pix[0] != 0 || out.Pix[1] != 255 {
		t.Errorf("Expected modes split, got %d/%d", out.Pix[0], out.Pix[1])
	}
}

func TestUpscaleFactor(t *testing.T) {
	tests := []struct {
		w, h int
		want float64
	}{
		{640, 480, 2.5},
		{799, 600, 2.5},
		{800, 600, 2.0},
		{1199, 900, 2.0},
		{1200, 900, 1.5},
		{3000, 2000, 1.5},
	}
	for _, tt := range tests {
		if got := UpscaleFactor(tt.w, tt.h); got != tt.want {
			t.Errorf("UpscaleFactor(%d, %d): expected %.1f, got %.1f", tt.w, tt.h, tt.want, got)
		}
	}
}

func TestResizeTinyReplicatesBlocks(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		factor float64
	}{
		{"narrow", 9, 40, 2.5},
		{"short", 30, 3, 1.5},
		{"single pixel", 1, 1, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := noise(tt.w, tt.h, 5)
			out := Resize(src, tt.factor)
			if out.Width != 2*tt.w || out.Height != 2*tt.h {
				t.Fatalf("Expected %dx%d, got %dx%d", 2*tt.w, 2*tt.h, out.Width, out.Height)
			}
			for y := 0; y < tt.h; y++ {
				for x := 0; x < tt.w; x++ {
					v := src.At(x, y)
					if out.At(2*x, 2*y) != v || out.At(2*x+1, 2*y) != v ||
						out.At(2*x, 2*y+1) != v || out.At(2*x+1, 2*y+1) != v {
						t.Fatalf("Block at (%d,%d) does not equal source %d", x, y, v)
					}
				}
			}
		})
	}
}

func TestResizeBilinear(t *testing.T) {
	src := Filled(40, 20, 90)
	out := Resize(src, 2.5)
	if out.Width != 100 || out.Height != 50 {
		t.Fatalf("Expected 100x50, got %dx%d", out.Width, out.Height)
	}
	for i, p := range out.Pix {
		if p != 90 {
			t.Fatalf("Expected flat image to stay flat, got %d at %d", p, i)
		}
	}

	// horizontal ramp stays monotonic
	ramp := New(20, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			ramp.Set(x, y, uint8(x*10))
		}
	}
	up := Resize(ramp, 2)
	for x := 1; x < up.Width; x++ {
		if up.At(x, 5) < up.At(x-1, 5) {
			t.Fatalf("Expected monotonic ramp at x=%d", x)
		}
	}
}

func TestFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{A: 255})
	g := FromImage(img)
	if g.Width != 3 || g.Height != 2 {
		t.Fatalf("Expected 3x2, got %dx%d", g.Width, g.Height)
	}
	if g.At(0, 0) != 255 || g.At(1, 0) != 0 {
		t.Errorf("Expected white then black, got %d %d", g.At(0, 0), g.At(1, 0))
	}

	back := g.Image()
	if back.GrayAt(0, 0).Y != 255 {
		t.Errorf("Expected round trip through image.Gray")
	}
}
