package raster

// Median applies a 3x3 median filter to interior samples. The one-pixel
// border is copied from the input unchanged.
func Median(src Gray) Gray {
	out := src.Clone()
	if src.Width < 3 || src.Height < 3 {
		return out
	}

	var window [9]uint8
	w := src.Width
	for y := 1; y < src.Height-1; y++ {
		for x := 1; x < w-1; x++ {
			k := 0
			for dy := -1; dy <= 1; dy++ {
				row := (y + dy) * w
				for dx := -1; dx <= 1; dx++ {
					window[k] = src.Pix[row+x+dx]
					k++
				}
			}
			out.Pix[y*w+x] = median9(window)
		}
	}
	return out
}

func median9(v [9]uint8) uint8 {
	// insertion sort; nine elements
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j-1] > v[j]; j-- {
			v[j-1], v[j] = v[j], v[j-1]
		}
	}
	return v[4]
}
