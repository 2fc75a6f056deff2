package preprocess

import (
	"github.com/lehigh-university-libraries/mrzscan/internal/raster"
)

// Variant is one binarised candidate rendering.
type Variant struct {
	Name  string
	Image raster.Gray
}

// contrastLevels pairs each contrast factor with its threshold.
var contrastLevels = []struct {
	name      string
	factor    float64
	threshold uint8
}{
	{"contrast-2.0", 2.0, 160},
	{"contrast-1.5", 1.5, 130},
	{"contrast-1.2", 1.2, 100},
}

// DefaultVariant is the rendering handed to OCR by the multi-variant
// strategies.
const DefaultVariant = "contrast-2.0"

const (
	shadowVariant = "shadow"
	globalVariant = "global"
)

func contrastVariants(src raster.Gray) []Variant {
	out := make([]Variant, 0, len(contrastLevels))
	for _, lvl := range contrastLevels {
		out = append(out, Variant{
			Name:  lvl.name,
			Image: raster.Threshold(raster.Contrast(src, lvl.factor), lvl.threshold),
		})
	}
	return out
}

func shadowVariantOf(src raster.Gray) Variant {
	enhanced := raster.EnhanceDark(src)
	return Variant{Name: shadowVariant, Image: raster.Threshold(enhanced, raster.ShadowLevel(src))}
}

func globalVariantOf(src raster.Gray) Variant {
	return Variant{Name: globalVariant, Image: raster.GlobalThreshold(src)}
}

func pick(variants []Variant, name string) (Variant, bool) {
	for _, v := range variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}
