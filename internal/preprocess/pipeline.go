// Package preprocess turns a passport capture into a binarised, PNG encoded
// rendering ready for OCR.
package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/observe"
	"github.com/lehigh-university-libraries/mrzscan/internal/raster"

	// additional decoders
	_ "golang.org/x/image/webp"
)

// DefaultMinSide is the dimension below which captures are upscaled.
const DefaultMinSide = 1000

// Options configures a Pipeline.
type Options struct {
	Strategy Strategy
	// MinSide triggers upscaling when either dimension is smaller.
	MinSide int
	// ScratchDir receives debug renderings when set.
	ScratchDir string
	// KeepScratch leaves the debug renderings on disk after the run.
	KeepScratch bool
	Sink        observe.Sink
}

// Result is the OCR-ready rendering.
type Result struct {
	// PNG is the selected variant as single channel 8-bit PNG.
	PNG     []byte
	Variant string
	Width   int
	Height  int
	// Scale applied by the upscale stage, 1 when none.
	Scale float64
	Skew  raster.SkewEstimate
}

// Pipeline runs a fixed Strategy. It holds no per-run state and is safe for
// concurrent use.
type Pipeline struct {
	opts Options
}

// New returns a pipeline with defaults filled in.
func New(opts Options) *Pipeline {
	if opts.MinSide <= 0 {
		opts.MinSide = DefaultMinSide
	}
	return &Pipeline{opts: opts}
}

// Strategy returns the configured strategy.
func (p *Pipeline) Strategy() Strategy {
	return p.opts.Strategy
}

// Run decodes data and processes it.
func (p *Pipeline) Run(ctx context.Context, data []byte) (*Result, error) {
	done := observe.Start(ctx, p.opts.Sink, "decode")
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	done("Decoded capture", slog.Int("width", img.Width), slog.Int("height", img.Height))

	return p.Process(ctx, img)
}

// Process runs the strategy on an already decoded image.
func (p *Pipeline) Process(ctx context.Context, img raster.Gray) (*Result, error) {
	if img.Empty() {
		return nil, errs.Decode("preprocess", fmt.Errorf("image has no pixels"))
	}

	debug := openScratch(p.opts.ScratchDir, uuid.NewString(), p.opts.KeepScratch)
	defer debug.close()

	res := &Result{Scale: 1}
	sink := p.opts.Sink

	if p.opts.Strategy == Deskew {
		done := observe.Start(ctx, sink, "deskew")
		var est raster.SkewEstimate
		img, est = raster.Deskew(img)
		res.Skew = est
		done("Checked skew",
			slog.Float64("angle", est.Angle),
			slog.Int("votes", est.Votes),
			slog.Bool("rotated", est.Applied))
		debug.save("deskew", img)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := observe.Start(ctx, sink, "upscale")
	img, res.Scale = Upscale(img, p.opts.MinSide)
	done("Checked resolution",
		slog.Float64("scale", res.Scale),
		slog.Int("width", img.Width),
		slog.Int("height", img.Height))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var selected Variant
	if p.opts.Strategy == Fast {
		done := observe.Start(ctx, sink, "threshold")
		selected = globalVariantOf(img)
		done("Applied global threshold")
	} else {
		var err error
		selected, err = p.multiVariant(ctx, img, debug)
		if err != nil {
			return nil, err
		}
	}
	debug.save("selected-"+selected.Name, selected.Image)

	done = observe.Start(ctx, sink, "encode")
	encoded, err := Encode(selected.Image)
	if err != nil {
		return nil, err
	}
	done("Encoded selected variant", slog.String("variant", selected.Name), slog.Int("bytes", len(encoded)))

	res.PNG = encoded
	res.Variant = selected.Name
	res.Width = selected.Image.Width
	res.Height = selected.Image.Height
	return res, nil
}

func (p *Pipeline) multiVariant(ctx context.Context, img raster.Gray, debug *scratch) (Variant, error) {
	sink := p.opts.Sink

	done := observe.Start(ctx, sink, "denoise")
	img = raster.Median(img)
	done("Applied median filter")
	debug.save("denoised", img)
	if err := ctx.Err(); err != nil {
		return Variant{}, err
	}

	done = observe.Start(ctx, sink, "contrast")
	variants := contrastVariants(img)
	done("Built contrast variants", slog.Int("variants", len(variants)))
	if err := ctx.Err(); err != nil {
		return Variant{}, err
	}

	done = observe.Start(ctx, sink, "shadow")
	variants = append(variants, shadowVariantOf(img))
	done("Built shadow enhanced variant", slog.Int("level", int(raster.ShadowLevel(img))))

	done = observe.Start(ctx, sink, "global")
	variants = append(variants, globalVariantOf(img))
	done("Built global threshold variant")

	for _, v := range variants {
		debug.save(v.Name, v.Image)
	}

	done = observe.Start(ctx, sink, "select")
	selected, ok := pick(variants, DefaultVariant)
	if !ok {
		return Variant{}, fmt.Errorf("variant %s not produced", DefaultVariant)
	}
	done("Selected variant", slog.String("variant", selected.Name))
	return selected, nil
}

// Upscale enlarges img when either side is below minSide and returns the
// scale used, 1 when unchanged.
func Upscale(img raster.Gray, minSide int) (raster.Gray, float64) {
	if !raster.NeedsUpscale(img, minSide) {
		return img, 1
	}
	if img.Width < raster.MinBilinearSize || img.Height < raster.MinBilinearSize {
		return raster.Resize(img, 2), 2
	}
	factor := raster.UpscaleFactor(img.Width, img.Height)
	return raster.Resize(img, factor), factor
}

// Decode reads any supported image format, applies EXIF orientation and
// converts it to grayscale.
func Decode(data []byte) (raster.Gray, error) {
	if len(data) == 0 {
		return raster.Gray{}, errs.Decode("decode", fmt.Errorf("empty input"))
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return raster.Gray{}, errs.Decode("decode", fmt.Errorf("failed to decode image: %w", err))
	}
	return raster.FromImage(img), nil
}

// Encode writes img as a single channel 8-bit PNG.
func Encode(img raster.Gray) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img.Image(), imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return nil, errs.IO("encode", fmt.Errorf("failed to encode png: %w", err))
	}
	return buf.Bytes(), nil
}
