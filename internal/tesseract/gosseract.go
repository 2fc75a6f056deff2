//go:build gosseract

package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/ocr"
)

// Gosseract runs tesseract in process through libtesseract.
type Gosseract struct {
	Locator *ocr.Locator
}

func NewGosseract(tessdataPrefix string) *Gosseract {
	return &Gosseract{Locator: ocr.NewLocator(tessdataPrefix)}
}

func (g *Gosseract) Name() string { return "gosseract" }

func (g *Gosseract) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	dir, lang, err := g.Locator.Resolve(in.Languages)
	if err != nil {
		return ocr.Result{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetTessdataPrefix(dir); err != nil {
		return ocr.Result{}, errs.Tool("gosseract", err)
	}
	if err := client.SetLanguage(lang); err != nil {
		return ocr.Result{}, errs.Tool("gosseract", fmt.Errorf("%w: %s", errs.ErrLanguageDataMissing, err))
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return ocr.Result{}, errs.Tool("gosseract", err)
	}
	if in.Whitelist != "" {
		if err := client.SetWhitelist(in.Whitelist); err != nil {
			return ocr.Result{}, errs.Tool("gosseract", err)
		}
	}
	if err := client.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, errs.Tool("gosseract", err)
	}

	text, err := client.Text()
	if err != nil {
		return ocr.Result{}, errs.Tool("gosseract", err)
	}
	if text == "" {
		return ocr.Result{}, errs.Tool("gosseract", errs.ErrNoOutput)
	}

	res := ocr.Result{Text: text, Engine: g.Name(), Language: lang}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil && len(boxes) > 0 {
		var sum float64
		for _, b := range boxes {
			sum += b.Confidence
		}
		res.Confidence = min(max(sum/float64(len(boxes))/100, 0), 1)
		res.ConfidenceKnown = true
	}
	return res, nil
}
