//go:build !gosseract

package tesseract

import (
	"context"
	"fmt"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/ocr"
)

// Gosseract is unavailable in builds without the gosseract tag.
type Gosseract struct {
	Locator *ocr.Locator
}

func NewGosseract(tessdataPrefix string) *Gosseract {
	return &Gosseract{Locator: ocr.NewLocator(tessdataPrefix)}
}

func (g *Gosseract) Name() string { return "gosseract" }

func (g *Gosseract) Recognize(context.Context, ocr.Input) (ocr.Result, error) {
	return ocr.Result{}, errs.Tool("gosseract", fmt.Errorf("%w: rebuild with -tags gosseract", errs.ErrEngineDisabled))
}
