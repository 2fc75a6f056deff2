package verify

import (
	"errors"
	"time"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/ocr"
	"github.com/lehigh-university-libraries/mrzscan/internal/validation"
)

// Preprocessing summarises what the pipeline did to the capture.
type Preprocessing struct {
	Strategy  string  `json:"strategy" yaml:"strategy"`
	Variant   string  `json:"variant" yaml:"variant"`
	Width     int     `json:"width" yaml:"width"`
	Height    int     `json:"height" yaml:"height"`
	Scale     float64 `json:"scale" yaml:"scale"`
	SkewAngle float64 `json:"skew_angle" yaml:"skew_angle"`
	Deskewed  bool    `json:"deskewed" yaml:"deskewed"`
}

// Report is everything known about one verified document. Err is set when
// a stage failed before validation completed.
type Report struct {
	Source        string             `json:"source" yaml:"source"`
	Page          int                `json:"page,omitempty" yaml:"page,omitempty"`
	Verdict       string             `json:"verdict" yaml:"verdict"`
	Preprocessing *Preprocessing     `json:"preprocessing,omitempty" yaml:"preprocessing,omitempty"`
	OCR           *ocr.Result        `json:"ocr,omitempty" yaml:"ocr,omitempty"`
	Validation    *validation.Result `json:"validation,omitempty" yaml:"validation,omitempty"`
	Duration      time.Duration      `json:"duration" yaml:"duration"`
	Error         string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// DocumentNumber returns the parsed document number, or "".
func (r *Report) DocumentNumber() string {
	if r.Validation == nil || r.Validation.Record == nil {
		return ""
	}
	return r.Validation.Record.DocumentNumber
}

// StrictErr returns the validation error for anything but a pass.
func (r *Report) StrictErr() error {
	switch {
	case r.Verdict == "pass":
		return nil
	case r.Validation == nil:
		return errs.E(errs.KindValidation, "verify", errors.New(r.Error))
	}
	return r.Validation.Err()
}
