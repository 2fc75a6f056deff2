// Package verify runs a capture through preprocessing, OCR and validation.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/mrzscan/internal/config"
	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/images"
	"github.com/lehigh-university-libraries/mrzscan/internal/observe"
	"github.com/lehigh-university-libraries/mrzscan/internal/ocr"
	"github.com/lehigh-university-libraries/mrzscan/internal/pdf"
	"github.com/lehigh-university-libraries/mrzscan/internal/preprocess"
	"github.com/lehigh-university-libraries/mrzscan/internal/validation"
)

// Rasterizer renders a PDF page to an image.
type Rasterizer interface {
	RenderPage(ctx context.Context, path string, page int) ([]byte, error)
}

// Verifier is safe for concurrent use when its engine is.
type Verifier struct {
	Pipeline   *preprocess.Pipeline
	Engine     ocr.Engine
	Validator  *validation.Validator
	Rasterizer Rasterizer
	Fetcher    *images.Fetcher
	Metrics    *observe.Metrics

	Languages  []string
	OCRTimeout time.Duration
	// Page is used for PDFs when the caller passes page 0.
	Page int
	// TempDir receives uploaded PDFs while they are rendered.
	TempDir string
	Sink    observe.Sink
}

// FromConfig wires every component from cfg. sink and metrics may be nil.
func FromConfig(cfg config.Config, sink observe.Sink, metrics *observe.Metrics) (*Verifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, _ := preprocess.ParseStrategy(cfg.Strategy)
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	var s observe.Sink = observe.Multi(sink, metrics)
	if metrics == nil {
		s = sink
	}

	return &Verifier{
		Pipeline: preprocess.New(preprocess.Options{
			Strategy:    strategy,
			MinSide:     cfg.MinSide,
			ScratchDir:  cfg.ScratchDir,
			KeepScratch: cfg.KeepScratch,
			Sink:        s,
		}),
		Engine: engine,
		Validator: validation.New(validation.Options{
			Pivot:          cfg.CenturyPivot,
			ExpiryLookback: cfg.ExpiryLookbackYears,
			ExpiryWarning:  cfg.ExpiryWarning(),
			Sink:           s,
		}),
		Rasterizer: pdf.New(cfg.PDFToPPMPath, cfg.PDFDPI),
		Fetcher:    images.NewFetcher(),
		Metrics:    metrics,
		Languages:  cfg.Languages,
		OCRTimeout: cfg.OCRTimeout,
		Page:       cfg.PDFPage,
		Sink:       s,
	}, nil
}

// VerifyFile verifies an image or PDF on disk, or at an http(s) URL.
// page selects the PDF page; zero uses the configured default.
func (v *Verifier) VerifyFile(ctx context.Context, path string, page int) (*Report, error) {
	if images.IsURL(path) {
		return v.VerifyURL(ctx, path, page)
	}
	start := time.Now()
	report := &Report{Source: path}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return v.verifyPDF(ctx, report, path, page, start)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return v.fail(report, errs.IO("read input", err), start)
	}
	if pdf.IsPDF(data) {
		return v.verifyPDF(ctx, report, path, page, start)
	}
	return v.verifyImage(ctx, report, data, start)
}

// VerifyBytes verifies an in-memory capture. PDFs are spooled to a
// temporary file for rendering.
func (v *Verifier) VerifyBytes(ctx context.Context, name string, data []byte, page int) (*Report, error) {
	start := time.Now()
	report := &Report{Source: name}
	if !pdf.IsPDF(data) {
		return v.verifyImage(ctx, report, data, start)
	}

	tmp := filepath.Join(v.tempDir(), "mrzscan-upload-"+uuid.NewString()+".pdf")
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return v.fail(report, errs.IO("spool pdf", err), start)
	}
	defer func() {
		if err := os.Remove(tmp); err != nil {
			slog.Warn("Unable to remove spooled pdf", "path", tmp, "err", err)
		}
	}()
	return v.verifyPDF(ctx, report, tmp, page, start)
}

// VerifyURL downloads a capture and verifies it.
func (v *Verifier) VerifyURL(ctx context.Context, rawURL string, page int) (*Report, error) {
	fetcher := v.Fetcher
	if fetcher == nil {
		fetcher = images.NewFetcher()
	}
	start := time.Now()
	done := observe.Start(ctx, v.Sink, "fetch")
	data, name, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return v.fail(&Report{Source: rawURL}, err, start)
	}
	done("Downloaded capture", slog.Int("bytes", len(data)))
	return v.VerifyBytes(ctx, name, data, page)
}

// Check validates MRZ text without OCR.
func (v *Verifier) Check(ctx context.Context, text string) (*validation.Result, error) {
	res, err := v.Validator.Validate(ctx, text, validation.UnknownConfidence)
	v.record(res)
	return res, err
}

func (v *Verifier) verifyPDF(ctx context.Context, report *Report, path string, page int, start time.Time) (*Report, error) {
	if page <= 0 {
		page = max(v.Page, 1)
	}
	report.Page = page
	if v.Rasterizer == nil {
		return v.fail(report, errs.Tool("render pdf", errs.ErrToolNotFound), start)
	}

	done := observe.Start(ctx, v.Sink, "rasterize")
	data, err := v.Rasterizer.RenderPage(ctx, path, page)
	if err != nil {
		return v.fail(report, err, start)
	}
	done("Rendered PDF page", slog.Int("page", page), slog.Int("bytes", len(data)))
	return v.verifyImage(ctx, report, data, start)
}

func (v *Verifier) verifyImage(ctx context.Context, report *Report, data []byte, start time.Time) (*Report, error) {
	prep, err := v.Pipeline.Run(ctx, data)
	if err != nil {
		return v.fail(report, err, start)
	}
	report.Preprocessing = &Preprocessing{
		Strategy:  v.Pipeline.Strategy().String(),
		Variant:   prep.Variant,
		Width:     prep.Width,
		Height:    prep.Height,
		Scale:     prep.Scale,
		SkewAngle: prep.Skew.Angle,
		Deskewed:  prep.Skew.Applied,
	}

	ocrCtx := ctx
	if v.OCRTimeout > 0 {
		var cancel context.CancelFunc
		ocrCtx, cancel = context.WithTimeout(ctx, v.OCRTimeout)
		defer cancel()
	}
	done := observe.Start(ctx, v.Sink, "ocr")
	text, err := v.Engine.Recognize(ocrCtx, ocr.Input{
		Image:     prep.PNG,
		Languages: v.Languages,
		Whitelist: ocr.MRZWhitelist,
	})
	if err != nil {
		if ocrCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			err = errs.Tool(v.Engine.Name(), fmt.Errorf("timed out after %s: %w", v.OCRTimeout, err))
		}
		return v.fail(report, err, start)
	}
	report.OCR = &text
	done("Recognised text",
		slog.String("engine", text.Engine),
		slog.Float64("confidence", text.Confidence),
		slog.Int("length", len(text.Text)))

	conf := validation.UnknownConfidence
	if text.ConfidenceKnown {
		conf = text.Confidence
		v.Metrics.OCRConfidence(conf)
	}

	res, err := v.Validator.Validate(ctx, text.Text, conf)
	v.record(res)
	report.Validation = res
	report.Verdict = res.Verdict()
	report.Duration = time.Since(start)
	if err != nil {
		report.Error = err.Error()
		return report, err
	}
	return report, nil
}

func (v *Verifier) fail(report *Report, err error, start time.Time) (*Report, error) {
	report.Verdict = "error"
	report.Error = err.Error()
	report.Duration = time.Since(start)
	v.Metrics.Verdict(report.Verdict)
	return report, err
}

func (v *Verifier) record(res *validation.Result) {
	if res == nil {
		return
	}
	v.Metrics.Verdict(res.Verdict())
	for _, issue := range res.Issues {
		v.Metrics.Issue(issue.Code, issue.Severity.String())
	}
}

func (v *Verifier) tempDir() string {
	if v.TempDir != "" {
		return v.TempDir
	}
	return os.TempDir()
}
