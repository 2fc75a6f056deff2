// Package tesseract runs the Tesseract OCR engine, either through its
// command line tool or in process through gosseract.
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/ocr"
)

// PageSegMode 6 treats the image as one uniform block of text.
const PageSegMode = 6

// CLI shells out to the tesseract binary, feeding the image on stdin.
type CLI struct {
	Binary  string
	Locator *ocr.Locator
}

// NewCLI returns a CLI engine that searches tessdataPrefix before the
// system locations.
func NewCLI(binary, tessdataPrefix string) *CLI {
	if binary == "" {
		binary = "tesseract"
	}
	return &CLI{Binary: binary, Locator: ocr.NewLocator(tessdataPrefix)}
}

func (c *CLI) Name() string { return "tesseract" }

func (c *CLI) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	path, err := exec.LookPath(c.Binary)
	if err != nil {
		return ocr.Result{}, errs.Tool("tesseract", fmt.Errorf("%w: %s", errs.ErrEngineNotInstalled, err))
	}

	dir, lang, err := c.Locator.Resolve(in.Languages)
	if err != nil {
		return ocr.Result{}, err
	}

	args := []string{"stdin", "stdout",
		"--tessdata-dir", dir,
		"--psm", strconv.Itoa(PageSegMode),
		"-l", lang,
	}
	if in.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+in.Whitelist)
	}
	args = append(args, "tsv")

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(in.Image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Running tesseract", "binary", path, "lang", lang, "tessdata", dir)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ocr.Result{}, ctx.Err()
		}
		return ocr.Result{}, errs.Tool("tesseract", classify(err, stderr.String()))
	}

	text, conf, known := ParseTSV(stdout.Bytes())
	if strings.TrimSpace(text) == "" {
		return ocr.Result{}, errs.Tool("tesseract", errs.ErrNoOutput)
	}
	return ocr.Result{
		Text:            text,
		Confidence:      conf,
		ConfidenceKnown: known,
		Engine:          c.Name(),
		Language:        lang,
	}, nil
}

func classify(err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if strings.Contains(stderr, "Failed loading language") || strings.Contains(stderr, "Error opening data file") {
		return fmt.Errorf("%w: %s", errs.ErrLanguageDataMissing, stderr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("exit status %d: %s", exitErr.ExitCode(), stderr)
	}
	return err
}
