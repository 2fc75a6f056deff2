// Package pdf renders one page of a PDF to a grayscale PNG with pdftoppm.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
)

const DefaultDPI = 300

// Rasterizer converts PDF pages to images.
type Rasterizer struct {
	Binary string
	DPI    int
	// TempDir is the parent for per-call working directories; empty uses
	// the system default.
	TempDir string
}

func New(binary string, dpi int) *Rasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Rasterizer{Binary: binary, DPI: dpi}
}

// IsPDF reports whether data starts with the PDF signature.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// PageCount reads the page tree without rendering.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, errs.Decode("count pdf pages", err)
	}
	return n, nil
}

// RenderPage renders the 1-based page of the PDF at path and returns PNG
// bytes. The working directory is removed before returning.
func (r *Rasterizer) RenderPage(ctx context.Context, path string, page int) ([]byte, error) {
	if page < 1 {
		page = 1
	}

	bin, err := exec.LookPath(r.Binary)
	if err != nil {
		return nil, errs.Tool("pdftoppm", fmt.Errorf("%w: %s", errs.ErrToolNotFound, err))
	}

	if n, err := PageCount(path); err != nil {
		slog.Debug("pdfcpu could not read page count; letting pdftoppm decide", "path", path, "err", err)
	} else if page > n {
		return nil, errs.Decode("render pdf page", fmt.Errorf("page %d out of range, document has %d", page, n))
	}

	work, err := os.MkdirTemp(r.TempDir, "mrzscan-pdf-")
	if err != nil {
		return nil, errs.IO("create pdf work dir", err)
	}
	defer func() {
		if err := os.RemoveAll(work); err != nil {
			slog.Warn("Unable to remove pdf work dir", "dir", work, "err", err)
		}
	}()

	prefix := filepath.Join(work, "page")
	p := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, bin,
		"-gray", "-png",
		"-r", strconv.Itoa(r.DPI),
		"-f", p, "-l", p,
		path, prefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Tool("pdftoppm", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String())))
	}

	out, err := findOutput(work, page)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return nil, errs.IO("read rendered page", err)
	}
	return data, nil
}

// findOutput locates pdftoppm's output, whose page suffix is zero padded
// to the width of the document's page count.
func findOutput(dir string, page int) (string, error) {
	for _, name := range []string{
		fmt.Sprintf("page-%d.png", page),
		fmt.Sprintf("page-%02d.png", page),
		fmt.Sprintf("page-%03d.png", page),
		fmt.Sprintf("page-%04d.png", page),
	} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "page*.png"))
	if len(matches) == 1 {
		return matches[0], nil
	}
	return "", errs.Tool("pdftoppm", errs.ErrNoOutput)
}
