package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
)

// MaxBytes caps downloaded captures.
const MaxBytes = 10 * 1024 * 1024

// Fetcher retrieves captures over HTTP(S)
type Fetcher struct {
	HTTPClient *http.Client
	MaxBytes   int64
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxBytes: MaxBytes,
	}
}

// IsURL reports whether s names an http or https resource.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads an image or PDF and returns its bytes along with a name
// suitable for reports.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if !IsURL(rawURL) {
		return nil, "", errs.IO("fetch", fmt.Errorf("not an http(s) URL: %q", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", errs.IO("fetch", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "image/*,application/pdf")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, "", errs.IO("fetch", fmt.Errorf("failed to download: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", errs.IO("fetch", fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") &&
		!strings.HasPrefix(contentType, "application/pdf") &&
		!strings.HasPrefix(contentType, "application/octet-stream") {
		return nil, "", errs.Decode("fetch", fmt.Errorf("unexpected content type %q", contentType))
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = MaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", errs.IO("fetch", fmt.Errorf("failed to read body: %w", err))
	}
	if int64(len(data)) > limit {
		return nil, "", errs.IO("fetch", fmt.Errorf("capture larger than %d bytes", limit))
	}

	slog.Debug("Downloaded capture", "url", rawURL, "bytes", len(data), "content_type", contentType)
	return data, rawURL, nil
}
