package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.org/p.jpg", true},
		{"http://localhost:8080/scan.pdf", true},
		{"passport.jpg", false},
		{"file:///tmp/p.jpg", false},
		{"https://", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png bytes"))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>"))
		case "/big.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := NewFetcher()
	f.MaxBytes = 32

	data, name, err := f.Fetch(context.Background(), server.URL+"/ok.png")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "png bytes" || name != server.URL+"/ok.png" {
		t.Errorf("Unexpected result %q from %s", data, name)
	}

	tests := []struct {
		path string
		kind errs.Kind
	}{
		{"/missing.png", errs.KindIO},
		{"/page.html", errs.KindImageDecode},
		{"/big.jpg", errs.KindIO},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, _, err := f.Fetch(context.Background(), server.URL+tt.path)
			if errs.KindOf(err) != tt.kind {
				t.Errorf("Expected %s, got %v", tt.kind, err)
			}
		})
	}
}
