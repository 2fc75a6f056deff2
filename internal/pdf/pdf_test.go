package pdf

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
)

func TestIsPDF(t *testing.T) {
	tests := []struct {
		data []byte
		want bool
	}{
		{[]byte("%PDF-1.7\n..."), true},
		{[]byte("\x89PNG\r\n"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsPDF(tt.data); got != tt.want {
			t.Errorf("IsPDF(%q) = %v, want %v", tt.data, got, tt.want)
		}
	}
}

func TestFindOutput(t *testing.T) {
	tests := []struct {
		name string
		file string
		page int
	}{
		{"unpadded", "page-3.png", 3},
		{"two digits", "page-03.png", 3},
		{"three digits", "page-007.png", 7},
		{"unexpected name", "page-x.png", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			want := filepath.Join(dir, tt.file)
			if err := os.WriteFile(want, []byte("png"), 0644); err != nil {
				t.Fatal(err)
			}
			got, err := findOutput(dir, tt.page)
			if err != nil {
				t.Fatalf("findOutput failed: %v", err)
			}
			if got != want {
				t.Errorf("Expected %s, got %s", want, got)
			}
		})
	}
}

func TestFindOutputMissing(t *testing.T) {
	_, err := findOutput(t.TempDir(), 1)
	if !errors.Is(err, errs.ErrNoOutput) {
		t.Errorf("Expected ErrNoOutput, got %v", err)
	}
}

func TestRenderPageMissingTool(t *testing.T) {
	r := New("mrzscan-no-such-pdftoppm", 0)
	if r.DPI != DefaultDPI {
		t.Errorf("Expected default DPI, got %d", r.DPI)
	}
	_, err := r.RenderPage(context.Background(), "doc.pdf", 1)
	if !errors.Is(err, errs.ErrToolNotFound) {
		t.Errorf("Expected ErrToolNotFound, got %v", err)
	}
}

func TestRenderPageLeavesNoWorkDir(t *testing.T) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		t.Skip("pdftoppm not installed")
	}
	tmp := t.TempDir()
	bogus := filepath.Join(tmp, "bogus.pdf")
	if err := os.WriteFile(bogus, []byte("%PDF-1.4\nnot really"), 0644); err != nil {
		t.Fatal(err)
	}

	r := New("", 72)
	r.TempDir = tmp
	if _, err := r.RenderPage(context.Background(), bogus, 1); err == nil {
		t.Fatal("Expected an error for a corrupt pdf")
	}

	entries, _ := os.ReadDir(tmp)
	if len(entries) != 1 {
		t.Errorf("Expected only the input file to remain, found %d entries", len(entries))
	}
}

// fakeTool writes an executable shell script standing in for pdftoppm.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "pdftoppm")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderPageRemovesWorkDir(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr bool
	}{
		{
			name:   "rendered",
			script: "for a; do last=$a; done\nprintf png > \"$last-1.png\"\n",
		},
		{
			name:    "tool failed",
			script:  "echo broken >&2\nexit 3\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := filepath.Join(t.TempDir(), "doc.pdf")
			if err := os.WriteFile(input, []byte("%PDF-1.4\n"), 0644); err != nil {
				t.Fatal(err)
			}
			work := t.TempDir()

			r := New(fakeTool(t, tt.script), 72)
			r.TempDir = work
			data, err := r.RenderPage(context.Background(), input, 1)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected an error from the failing tool")
				}
				if errs.KindOf(err) != errs.KindExternalTool {
					t.Errorf("Expected an external tool error, got %v", err)
				}
			} else {
				if err != nil {
					t.Fatalf("RenderPage failed: %v", err)
				}
				if string(data) != "png" {
					t.Errorf("Expected rendered bytes, got %q", data)
				}
			}

			entries, err := os.ReadDir(work)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("Expected work dir to be removed, found %d entries", len(entries))
			}
		})
	}
}
