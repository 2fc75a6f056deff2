package ocr

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("model"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func TestLocatorResolve(t *testing.T) {
	withOCRB := t.TempDir()
	touch(t, withOCRB, "ocrb.traineddata")
	withEng := t.TempDir()
	touch(t, withEng, "eng.traineddata")
	touch(t, withEng, "fra.traineddata")

	tests := []struct {
		name      string
		dirs      []string
		requested []string
		wantDir   string
		wantLang  string
	}{
		{"prefers ocrb", []string{withEng, withOCRB}, nil, withOCRB, "ocrb"},
		{"falls back to eng", []string{withEng}, nil, withEng, "eng"},
		{"combined models", []string{withOCRB, withEng}, []string{"eng+fra"}, withEng, "eng+fra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, lang, err := (&Locator{Dirs: tt.dirs}).Resolve(tt.requested)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if dir != tt.wantDir || lang != tt.wantLang {
				t.Errorf("Expected %s in %s, got %s in %s", tt.wantLang, tt.wantDir, lang, dir)
			}
		})
	}
}

func TestLocatorMissingData(t *testing.T) {
	empty := t.TempDir()
	_, _, err := (&Locator{Dirs: []string{empty}}).Resolve([]string{"ocrb", "eng+spa"})
	if !errors.Is(err, errs.ErrLanguageDataMissing) {
		t.Fatalf("Expected ErrLanguageDataMissing, got %v", err)
	}
	if !errs.Is(err, errs.KindExternalTool) {
		t.Errorf("Expected external tool kind, got %s", errs.KindOf(err))
	}
}

func TestNewLocatorOrder(t *testing.T) {
	t.Setenv("TESSDATA_PREFIX", "/env/prefix")
	l := NewLocator("/flag/prefix")
	want := []string{"/flag/prefix", "/flag/prefix/tessdata", "/env/prefix", "/env/prefix/tessdata"}
	for i, d := range want {
		if l.Dirs[i] != d {
			t.Errorf("Expected %s at %d, got %s", d, i, l.Dirs[i])
		}
	}
}
