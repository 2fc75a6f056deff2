package ocr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
)

var systemTessdataDirs = []string{
	"/usr/share/tesseract-ocr/5/tessdata",
	"/usr/share/tesseract-ocr/4.00/tessdata",
	"/usr/share/tessdata",
	"/usr/local/share/tessdata",
	"/opt/homebrew/share/tessdata",
}

// Locator finds tesseract language models on disk.
type Locator struct {
	Dirs []string
}

// NewLocator searches prefix, TESSDATA_PREFIX and the usual install paths,
// in that order.
func NewLocator(prefix string) *Locator {
	var dirs []string
	for _, p := range []string{prefix, os.Getenv("TESSDATA_PREFIX")} {
		if p != "" {
			dirs = append(dirs, p, filepath.Join(p, "tessdata"))
		}
	}
	return &Locator{Dirs: append(dirs, systemTessdataDirs...)}
}

// Resolve returns the first requested language whose models all exist in
// one directory, along with that directory.
func (l *Locator) Resolve(requested []string) (dir string, lang string, err error) {
	if len(requested) == 0 {
		requested = DefaultLanguages
	}
	for _, lang := range requested {
		for _, d := range l.Dirs {
			if hasModels(d, strings.Split(lang, "+")) {
				return d, lang, nil
			}
		}
	}
	return "", "", errs.Tool("locate language data",
		fmt.Errorf("%w: none of %s found in %s", errs.ErrLanguageDataMissing,
			strings.Join(requested, ", "), strings.Join(l.Dirs, ", ")))
}

func hasModels(dir string, models []string) bool {
	for _, m := range models {
		info, err := os.Stat(filepath.Join(dir, m+".traineddata"))
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}
