package preprocess

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/lehigh-university-libraries/mrzscan/internal/raster"
)

// scratch persists intermediate renderings for one run. Writes are best
// effort; nothing here can fail the pipeline.
type scratch struct {
	dir  string
	keep bool
}

// openScratch creates a run directory under root. A blank root disables
// debug output and returns nil.
func openScratch(root, runID string, keep bool) *scratch {
	if root == "" {
		return nil
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		slog.Warn("Unable to create scratch root", "dir", root, "err", err)
		return nil
	}
	dir, err := os.MkdirTemp(root, "mrzscan-"+runID+"-")
	if err != nil {
		slog.Warn("Unable to create scratch directory", "root", root, "err", err)
		return nil
	}
	return &scratch{dir: dir, keep: keep}
}

func (s *scratch) save(name string, img raster.Gray) {
	if s == nil || img.Empty() {
		return
	}
	path := filepath.Join(s.dir, name+".png")
	if err := imaging.Save(img.Image(), path); err != nil {
		slog.Warn("Unable to write debug variant", "path", path, "err", err)
	}
}

func (s *scratch) close() {
	if s == nil {
		return
	}
	if s.keep {
		slog.Info("Kept debug variants", "dir", s.dir)
		return
	}
	if err := os.RemoveAll(s.dir); err != nil {
		slog.Warn("Unable to remove scratch directory", "dir", s.dir, "err", err)
	}
}
