// Package batch verifies many documents concurrently and reports on them.
package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Item is one document to verify. Expected, when set, is the document
// number the zone should yield.
type Item struct {
	Path     string `json:"path" parquet:"path"`
	Page     int    `json:"page,omitempty" parquet:"page,optional"`
	Expected string `json:"expected,omitempty" parquet:"expected,optional"`
}

// Extensions are the file types picked up when scanning a directory.
var Extensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp", ".pdf"}

// Load reads items from a directory or a .jsonl/.parquet manifest.
// Relative manifest paths resolve against the manifest's directory.
func Load(path string) ([]Item, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}
	if info.IsDir() {
		return scanDir(path)
	}

	var items []Item
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jsonl", ".json":
		items, err = loadJSONL(path)
	case ".parquet":
		items, err = loadParquet(path)
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s (supported: directory, .jsonl, .parquet)", ext)
	}
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i := range items {
		if items[i].Path == "" {
			return nil, fmt.Errorf("manifest row %d has no path", i+1)
		}
		if !filepath.IsAbs(items[i].Path) {
			items[i].Path = filepath.Join(base, items[i].Path)
		}
	}
	return items, nil
}

func scanDir(dir string) ([]Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var items []Item
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(Extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		items = append(items, Item{Path: filepath.Join(dir, e.Name())})
	}
	slog.Debug("Scanned directory", "dir", dir, "documents", len(items))
	return items, nil
}

func loadJSONL(path string) ([]Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	var items []Item
	scanner := bufio.NewScanner(file)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 0, 64*1024), maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var item Item
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}
	return items, nil
}

func loadParquet(path string) ([]Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Item](pf)
	defer reader.Close()

	items := make([]Item, 0, pf.NumRows())
	rows := make([]Item, 128)
	for {
		n, err := reader.Read(rows)
		items = append(items, rows[:n]...)
		if err != nil {
			break
		}
	}
	slog.Debug("Read parquet manifest", "rows", len(items), "row_groups", len(pf.RowGroups()))
	return items, nil
}
