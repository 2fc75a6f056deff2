package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/mrzscan/internal/validation"
)

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "csv", "yaml", "parquet"}

// Row is the flat per-document record used by the csv and parquet writers.
type Row struct {
	Path           string  `parquet:"path"`
	Page           int     `parquet:"page"`
	Verdict        string  `parquet:"verdict"`
	Format         string  `parquet:"format"`
	DocumentNumber string  `parquet:"document_number"`
	Expected       string  `parquet:"expected"`
	Match          bool    `parquet:"match"`
	Errors         int     `parquet:"errors"`
	Warnings       int     `parquet:"warnings"`
	IssueCodes     string  `parquet:"issue_codes"`
	OCRConfidence  float64 `parquet:"ocr_confidence"`
	Confidence     float64 `parquet:"confidence"`
	DurationMillis int64   `parquet:"duration_ms"`
	Error          string  `parquet:"error"`
}

// Rows flattens results in input order.
func Rows(res *Results) []Row {
	rows := make([]Row, 0, len(res.Items))
	for _, it := range res.Items {
		rep := it.Report
		row := Row{
			Path:           it.Item.Path,
			Page:           rep.Page,
			Verdict:        rep.Verdict,
			DocumentNumber: rep.DocumentNumber(),
			Expected:       it.Item.Expected,
			Match:          it.Match != nil && *it.Match,
			DurationMillis: rep.Duration.Milliseconds(),
			Error:          rep.Error,
		}
		if rep.OCR != nil {
			row.OCRConfidence = rep.OCR.Confidence
		}
		if v := rep.Validation; v != nil {
			row.Errors = v.Count(validation.Error)
			row.Warnings = v.Count(validation.Warning)
			codes := make([]string, 0, len(v.Issues))
			for _, issue := range v.Issues {
				codes = append(codes, issue.Code)
			}
			row.IssueCodes = strings.Join(codes, ";")
			if v.Record != nil {
				row.Format = v.Record.Format.String()
				row.Confidence = v.Confidence.Overall
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Write renders results in a stream format: text, json or csv.
func Write(w io.Writer, format string, res *Results) error {
	switch format {
	case "text":
		return writeText(w, res)
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(res)
	case "csv":
		return writeCSV(w, res)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeText(w io.Writer, res *Results) error {
	fmt.Fprintf(w, "Run:      %s\n", res.RunID)
	fmt.Fprintf(w, "Source:   %s\n", res.Source)
	fmt.Fprintf(w, "Engine:   %s\n", res.Engine)
	fmt.Fprintf(w, "Strategy: %s\n\n", res.Strategy)
	PrintSummary(w, res.Summary)

	fmt.Fprintln(w, "\nDetailed Results:")
	for i, it := range res.Items {
		rep := it.Report
		fmt.Fprintf(w, "\n[%d] %s: %s\n", i+1, it.Item.Path, strings.ToUpper(rep.Verdict))
		if rep.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", rep.Error)
		}
		if n := rep.DocumentNumber(); n != "" {
			fmt.Fprintf(w, "  Document Number: %s\n", n)
		}
		if it.Match != nil && !*it.Match {
			fmt.Fprintf(w, "  Expected:        %s\n", it.Item.Expected)
		}
		if rep.Validation == nil {
			continue
		}
		for _, issue := range rep.Validation.Issues {
			if issue.Severity >= validation.Warning {
				fmt.Fprintf(w, "  %s\n", issue)
			}
		}
	}
	return nil
}

func writeCSV(w io.Writer, res *Results) error {
	writer := csv.NewWriter(w)

	header := []string{"Path", "Page", "Verdict", "Format", "Document Number", "Expected", "Match",
		"Errors", "Warnings", "Issue Codes", "OCR Confidence", "Confidence", "Duration Ms", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, r := range Rows(res) {
		row := []string{
			r.Path,
			strconv.Itoa(r.Page),
			r.Verdict,
			r.Format,
			r.DocumentNumber,
			r.Expected,
			strconv.FormatBool(r.Match),
			strconv.Itoa(r.Errors),
			strconv.Itoa(r.Warnings),
			r.IssueCodes,
			fmt.Sprintf("%.4f", r.OCRConfidence),
			fmt.Sprintf("%.4f", r.Confidence),
			strconv.FormatInt(r.DurationMillis, 10),
			r.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveYAML writes results to dir/batch-<timestamp>.yaml and returns the
// absolute path.
func SaveYAML(dir string, res *Results) (string, error) {
	if dir == "" {
		dir = "results"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("batch-%s.yaml", res.StartedAt.Format("2006-01-02_15-04-05")))
	data, err := yaml.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	return absPath, nil
}

// SaveParquet writes one Row per document to path, defaulting to
// results/batch-<timestamp>.parquet, and returns the path written.
func SaveParquet(path string, res *Results) (string, error) {
	if path == "" {
		path = filepath.Join("results", fmt.Sprintf("batch-%s.parquet", res.StartedAt.Format("2006-01-02_15-04-05")))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}
	if err := parquet.WriteFile(path, Rows(res)); err != nil {
		return "", fmt.Errorf("failed to write parquet file: %w", err)
	}
	return path, nil
}
