package batch

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"time"
)

// Summary aggregates a batch run.
type Summary struct {
	Total   int `json:"total" yaml:"total"`
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Errored int `json:"errored" yaml:"errored"`

	// MeanOCRConfidence covers documents whose engine reported one.
	MeanOCRConfidence float64 `json:"mean_ocr_confidence" yaml:"mean_ocr_confidence"`
	MeanConfidence    float64 `json:"mean_field_confidence" yaml:"mean_field_confidence"`

	MeanDuration   time.Duration `json:"mean_duration" yaml:"mean_duration"`
	MedianDuration time.Duration `json:"median_duration" yaml:"median_duration"`
	MinDuration    time.Duration `json:"min_duration" yaml:"min_duration"`
	MaxDuration    time.Duration `json:"max_duration" yaml:"max_duration"`

	IssueCodes map[string]int `json:"issue_codes" yaml:"issue_codes"`

	// Expected counts items carrying an expected document number; Matched
	// counts those whose zone produced it.
	Expected int     `json:"expected" yaml:"expected"`
	Matched  int     `json:"matched" yaml:"matched"`
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`
}

// Summarize computes totals, timing statistics and the issue histogram.
func Summarize(items []ItemResult) Summary {
	s := Summary{Total: len(items), IssueCodes: map[string]int{}}

	var (
		durations       []time.Duration
		ocrSum, confSum float64
		ocrN, confN     int
	)
	for _, it := range items {
		rep := it.Report
		switch rep.Verdict {
		case "pass":
			s.Passed++
		case "fail":
			s.Failed++
		default:
			s.Errored++
		}
		if it.Match != nil {
			s.Expected++
			if *it.Match {
				s.Matched++
			}
		}
		if rep.Duration > 0 {
			durations = append(durations, rep.Duration)
		}
		if rep.OCR != nil && rep.OCR.ConfidenceKnown {
			ocrSum += rep.OCR.Confidence
			ocrN++
		}
		if rep.Validation != nil {
			for _, issue := range rep.Validation.Issues {
				s.IssueCodes[issue.Code]++
			}
			if rep.Validation.Record != nil {
				confSum += rep.Validation.Confidence.Overall
				confN++
			}
		}
	}

	if ocrN > 0 {
		s.MeanOCRConfidence = ocrSum / float64(ocrN)
	}
	if confN > 0 {
		s.MeanConfidence = confSum / float64(confN)
	}
	if s.Expected > 0 {
		s.Accuracy = float64(s.Matched) / float64(s.Expected)
	}

	if len(durations) > 0 {
		var total time.Duration
		for _, d := range durations {
			total += d
		}
		s.MeanDuration = total / time.Duration(len(durations))

		slices.Sort(durations)
		mid := len(durations) / 2
		if len(durations)%2 == 0 {
			s.MedianDuration = (durations[mid-1] + durations[mid]) / 2
		} else {
			s.MedianDuration = durations[mid]
		}
		s.MinDuration = durations[0]
		s.MaxDuration = durations[len(durations)-1]
	}
	return s
}

// PrintSummary writes the human readable banner.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Batch Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Total Documents:    %d\n", s.Total)
	fmt.Fprintf(w, "Passed:             %d\n", s.Passed)
	fmt.Fprintf(w, "Failed:             %d\n", s.Failed)
	fmt.Fprintf(w, "Errors:             %d\n", s.Errored)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Mean OCR Conf.:     %.2f%%\n", s.MeanOCRConfidence*100)
	fmt.Fprintf(w, "Mean Field Conf.:   %.2f%%\n", s.MeanConfidence*100)
	fmt.Fprintf(w, "Mean Duration:      %s\n", s.MeanDuration.Round(time.Millisecond))
	fmt.Fprintf(w, "Median Duration:    %s\n", s.MedianDuration.Round(time.Millisecond))
	fmt.Fprintf(w, "Min Duration:       %s\n", s.MinDuration.Round(time.Millisecond))
	fmt.Fprintf(w, "Max Duration:       %s\n", s.MaxDuration.Round(time.Millisecond))
	if s.Expected > 0 {
		fmt.Fprintf(w, "Doc Number Match:   %d/%d (%.2f%%)\n", s.Matched, s.Expected, s.Accuracy*100)
	}

	if len(s.IssueCodes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Issues:")
		codes := make([]string, 0, len(s.IssueCodes))
		for code := range s.IssueCodes {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "  %s: %d\n", code, s.IssueCodes[code])
		}
	}
	fmt.Fprintln(w, "========================================")
}
