package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/mrzscan/internal/mrz"
	"github.com/lehigh-university-libraries/mrzscan/internal/observe"
	"github.com/lehigh-university-libraries/mrzscan/internal/validation"
	"github.com/lehigh-university-libraries/mrzscan/internal/verify"
)

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printReport(w io.Writer, r *verify.Report, trace []observe.Event) {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Source:   %s\n", r.Source)
	if r.Page > 0 {
		fmt.Fprintf(w, "Page:     %d\n", r.Page)
	}
	fmt.Fprintf(w, "Verdict:  %s\n", strings.ToUpper(r.Verdict))
	if p := r.Preprocessing; p != nil {
		fmt.Fprintf(w, "Prepared: %s, variant %s, %dx%d (scale %.1f)\n", p.Strategy, p.Variant, p.Width, p.Height, p.Scale)
		if p.Deskewed {
			fmt.Fprintf(w, "Deskewed: %.2f degrees\n", p.SkewAngle)
		}
	}
	if o := r.OCR; o != nil {
		if o.ConfidenceKnown {
			fmt.Fprintf(w, "OCR:      %s (%s), confidence %.1f%%\n", o.Engine, o.Language, o.Confidence*100)
		} else {
			fmt.Fprintf(w, "OCR:      %s\n", o.Engine)
		}
	}
	if r.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", r.Error)
	}
	if r.Validation != nil {
		printResult(w, r.Validation)
	}
	fmt.Fprintf(w, "Duration: %s\n", r.Duration.Round(time.Millisecond))
	printTrace(w, trace)
	fmt.Fprintln(w, "========================================")
}

func printResult(w io.Writer, res *validation.Result) {
	if rec := res.Record; rec != nil {
		fmt.Fprintln(w, "----------------------------------------")
		fmt.Fprintln(w, rec.Zone())
		fmt.Fprintln(w, "----------------------------------------")
		fmt.Fprintf(w, "Format:          %s\n", rec.Format)
		fmt.Fprintf(w, "Document Type:   %s\n", rec.DocumentType)
		fmt.Fprintf(w, "Issuing State:   %s\n", rec.IssuingState)
		fmt.Fprintf(w, "Surname:         %s\n", rec.Surname)
		fmt.Fprintf(w, "Given Names:     %s\n", rec.GivenNames)
		fmt.Fprintf(w, "Document Number: %s\n", rec.DocumentNumber)
		fmt.Fprintf(w, "Nationality:     %s\n", rec.Nationality)
		fmt.Fprintf(w, "Birth Date:      %s\n", dateOrRaw(res.BirthDate, rec.BirthDate))
		fmt.Fprintf(w, "Sex:             %s\n", rec.Sex)
		fmt.Fprintf(w, "Expiry Date:     %s\n", dateOrRaw(res.ExpiryDate, rec.ExpiryDate))
		if rec.OptionalData != "" {
			fmt.Fprintf(w, "Optional Data:   %s\n", rec.OptionalData)
		}
		fmt.Fprintf(w, "Confidence:      %.1f%%\n", res.Confidence.Overall*100)
	}
	if len(res.Issues) == 0 {
		fmt.Fprintln(w, "Issues:          none")
		return
	}
	fmt.Fprintln(w, "Issues:")
	for _, issue := range res.Issues {
		fmt.Fprintf(w, "  %s\n", issue)
	}
}

func dateOrRaw(d *mrz.NormalizedDate, raw string) string {
	if d == nil {
		return raw
	}
	return d.String()
}

func printTrace(w io.Writer, trace []observe.Event) {
	if len(trace) == 0 {
		return
	}
	fmt.Fprintln(w, "Trace:")
	for _, e := range trace {
		fmt.Fprintf(w, "  %-10s %8s  %s\n", e.Stage, e.Elapsed.Round(time.Microsecond), e.Summary)
	}
}
