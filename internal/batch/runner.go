package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/mrzscan/internal/verify"
)

// Verifier is the part of verify.Verifier the runner needs.
type Verifier interface {
	VerifyFile(ctx context.Context, path string, page int) (*verify.Report, error)
}

// ItemResult pairs an item with its report. Match is nil when the item
// had no expected document number.
type ItemResult struct {
	Item   Item           `json:"item" yaml:"item"`
	Report *verify.Report `json:"report" yaml:"report"`
	Match  *bool          `json:"match,omitempty" yaml:"match,omitempty"`
}

// Results is one batch run.
type Results struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Source    string        `json:"source" yaml:"source"`
	Engine    string        `json:"engine" yaml:"engine"`
	Strategy  string        `json:"strategy" yaml:"strategy"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Summary   Summary       `json:"summary" yaml:"summary"`
	Items     []ItemResult  `json:"items" yaml:"items"`
}

// Runner verifies items with at most Workers in flight. One document's
// failure never stops the others.
type Runner struct {
	Verifier Verifier
	Workers  int
}

// Run returns results in input order. It fails only when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, items []Item) (*Results, error) {
	res := &Results{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Items:     make([]ItemResult, len(items)),
	}
	slog.Info("Starting batch run", "run_id", res.RunID, "documents", len(items), "workers", max(r.Workers, 1))

	var g errgroup.Group
	g.SetLimit(max(r.Workers, 1))
	for i, item := range items {
		g.Go(func() error {
			if ctx.Err() != nil {
				res.Items[i] = ItemResult{Item: item, Report: &verify.Report{Source: item.Path, Verdict: "error", Error: ctx.Err().Error()}}
				return nil
			}
			slog.Info("Processing document", "path", item.Path, "progress", fmt.Sprintf("%d/%d", i+1, len(items)))
			res.Items[i] = r.process(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	res.Duration = time.Since(res.StartedAt)
	res.Summary = Summarize(res.Items)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (r *Runner) process(ctx context.Context, item Item) ItemResult {
	report, err := r.Verifier.VerifyFile(ctx, item.Path, item.Page)
	if report == nil {
		report = &verify.Report{Source: item.Path, Verdict: "error"}
	}
	if err != nil {
		slog.Warn("Document failed", "path", item.Path, "verdict", report.Verdict, "err", err)
		if report.Error == "" {
			report.Error = err.Error()
		}
	}

	out := ItemResult{Item: item, Report: report}
	if item.Expected != "" {
		match := report.DocumentNumber() == item.Expected
		out.Match = &match
	}
	return out
}
