package validation

import (
	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/mrz"
)

// Result is the outcome of one validation. Issues are in check order.
type Result struct {
	State      State               `json:"state" yaml:"state"`
	Record     *mrz.Record         `json:"record,omitempty" yaml:"record,omitempty"`
	Issues     []Issue             `json:"issues" yaml:"issues"`
	BirthDate  *mrz.NormalizedDate `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	ExpiryDate *mrz.NormalizedDate `json:"expiry_date,omitempty" yaml:"expiry_date,omitempty"`
	Confidence Confidence          `json:"confidence" yaml:"confidence"`
}

// Passed reports a complete validation with no Error issues.
func (r *Result) Passed() bool {
	return r != nil && r.State == Complete && r.Count(Error) == 0
}

// Verdict is pass, fail or error (never completed).
func (r *Result) Verdict() string {
	switch {
	case r == nil || r.State != Complete:
		return "error"
	case r.Passed():
		return "pass"
	default:
		return "fail"
	}
}

// Count returns the number of issues with severity s.
func (r *Result) Count(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// Filter returns the issues with severity s.
func (r *Result) Filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Err returns a validation error listing the Error issues, or nil when the
// result passed.
func (r *Result) Err() error {
	if r.Passed() {
		return nil
	}
	return errs.E(errs.KindValidation, "validate", &FailedError{Issues: r.Filter(Error)})
}

func (r *Result) add(field string, sev Severity, code, description string) {
	r.Issues = append(r.Issues, Issue{Field: field, Severity: sev, Code: code, Description: description})
}

func (r *Result) moveTo(next State) {
	if !r.State.canMoveTo(next) {
		panic("validation: illegal transition " + r.State.String() + " -> " + next.String())
	}
	r.State = next
}
