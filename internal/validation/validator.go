// Package validation runs the MRZ checks and aggregates findings into a
// verdict.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/mrzscan/internal/mrz"
	"github.com/lehigh-university-libraries/mrzscan/internal/observe"
)

// DefaultExpiryWarning flags documents expiring within six months.
const DefaultExpiryWarning = 182 * 24 * time.Hour

// Options configures a Validator.
type Options struct {
	// Pivot and ExpiryLookback feed mrz.CenturyPolicy. Zero values use the
	// defaults.
	Pivot          int
	ExpiryLookback int
	// ExpiryWarning is the window for the expiring soon warning. Negative
	// disables it.
	ExpiryWarning time.Duration
	// Now returns the processing time. Defaults to time.Now.
	Now  func() time.Time
	Sink observe.Sink
}

// Validator checks OCR text. It is stateless and safe for concurrent use.
type Validator struct {
	opts Options
}

// New returns a validator with defaults filled in.
func New(opts Options) *Validator {
	if opts.Pivot == 0 {
		opts.Pivot = 50
	}
	if opts.ExpiryLookback == 0 {
		opts.ExpiryLookback = 50
	}
	if opts.ExpiryWarning == 0 {
		opts.ExpiryWarning = DefaultExpiryWarning
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Validator{opts: opts}
}

var checkLabels = map[string]string{
	mrz.FieldDocumentNumber: "document number",
	mrz.FieldBirthDate:      "birth date",
	mrz.FieldExpiryDate:     "expiry date",
	mrz.FieldOptionalData:   "optional data",
	mrz.FieldComposite:      "composite",
}

// Validate parses text and runs every check. A structural parse failure
// is the only case that stops early: the result is Failed and the error
// is returned. Otherwise the result is Complete and lists every issue,
// however many checks failed. ocrConfidence is in [0,1] or
// UnknownConfidence.
func (v *Validator) Validate(ctx context.Context, text string, ocrConfidence float64) (*Result, error) {
	now := v.opts.Now()
	res := &Result{State: NotStarted}

	res.moveTo(Parsing)
	done := observe.Start(ctx, v.opts.Sink, "parse")
	block := mrz.ExtractBlock(text)
	rec, err := mrz.Parse(block.Text)
	if err != nil {
		res.moveTo(Failed)
		res.add("mrz", Error, CodeStructuralParseError, err.Error())
		done("MRZ not recognised", slog.String("err", err.Error()))
		return res, err
	}
	rec.Raw = text
	rec.Repairs = block.Repairs
	res.Record = rec
	for _, repair := range block.Repairs {
		res.add("mrz", Info, CodeLineRepaired, repair)
	}
	done("Parsed MRZ",
		slog.String("format", rec.Format.String()),
		slog.Int("corrections", len(rec.Corrections)),
		slog.Int("repairs", len(block.Repairs)))

	res.moveTo(ChecksRunning)
	done = observe.Start(ctx, v.opts.Sink, "checks")

	policy := mrz.CenturyPolicy{Pivot: v.opts.Pivot, ExpiryLookback: v.opts.ExpiryLookback, Now: now}
	checks := make(map[string]bool)

	checks[mrz.FieldDocumentNumber] = v.checkDigit(res, rec, mrz.FieldDocumentNumber)
	v.reportCorrections(res, rec, mrz.FieldDocumentNumber)

	checks[mrz.FieldBirthDate] = v.checkDigit(res, rec, mrz.FieldBirthDate)
	v.reportCorrections(res, rec, mrz.FieldBirthDate)
	res.BirthDate = v.normalize(res, policy, mrz.FieldBirthDate, rec.BirthDate, mrz.DateBirth)

	checks[mrz.FieldExpiryDate] = v.checkDigit(res, rec, mrz.FieldExpiryDate)
	v.reportCorrections(res, rec, mrz.FieldExpiryDate)
	res.ExpiryDate = v.normalize(res, policy, mrz.FieldExpiryDate, rec.ExpiryDate, mrz.DateExpiry)
	v.expiryStatus(res, now)

	if _, _, ok := rec.CheckData(mrz.FieldOptionalData); ok {
		checks[mrz.FieldOptionalData] = v.checkDigit(res, rec, mrz.FieldOptionalData)
		v.reportCorrections(res, rec, mrz.FieldOptionalData)
	}

	v.checkDigit(res, rec, mrz.FieldComposite)
	v.reportCorrections(res, rec, mrz.FieldComposite)

	v.fieldFormats(res, rec)

	res.Confidence = score(rec, ocrConfidence, checks)
	res.moveTo(Complete)
	done("Checks complete",
		slog.String("verdict", res.Verdict()),
		slog.Int("errors", res.Count(Error)),
		slog.Int("warnings", res.Count(Warning)))

	return res, nil
}

// checkDigit compares the stored digit with the computed one.
func (v *Validator) checkDigit(res *Result, rec *mrz.Record, field string) bool {
	data, got, ok := rec.CheckData(field)
	if !ok {
		return false
	}
	label := checkLabels[field]

	want, err := mrz.CheckDigitChar(data)
	if err != nil {
		res.add(field, Error, CodeCheckDigitInvalid, fmt.Sprintf("%s check digit cannot be computed: %v", label, err))
		return false
	}
	// an all-filler personal number may carry a filler check digit
	if field == mrz.FieldOptionalData && got == mrz.Filler {
		got = '0'
	}
	if got != want {
		res.add(field, Error, CodeCheckDigitMismatch,
			fmt.Sprintf("%s check digit mismatch: expected %c, got %c", label, want, got))
		return false
	}
	return true
}

func (v *Validator) reportCorrections(res *Result, rec *mrz.Record, field string) {
	var changes []string
	for _, c := range rec.Corrections {
		if c.Field == field {
			changes = append(changes, fmt.Sprintf("%s->%s at %d", c.From, c.To, c.Position+1))
		}
	}
	if len(changes) == 0 {
		return
	}
	res.add(field, Info, CodeCharactersCorrected,
		"corrected OCR confusions: "+strings.Join(changes, ", "))
}

func (v *Validator) normalize(res *Result, policy mrz.CenturyPolicy, field, value string, kind mrz.DateKind) *mrz.NormalizedDate {
	d, err := policy.Normalize(value, kind)
	if err != nil {
		res.add(field, Error, CodeDateUnparseable, err.Error())
		return nil
	}
	if d.Corrected {
		res.add(field, Info, CodeDateCorrected, "date characters corrected before parsing")
	}
	if d.Clamped {
		res.add(field, Warning, CodeDateClamped, fmt.Sprintf("month or day out of range in %q, clamped to %s", value, d))
	}
	if !d.IsCalendarDate() {
		res.add(field, Warning, CodeDateNotCalendar, fmt.Sprintf("%s is not a calendar date", d))
	}
	if d.CenturyAdjusted {
		res.add(field, Info, CodeCenturyInferred, fmt.Sprintf("century resolved to %d", d.Year/100*100))
	}
	return &d
}

func (v *Validator) expiryStatus(res *Result, now time.Time) {
	exp := res.ExpiryDate
	if exp == nil {
		return
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expiry := exp.Time()

	switch {
	case expiry.Before(today):
		res.add(mrz.FieldExpiryDate, Error, CodeDocumentExpired, fmt.Sprintf("document expired on %s", exp))
	case v.opts.ExpiryWarning > 0 && expiry.Before(today.Add(v.opts.ExpiryWarning)):
		res.add(mrz.FieldExpiryDate, Warning, CodeExpiringSoon, fmt.Sprintf("document expires on %s", exp))
	}

	if res.BirthDate != nil && !expiry.After(res.BirthDate.Time()) {
		res.add(mrz.FieldExpiryDate, Error, CodeExpiryBeforeBirth,
			fmt.Sprintf("expiry %s is not after birth %s", exp, res.BirthDate))
	}
}

// documentTypes lists the first letters each layout may carry.
var documentTypes = map[mrz.Format]string{
	mrz.TD1: "IAC",
	mrz.TD2: "IACV",
	mrz.TD3: "PV",
}

func (v *Validator) fieldFormats(res *Result, rec *mrz.Record) {
	for _, field := range []string{mrz.FieldDocumentType, mrz.FieldIssuingState, mrz.FieldNationality, mrz.FieldNames} {
		v.reportCorrections(res, rec, field)
	}

	if rec.DocumentType == "" || !strings.ContainsRune(documentTypes[rec.Format], rune(rec.DocumentType[0])) {
		res.add(mrz.FieldDocumentType, Warning, CodeUnexpectedDocType,
			fmt.Sprintf("document type %q unusual for %s", rec.DocumentType, rec.Format))
	}

	switch rec.Sex {
	case "M", "F", "X":
	default:
		res.add(mrz.FieldSex, Warning, CodeInvalidSex, fmt.Sprintf("sex code %q is not M, F or X", rec.Sex))
	}

	checkCountry(res, mrz.FieldIssuingState, rec.IssuingState)
	checkCountry(res, mrz.FieldNationality, rec.Nationality)

	if rec.Surname == "" {
		res.add(mrz.FieldNames, Warning, CodeMissingSurname, "primary identifier is empty")
	}
}

func checkCountry(res *Result, field, code string) {
	valid := code != ""
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			valid = false
		}
	}
	if !valid {
		res.add(field, Warning, CodeInvalidCountry, fmt.Sprintf("country code %q is not alphabetic", code))
	}
}
