package mrz

import (
	"fmt"
	"time"
)

// DateKind tells the normaliser how to resolve the century.
type DateKind int

const (
	// DatePlain applies the pivot only.
	DatePlain DateKind = iota
	// DateBirth never resolves into the future.
	DateBirth
	// DateExpiry avoids the distant past.
	DateExpiry
)

// CenturyPolicy resolves two digit years. Years below Pivot land in 20xx,
// the rest in 19xx. Birth dates that would fall after Now move back a
// century; expiry dates more than ExpiryLookback years before Now move
// forward one.
type CenturyPolicy struct {
	Pivot          int
	ExpiryLookback int
	Now            time.Time
}

// DefaultPolicy pivots at 50 with a 50 year expiry look-back.
func DefaultPolicy(now time.Time) CenturyPolicy {
	return CenturyPolicy{Pivot: 50, ExpiryLookback: 50, Now: now}
}

// NormalizedDate is a resolved MRZ date. Day is clamped to 1-31 but not
// checked against the month, so it may not be a calendar date.
type NormalizedDate struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
	Day   int `json:"day" yaml:"day"`
	// Clamped is set when month or day was moved into range.
	Clamped bool `json:"clamped" yaml:"clamped"`
	// CenturyAdjusted is set when the kind rule overrode the pivot.
	CenturyAdjusted bool `json:"century_adjusted" yaml:"century_adjusted"`
	// Corrected is set when the second confusion pass changed characters.
	Corrected bool `json:"corrected" yaml:"corrected"`
}

// Flagged reports whether any adjustment was made.
func (d NormalizedDate) Flagged() bool {
	return d.Clamped || d.CenturyAdjusted || d.Corrected
}

// Time returns the date at UTC midnight; out of month days roll over.
func (d NormalizedDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// IsCalendarDate reports whether the day exists in the month.
func (d NormalizedDate) IsCalendarDate() bool {
	t := d.Time()
	return t.Day() == d.Day && int(t.Month()) == d.Month
}

func (d NormalizedDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Normalize parses a YYMMDD value.
func (p CenturyPolicy) Normalize(value string, kind DateKind) (NormalizedDate, error) {
	var out NormalizedDate
	if len(value) != 6 {
		return out, fmt.Errorf("date %q: expected 6 characters, got %d", value, len(value))
	}

	if !allDigits(value) {
		fixed, changed := ToDigitsLoose(value)
		if len(changed) > 0 {
			out.Corrected = true
			value = fixed
		}
		if !allDigits(value) {
			return out, fmt.Errorf("date %q: non-digit characters after correction", value)
		}
	}

	yy := atoi2(value[0:2])
	month := atoi2(value[2:4])
	day := atoi2(value[4:6])

	switch {
	case month < 1:
		month, out.Clamped = 1, true
	case month > 12:
		month, out.Clamped = 12, true
	}
	switch {
	case day < 1:
		day, out.Clamped = 1, true
	case day > 31:
		day, out.Clamped = 31, true
	}

	year := 1900 + yy
	if yy < p.Pivot {
		year = 2000 + yy
	}
	out.Year, out.Month, out.Day = year, month, day

	if p.Now.IsZero() {
		return out, nil
	}
	switch kind {
	case DateBirth:
		if out.Time().After(p.Now) {
			out.Year -= 100
			out.CenturyAdjusted = true
		}
	case DateExpiry:
		if out.Year < p.Now.Year()-p.ExpiryLookback {
			out.Year += 100
			out.CenturyAdjusted = true
		}
	}
	return out, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func atoi2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
