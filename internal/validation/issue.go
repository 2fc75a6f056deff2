package validation

import (
	"fmt"
	"strings"
)

// Severity ranks a finding. Only Error affects the verdict.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	for sev := Info; sev <= Error; sev++ {
		if sev.String() == string(text) {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// Issue codes.
const (
	CodeCheckDigitMismatch   = "check_digit_mismatch"
	CodeCheckDigitInvalid    = "check_digit_uncomputable"
	CodeDateUnparseable      = "date_unparseable"
	CodeDateClamped          = "date_clamped"
	CodeDateNotCalendar      = "date_not_calendar"
	CodeDateCorrected        = "date_corrected"
	CodeCenturyInferred      = "century_inferred"
	CodeDocumentExpired      = "document_expired"
	CodeExpiringSoon         = "document_expiring_soon"
	CodeExpiryBeforeBirth    = "expiry_before_birth"
	CodeUnexpectedDocType    = "unexpected_document_type"
	CodeInvalidSex           = "invalid_sex"
	CodeInvalidCountry       = "invalid_country_code"
	CodeMissingSurname       = "missing_surname"
	CodeLineRepaired         = "line_repaired"
	CodeCharactersCorrected  = "characters_corrected"
	CodeStructuralParseError = "structural_parse_error"
)

// Issue is one validation finding.
type Issue struct {
	Field       string   `json:"field" yaml:"field"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
	Code        string   `json:"code" yaml:"code"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s (%s)", i.Severity, i.Field, i.Description, i.Code)
}

// FailedError carries the Error issues of a failed verdict. It is wrapped
// as a validation error by Result.Err.
type FailedError struct {
	Issues []Issue
}

func (e *FailedError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.Field + ": " + issue.Description
	}
	return fmt.Sprintf("%d validation error(s): %s", len(e.Issues), strings.Join(parts, "; "))
}
