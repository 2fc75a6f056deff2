// Package errs defines the error kinds surfaced by the verification pipeline.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindIO covers file and temp-file access.
	KindIO
	// KindImageDecode covers malformed or unsupported input images.
	KindImageDecode
	// KindExternalTool covers missing binaries, nonzero exits and missing language data.
	KindExternalTool
	// KindStructuralParse is returned when no MRZ format signature matched.
	KindStructuralParse
	// KindValidation wraps a completed validation whose verdict is fail.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io_error"
	case KindImageDecode:
		return "image_decode_error"
	case KindExternalTool:
		return "external_tool_error"
	case KindStructuralParse:
		return "structural_parse_error"
	case KindValidation:
		return "validation_error"
	default:
		return "unknown_error"
	}
}

var (
	ErrEngineNotInstalled  = errors.New("ocr engine not installed")
	ErrLanguageDataMissing = errors.New("ocr language data missing")
	ErrEngineDisabled      = errors.New("ocr engine not compiled into this binary")
	ErrToolNotFound        = errors.New("external tool not found")
	ErrNoOutput            = errors.New("external tool produced no output")
	ErrUnknownFormat       = errors.New("no MRZ format signature matched")
)

// Error is a categorised failure with the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// IO wraps err as an IoError.
func IO(op string, err error) error { return E(KindIO, op, err) }

// Decode wraps err as an ImageDecodeError.
func Decode(op string, err error) error { return E(KindImageDecode, op, err) }

// Tool wraps err as an ExternalToolError.
func Tool(op string, err error) error { return E(KindExternalTool, op, err) }

// Parse wraps err as a StructuralParseError.
func Parse(op string, err error) error { return E(KindStructuralParse, op, err) }

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
