package mrz

import "strings"

// Filler pads MRZ fields.
const Filler = '<'

// Format is an ICAO 9303 machine readable zone layout.
type Format int

const (
	Unknown Format = iota
	// TD1 is three lines of 30 characters (identity cards).
	TD1
	// TD2 is two lines of 36 characters.
	TD2
	// TD3 is two lines of 44 characters (passports).
	TD3
)

func (f Format) String() string {
	switch f {
	case TD1:
		return "TD1"
	case TD2:
		return "TD2"
	case TD3:
		return "TD3"
	default:
		return "Unknown"
	}
}

// Lines is the number of MRZ lines in the format.
func (f Format) Lines() int {
	switch f {
	case TD1:
		return 3
	case TD2, TD3:
		return 2
	default:
		return 0
	}
}

// Width is the fixed line length of the format.
func (f Format) Width() int {
	switch f {
	case TD1:
		return 30
	case TD2:
		return 36
	case TD3:
		return 44
	default:
		return 0
	}
}

// Size is the total character count of a block in this format.
func (f Format) Size() int {
	return f.Lines() * f.Width()
}

// Formats lists the known layouts.
var Formats = []Format{TD1, TD2, TD3}

// Detect classifies a cleaned block by its total character count, ignoring
// line breaks.
func Detect(cleaned string) Format {
	n := len(strings.ReplaceAll(cleaned, "\n", ""))
	for _, f := range Formats {
		if f.Size() == n {
			return f
		}
	}
	return Unknown
}

// Split cuts a cleaned block into the format's fixed width lines.
func Split(cleaned string, f Format) []string {
	flat := strings.ReplaceAll(cleaned, "\n", "")
	if f == Unknown || len(flat) != f.Size() {
		return nil
	}
	lines := make([]string, f.Lines())
	for i := range lines {
		lines[i] = flat[i*f.Width() : (i+1)*f.Width()]
	}
	return lines
}

// span addresses characters [start, end) on one line. A zero span is absent.
type span struct {
	line, start, end int
}

func (s span) present() bool { return s.end > s.start }

func (s span) of(lines []string) string {
	if !s.present() {
		return ""
	}
	return lines[s.line][s.start:s.end]
}

type layout struct {
	docType, issuer, names                 span
	docNumber, docNumberCheck, nationality span
	birth, birthCheck, sex                 span
	expiry, expiryCheck                    span
	optional, optional2, optionalCheck     span
	composite                              span
	compositeData                          []span
}

var layouts = map[Format]layout{
	TD1: {
		docType:        span{0, 0, 2},
		issuer:         span{0, 2, 5},
		docNumber:      span{0, 5, 14},
		docNumberCheck: span{0, 14, 15},
		optional:       span{0, 15, 30},
		birth:          span{1, 0, 6},
		birthCheck:     span{1, 6, 7},
		sex:            span{1, 7, 8},
		expiry:         span{1, 8, 14},
		expiryCheck:    span{1, 14, 15},
		nationality:    span{1, 15, 18},
		optional2:      span{1, 18, 29},
		composite:      span{1, 29, 30},
		names:          span{2, 0, 30},
		compositeData:  []span{{0, 5, 30}, {1, 0, 7}, {1, 8, 15}, {1, 18, 29}},
	},
	TD2: {
		docType:        span{0, 0, 2},
		issuer:         span{0, 2, 5},
		names:          span{0, 5, 36},
		docNumber:      span{1, 0, 9},
		docNumberCheck: span{1, 9, 10},
		nationality:    span{1, 10, 13},
		birth:          span{1, 13, 19},
		birthCheck:     span{1, 19, 20},
		sex:            span{1, 20, 21},
		expiry:         span{1, 21, 27},
		expiryCheck:    span{1, 27, 28},
		optional:       span{1, 28, 35},
		composite:      span{1, 35, 36},
		compositeData:  []span{{1, 0, 10}, {1, 13, 20}, {1, 21, 35}},
	},
	TD3: {
		docType:        span{0, 0, 2},
		issuer:         span{0, 2, 5},
		names:          span{0, 5, 44},
		docNumber:      span{1, 0, 9},
		docNumberCheck: span{1, 9, 10},
		nationality:    span{1, 10, 13},
		birth:          span{1, 13, 19},
		birthCheck:     span{1, 19, 20},
		sex:            span{1, 20, 21},
		expiry:         span{1, 21, 27},
		expiryCheck:    span{1, 27, 28},
		optional:       span{1, 28, 42},
		optionalCheck:  span{1, 42, 43},
		composite:      span{1, 43, 44},
		compositeData:  []span{{1, 0, 10}, {1, 13, 20}, {1, 21, 43}},
	},
}
