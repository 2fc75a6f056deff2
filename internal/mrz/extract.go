package mrz

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	minCandidateLength = 20
	minCharsetRatio    = 0.85
	lengthTolerance    = 2
)

// fillerLookalikes are glyphs engines emit for the chevron filler.
var fillerLookalikes = map[rune]rune{
	'«': Filler, '‹': Filler, '≤': Filler, '(': Filler, '[': Filler,
	'{': Filler, '⟨': Filler, '〈': Filler, '＜': Filler, 'く': Filler,
}

// Clean upper-cases text, maps filler look-alikes to '<', drops
// whitespace inside lines and every character outside [A-Z0-9<], and
// removes empty lines.
func Clean(text string) string {
	var lines []string
	for _, line := range splitLines(text) {
		if c := cleanLine(line); c != "" {
			lines = append(lines, c)
		}
	}
	return strings.Join(lines, "\n")
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

func cleanLine(line string) string {
	var b strings.Builder
	for _, r := range line {
		if f, ok := fillerLookalikes[r]; ok {
			r = f
		}
		r = unicode.ToUpper(r)
		if isDigit(r) || isUpper(r) || r == Filler {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Block is the MRZ found inside free OCR text.
type Block struct {
	Text    string
	Format  Format
	Repairs []string
}

// ExtractBlock locates the machine readable lines in engine output that
// may also contain the visual zone. It keeps lines that look like MRZ,
// takes the trailing lines matching a layout and pads or trims lines that
// are within two characters of the layout width. Failing that, the last
// line holding a whole zone is used. Otherwise the candidates are
// returned joined so the parser can report the mismatch.
func ExtractBlock(text string) Block {
	var candidates []string
	for _, line := range splitLines(text) {
		if c, ok := candidate(line); ok {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return Block{Text: Clean(text)}
	}

	for _, f := range Formats {
		n := f.Lines()
		if len(candidates) < n {
			continue
		}
		tail := candidates[len(candidates)-n:]
		if !fits(tail, f.Width()) {
			continue
		}
		block := Block{Format: f}
		lines := make([]string, n)
		for i, line := range tail {
			lines[i] = fitWidth(line, f.Width())
			if lines[i] != line {
				block.Repairs = append(block.Repairs,
					fmt.Sprintf("line %d resized from %d to %d characters", i+1, len(line), f.Width()))
			}
		}
		block.Text = strings.Join(lines, "\n")
		return block
	}

	// a whole zone transcribed on one line
	for i := len(candidates) - 1; i >= 0; i-- {
		for _, f := range Formats {
			if len(candidates[i]) == f.Size() {
				return Block{Text: candidates[i], Format: f}
			}
		}
	}

	joined := strings.Join(candidates, "\n")
	return Block{Text: joined, Format: Detect(joined)}
}

// candidate reports whether a raw line looks like part of an MRZ and
// returns it cleaned.
func candidate(line string) (string, bool) {
	var raw []rune
	for _, r := range line {
		if !unicode.IsSpace(r) {
			raw = append(raw, r)
		}
	}
	if len(raw) < minCandidateLength {
		return "", false
	}

	cleaned := cleanLine(string(raw))
	if float64(len(cleaned))/float64(len(raw)) < minCharsetRatio {
		return "", false
	}
	if strings.ContainsRune(cleaned, Filler) {
		return cleaned, true
	}
	for _, f := range Formats {
		if abs(len(cleaned)-f.Width()) <= lengthTolerance || len(cleaned) == f.Size() {
			return cleaned, true
		}
	}
	return "", false
}

func fits(lines []string, width int) bool {
	for _, l := range lines {
		if abs(len(l)-width) > lengthTolerance {
			return false
		}
	}
	return true
}

func fitWidth(line string, width int) string {
	if len(line) >= width {
		return line[:width]
	}
	return line + strings.Repeat(string(Filler), width-len(line))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
