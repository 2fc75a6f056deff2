package mrz

// Correction records one character the confusion table replaced.
type Correction struct {
	Field    string `json:"field" yaml:"field"`
	Position int    `json:"position" yaml:"position"`
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
}

// digitFor maps letters OCR engines confuse with digits. It is read-only
// after init and shared by every goroutine.
var digitFor = map[rune]rune{
	'O': '0', 'Q': '0', 'D': '0', 'C': '0',
	'I': '1', 'L': '1',
	'Z': '2',
	'E': '3',
	'A': '4',
	'S': '5',
	'G': '6',
	'T': '7',
	'B': '8', 'R': '8',
}

// looseDigitFor extends digitFor with lower case and punctuation forms seen
// in raw engine output. Used as the second pass by the date normaliser.
var looseDigitFor = map[rune]rune{
	'o': '0', 'q': '9', 'g': '9', 'U': '0',
	'l': '1', 'i': '1', '|': '1', '!': '1', ']': '1', '[': '1',
	'z': '2',
	'e': '3',
	'a': '4',
	's': '5', '$': '5',
	'b': '6',
	't': '7',
}

// letterFor maps digits to the letters they are mistaken for.
var letterFor = map[rune]rune{
	'0': 'O',
	'1': 'I',
	'2': 'Z',
	'3': 'E',
	'4': 'A',
	'5': 'S',
	'6': 'G',
	'7': 'T',
	'8': 'B',
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// ToDigits rewrites letters in a field that must be numeric. Fillers and
// characters with no mapping are left alone.
func ToDigits(s string) (string, []int) {
	return mapRunes(s, func(r rune) (rune, bool) {
		if isDigit(r) {
			return r, false
		}
		d, ok := digitFor[r]
		return d, ok
	})
}

// ToDigitsLoose applies the strict table and then the loose forms.
func ToDigitsLoose(s string) (string, []int) {
	return mapRunes(s, func(r rune) (rune, bool) {
		if isDigit(r) {
			return r, false
		}
		if d, ok := digitFor[r]; ok {
			return d, true
		}
		d, ok := looseDigitFor[r]
		return d, ok
	})
}

// ToLetters rewrites digits in a field that must be alphabetic.
func ToLetters(s string) (string, []int) {
	return mapRunes(s, func(r rune) (rune, bool) {
		if isUpper(r) {
			return r, false
		}
		l, ok := letterFor[r]
		return l, ok
	})
}

func mapRunes(s string, fn func(rune) (rune, bool)) (string, []int) {
	var changed []int
	out := []rune(s)
	for i, r := range out {
		if m, ok := fn(r); ok && m != r {
			out[i] = m
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return s, nil
	}
	return string(out), changed
}
