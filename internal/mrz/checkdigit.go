package mrz

import "fmt"

var weights = [3]int{7, 3, 1}

// CharValue returns the ICAO 9303 value of c: digits as-is, A-Z as 10-35
// and the filler as 0.
func CharValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	case c == Filler:
		return 0, true
	default:
		return 0, false
	}
}

// CheckDigit computes the weighted modulo 10 check digit of s.
func CheckDigit(s string) (int, error) {
	sum := 0
	for i := 0; i < len(s); i++ {
		v, ok := CharValue(s[i])
		if !ok {
			return 0, fmt.Errorf("invalid MRZ character %q at position %d", s[i], i)
		}
		sum += v * weights[i%3]
	}
	return sum % 10, nil
}

// CheckDigitChar is CheckDigit rendered as the character stored in the MRZ.
func CheckDigitChar(s string) (byte, error) {
	d, err := CheckDigit(s)
	if err != nil {
		return 0, err
	}
	return byte('0' + d), nil
}
