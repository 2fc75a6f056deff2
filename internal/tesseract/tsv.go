package tesseract

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

const wordLevel = "5"

type lineKey struct{ page, block, par, line string }

// ParseTSV rebuilds text from tesseract's tsv output, one output line per
// recognised line, and returns the mean word confidence in [0,1].
// known is false when no word carried a confidence.
func ParseTSV(data []byte) (text string, confidence float64, known bool) {
	var (
		order []lineKey
		lines = map[lineKey][]string{}
		sum   float64
		n     int
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		cols := strings.Split(scanner.Text(), "\t")
		if len(cols) < 12 || cols[0] != wordLevel {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		key := lineKey{cols[1], cols[2], cols[3], cols[4]}
		if _, seen := lines[key]; !seen {
			order = append(order, key)
		}
		lines[key] = append(lines[key], word)

		if conf, err := strconv.ParseFloat(cols[10], 64); err == nil && conf >= 0 {
			sum += conf
			n++
		}
	}

	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, strings.Join(lines[k], " "))
	}
	if n == 0 {
		return strings.Join(out, "\n"), 0, false
	}
	return strings.Join(out, "\n"), min(max(sum/float64(n)/100, 0), 1), true
}
