package mrz

import (
	"regexp"
	"strings"
)

const minCandidateLineLength = 26

var mrzLine = regexp.MustCompile(`^[A-Z0-9<]+$`)

// normalizeLine strips all whitespace and uppercases.
func normalizeLine(line string) string {
	return strings.ToUpper(strings.Join(strings.Fields(line), ""))
}

// FindCandidates returns every contiguous group of two or three equal-length
// MRZ-shaped lines in text, in line order. Overlapping windows are all
// emitted; nothing is deduplicated.
func FindCandidates(text string) [][]string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := normalizeLine(raw)
		if len(line) >= minCandidateLineLength && mrzLine.MatchString(line) {
			lines = append(lines, line)
		}
	}

	var candidates [][]string
	for i := range lines {
		if i+2 <= len(lines) && sameLength(lines[i:i+2]) {
			candidates = append(candidates, clone(lines[i:i+2]))
		}
		if i+3 <= len(lines) && sameLength(lines[i:i+3]) {
			candidates = append(candidates, clone(lines[i:i+3]))
		}
	}
	return candidates
}

func sameLength(lines []string) bool {
	for _, l := range lines[1:] {
		if len(l) != len(lines[0]) {
			return false
		}
	}
	return true
}

func clone(lines []string) []string {
	return append([]string(nil), lines...)
}
