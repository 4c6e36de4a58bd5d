package extract

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonNameChar   = regexp.MustCompile(`[^A-Za-z\s'-]`)
)

// NormalizeName collapses whitespace, blanks out characters that cannot
// appear in a Latin-script name and capitalizes the first letter of every
// word. Existing capitals are kept, so MRZ-style upper case survives.
func NormalizeName(raw string) string {
	s := whitespaceRun.ReplaceAllString(raw, " ")
	s = nonNameChar.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	b := []byte(s)
	prevWord := false
	for i, c := range b {
		word := isWordChar(c)
		if word && !prevWord && c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
		prevWord = word
	}
	return string(b)
}

func isWordChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}
