// Package strings provides string helpers shared by policy and extraction code.
package strings

import (
	"strings"
)

// DedupeFold trims each element and drops empties and duplicates, comparing
// case-insensitively. Order and spelling of the first occurrence are kept.
//
//	DedupeFold([]string{" Passport", "PASSPORT", "visa"})
//	// Returns: []string{"Passport", "visa"}
func DedupeFold(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		k := strings.ToLower(trimmed)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, trimmed)
	}

	return result
}

// ContainsFold reports whether values holds target, ignoring case.
func ContainsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
