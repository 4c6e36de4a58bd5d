// Package mrz locates and decodes ICAO 9303 machine-readable zones in OCR text.
package mrz

import (
	"docverify/internal/document/models"
)

// Classify returns the format whose line count and width match lines exactly.
func Classify(lines []string) models.MrzFormat {
	for _, l := range layouts {
		if l.matches(lines) {
			return l.format
		}
	}
	return models.FormatUnknown
}

// Decode slices a candidate line group into fields and verifies its check
// digits. It returns nil for an empty group or when slicing fails, and an
// UNKNOWN record with no fields when no format matches.
func Decode(lines []string) (record *models.ParsedMrz) {
	if len(lines) == 0 {
		return nil
	}

	format := Classify(lines)
	if format == models.FormatUnknown {
		return &models.ParsedMrz{
			Format:   format,
			RawLines: clone(lines),
			Fields:   map[models.FieldName]models.MrzField{},
		}
	}

	defer func() {
		if r := recover(); r != nil {
			record = nil
		}
	}()

	for _, l := range layouts {
		if l.format == format {
			return l.decode(lines)
		}
	}
	return nil
}

// DecodeText decodes the earliest candidate found in text, or returns nil.
// Later candidates are ignored even when the earliest fails its check digits.
func DecodeText(text string) *models.ParsedMrz {
	candidates := FindCandidates(text)
	if len(candidates) == 0 {
		return nil
	}
	return Decode(candidates[0])
}
