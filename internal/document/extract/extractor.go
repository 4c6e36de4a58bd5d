// Package extract reads identity fields from free-form OCR text and folds
// decoded MRZ values into the result.
package extract

import (
	"regexp"
	"strings"
	"time"

	"docverify/internal/document/models"
	"docverify/pkg/confidence"
	"docverify/pkg/dates"
)

// Confidence bands for text-derived fields. All sit below every MRZ
// confidence so decoded zone values replace them on merge.
const (
	confidencePassportNumber = 65
	confidenceNationality    = 60
	confidenceDate           = 60
	confidenceName           = 55
	confidenceKeyValue       = 40
)

const datePattern = `\s*[:\-]?\s*([0-9]{2}[^\w]?[0-9]{2}[^\w]?[0-9]{2,4})`

var (
	passportNumberPattern = regexp.MustCompile(`(?i)(Passport|Document)\s*(No\.?|Number)?\s*[:\-]?\s*([A-Z0-9]{5,})`)
	nationalityPattern    = regexp.MustCompile(`(?i)Nationality\s*[:\-]?\s*([A-Z\s]+)`)
	surnamePattern        = regexp.MustCompile(`(?i)Surname\s*[:\-]?\s*([A-Z\s]+)`)
	givenNamesPattern     = regexp.MustCompile(`(?i)Given\s+Names?\s*[:\-]?\s*([A-Z\s]+)`)

	dateOfBirthPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Date\s+of\s+Birth` + datePattern),
		regexp.MustCompile(`(?i)DOB` + datePattern),
	}
	expiryDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Date\s+of\s+Expiry` + datePattern),
		regexp.MustCompile(`(?i)Expiry\s*Date` + datePattern),
	}

	keyValuePattern = regexp.MustCompile(`^([A-Za-z\s]{3,})[:\-\s]+([A-Za-z0-9\s'/.<>-]{3,})$`)
	nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// Extract reads the labelled identity fields, then any generic
// "label: value" lines, from OCR text. Labelled patterns run on the
// line-joined text; the generic fallback runs per line.
func Extract(text string, now time.Time) models.FieldMap {
	fields := models.FieldMap{}
	lines := splitLines(text)
	joined := strings.Join(lines, " ")

	if m := passportNumberPattern.FindStringSubmatch(joined); m != nil {
		fields.Set(models.FieldPassportNumber, nonAlphanumeric.ReplaceAllString(m[3], ""), confidencePassportNumber, models.SourceText)
	}

	if m := nationalityPattern.FindStringSubmatch(joined); m != nil {
		fields.Set(models.FieldNationality, NormalizeName(m[1]), confidenceNationality, models.SourceText)
	}

	if raw, ok := firstMatch(joined, dateOfBirthPatterns); ok {
		if iso, ok := dates.Parse(raw, now); ok {
			fields.Set(models.FieldDateOfBirth, iso, confidenceDate, models.SourceText)
		}
	}

	if raw, ok := firstMatch(joined, expiryDatePatterns); ok {
		if iso, ok := dates.Parse(raw, now); ok {
			fields.Set(models.FieldExpiryDate, iso, confidenceDate, models.SourceText)
		}
	}

	if m := surnamePattern.FindStringSubmatch(joined); m != nil {
		fields.Set(models.FieldSurname, NormalizeName(m[1]), confidenceName, models.SourceText)
	}

	if m := givenNamesPattern.FindStringSubmatch(joined); m != nil {
		fields.Set(models.FieldGivenNames, NormalizeName(m[1]), confidenceName, models.SourceText)
	}

	for _, line := range lines {
		m := keyValuePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(m[1])), "_")
		fields.Set(models.FieldName(key), strings.TrimSpace(m[2]), confidenceKeyValue, models.SourceText)
	}

	surname, hasSurname := fields[models.FieldSurname]
	given, hasGiven := fields[models.FieldGivenNames]
	if hasSurname && hasGiven {
		fields.Set(
			models.FieldFullName,
			NormalizeName(surname.Value+" "+given.Value),
			confidence.Average(confidence.Ints(surname.Confidence, given.Confidence)...),
			models.SourceText,
		)
	}

	return fields
}

func splitLines(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func firstMatch(s string, patterns []*regexp.Regexp) (string, bool) {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	return "", false
}
