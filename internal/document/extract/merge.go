package extract

import (
	"strings"
	"time"

	"docverify/internal/document/models"
	"docverify/pkg/confidence"
	"docverify/pkg/dates"
)

// scalarMrzFields merge under their own names without transformation.
var scalarMrzFields = []models.FieldName{
	models.FieldPassportNumber,
	models.FieldNationality,
	models.FieldSex,
	models.FieldDocumentType,
	models.FieldIssuingCountry,
	models.FieldOptionalData,
}

var dateMrzFields = []models.FieldName{
	models.FieldDateOfBirth,
	models.FieldExpiryDate,
}

// MergeMrz folds decoded MRZ values into a copy of fields using the same
// confidence-gated overwrite as extraction. Dates are normalized to ISO
// first. Merging the same record twice yields the same map.
func MergeMrz(fields models.FieldMap, rec *models.ParsedMrz, now time.Time) models.FieldMap {
	out := fields.Clone()
	if rec == nil {
		return out
	}

	for _, name := range scalarMrzFields {
		if f, v, ok := rec.FieldValue(name); ok {
			out.Set(name, v, f.Confidence, models.SourceMRZ)
		}
	}

	for _, name := range dateMrzFields {
		f, v, ok := rec.FieldValue(name)
		if !ok {
			continue
		}
		if iso, ok := dates.Parse(v, now); ok {
			out.Set(name, iso, f.Confidence, models.SourceMRZ)
		}
	}

	surname, surnameValue, hasSurname := rec.FieldValue(models.FieldSurnames)
	given, givenValue, hasGiven := rec.FieldValue(models.FieldGivenNames)
	var nameConfidences []int
	if hasSurname {
		out.Set(models.FieldSurname, surnameValue, surname.Confidence, models.SourceMRZ)
		nameConfidences = append(nameConfidences, surname.Confidence)
	}
	if hasGiven {
		out.Set(models.FieldGivenNames, givenValue, given.Confidence, models.SourceMRZ)
		nameConfidences = append(nameConfidences, given.Confidence)
	}
	if full := strings.TrimSpace(surnameValue + " " + givenValue); full != "" {
		out.Set(
			models.FieldFullName,
			NormalizeName(full),
			confidence.Average(confidence.Ints(nameConfidences...)...),
			models.SourceMRZ,
		)
	}

	return out
}
