// Package validate runs the per-document and batch-level consistency checks
// that compare a reconciled document against the applicant's declaration.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"docverify/internal/document/extract"
	"docverify/internal/document/models"
	"docverify/pkg/confidence"
	"docverify/pkg/dates"
)

// Check identifiers reported in ValidationResult.ID.
const (
	IDExpiryParse          = "expiry_parse"
	IDExpiryPast           = "expiry_past"
	IDExpirySoon           = "expiry_soon"
	IDExpiryValid          = "expiry_valid"
	IDDobMatch             = "dob_match"
	IDDobMismatch          = "dob_mismatch"
	IDNameMatch            = "name_match"
	IDNameMismatch         = "name_mismatch"
	IDPassportMatch        = "passport_match"
	IDPassportMismatch     = "passport_mismatch"
	IDMrzChecksumFail      = "mrz_checksum_fail"
	IDMrzChecksumPass      = "mrz_checksum_pass"
	IDMrzCompositeMismatch = "mrz_composite_mismatch"
	IDDocumentsMissing     = "documents_missing"
)

const (
	expirySoonMonths    = 6
	nameMatchThreshold  = 80
	compositeConfidence = 60
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// Input is everything a per-document check may look at.
type Input struct {
	Fields    models.FieldMap
	Mrz       *models.ParsedMrz
	Applicant models.Applicant
	Now       time.Time
}

type check func(in Input) []models.ValidationResult

// checks run in report order; each skips itself when its inputs are absent.
var checks = []check{
	checkExpiry,
	checkDateOfBirth,
	checkName,
	checkPassportNumber,
	checkMrzChecksums,
	checkMrzComposite,
}

// Document runs every per-document check. The result is never nil.
func Document(in Input) []models.ValidationResult {
	results := []models.ValidationResult{}
	for _, c := range checks {
		results = append(results, c(in)...)
	}
	return results
}

// Global runs the checks that apply to the whole batch.
func Global(docs []models.DocumentAnalysis) []models.ValidationResult {
	results := []models.ValidationResult{}
	if len(docs) == 0 {
		results = append(results, result(IDDocumentsMissing, models.StatusFail, "No readable documents supplied", 30))
	}
	return results
}

func result(id string, status models.Status, message string, conf int, related ...string) models.ValidationResult {
	return models.ValidationResult{
		ID:            id,
		Status:        status,
		Message:       message,
		Confidence:    conf,
		RelatedFields: related,
	}
}

func one(r models.ValidationResult) []models.ValidationResult {
	return []models.ValidationResult{r}
}

func checkExpiry(in Input) []models.ValidationResult {
	expiry := in.Fields.Value(models.FieldExpiryDate)
	if expiry == "" {
		return nil
	}
	field := string(models.FieldExpiryDate)

	months, ok := dates.MonthsUntil(expiry, in.Now)
	switch {
	case !ok:
		return one(result(IDExpiryParse, models.StatusWarn, "Unable to parse expiry date", 40, field))
	case months < 0:
		return one(result(IDExpiryPast, models.StatusFail, "Document appears to be expired", 90, field))
	case months < expirySoonMonths:
		msg := fmt.Sprintf("Document expires in less than %d months (%d months)", expirySoonMonths, months)
		return one(result(IDExpirySoon, models.StatusWarn, msg, 70, field))
	default:
		return one(result(IDExpiryValid, models.StatusPass, "Expiry date is valid", 85, field))
	}
}

func checkDateOfBirth(in Input) []models.ValidationResult {
	declared, ok := dates.Parse(in.Applicant.DateOfBirth, in.Now)
	document := in.Fields.Value(models.FieldDateOfBirth)
	if !ok || document == "" {
		return nil
	}
	field := string(models.FieldDateOfBirth)

	if declared == document {
		return one(result(IDDobMatch, models.StatusPass, "Applicant date of birth matches document", 90, field))
	}
	return one(result(IDDobMismatch, models.StatusFail, "Applicant date of birth does not match document", 90, field))
}

func checkName(in Input) []models.ValidationResult {
	holder := in.Fields.Value(models.FieldFullName)
	if holder == "" {
		return nil
	}
	field := string(models.FieldFullName)

	similarity := NameSimilarity(holder, in.Applicant.FullName)
	if similarity > nameMatchThreshold {
		return one(result(IDNameMatch, models.StatusPass, "Applicant name aligns with document holder name", similarity, field))
	}
	return one(result(IDNameMismatch, models.StatusWarn, "Applicant name differs from document holder name", similarity, field))
}

func checkPassportNumber(in Input) []models.ValidationResult {
	document := in.Fields.Value(models.FieldPassportNumber)
	if document == "" || in.Applicant.PassportNumber == "" {
		return nil
	}
	field := string(models.FieldPassportNumber)

	// Case is significant; only separators are ignored.
	if nonAlphanumeric.ReplaceAllString(document, "") == nonAlphanumeric.ReplaceAllString(in.Applicant.PassportNumber, "") {
		return one(result(IDPassportMatch, models.StatusPass, "Passport number matches application", 95, field))
	}
	return one(result(IDPassportMismatch, models.StatusFail, "Passport number does not match application", 95, field))
}

func checkMrzChecksums(in Input) []models.ValidationResult {
	checked, failed := in.Mrz.ChecksumFields()
	if len(checked) == 0 {
		return nil
	}
	if len(failed) > 0 {
		return one(result(IDMrzChecksumFail, models.StatusFail, "One or more MRZ checksum validations failed", 95, failed...))
	}
	return one(result(IDMrzChecksumPass, models.StatusPass, "MRZ check digits validated successfully", 95, checked...))
}

func checkMrzComposite(in Input) []models.ValidationResult {
	if in.Mrz == nil || in.Mrz.CompositeChecksumValid == nil || *in.Mrz.CompositeChecksumValid {
		return nil
	}
	return one(result(
		IDMrzCompositeMismatch, models.StatusWarn,
		"MRZ composite check digit does not match", compositeConfidence,
		string(models.FieldPassportNumber), string(models.FieldDateOfBirth),
		string(models.FieldExpiryDate), string(models.FieldOptionalData),
	))
}

// NameSimilarity scores how many of a's name tokens are found in b as a
// whole token or a prefix, as a percentage of the longer token list.
// Either side being empty scores 0.
func NameSimilarity(a, b string) int {
	aTokens := nameTokens(a)
	bTokens := nameTokens(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	matches := 0
	for _, token := range aTokens {
		for _, candidate := range bTokens {
			if strings.HasPrefix(candidate, token) {
				matches++
				break
			}
		}
	}
	return confidence.Round(float64(matches) / float64(max(len(aTokens), len(bTokens))) * 100)
}

func nameTokens(name string) []string {
	return strings.Fields(strings.ToLower(extract.NormalizeName(name)))
}
