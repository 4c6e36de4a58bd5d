// Package models holds the per-document record types shared by the MRZ
// decoder, field extractor, validator and the verification pipeline.
package models

import "docverify/pkg/confidence"

// Source identifies where a field value was read from.
type Source string

const (
	SourceText Source = "text"
	SourceMRZ  Source = "mrz"
)

// FieldName keys a field map. Known names are listed below; free-form
// labels captured by the extractor's generic key/value fallback are also valid.
type FieldName string

const (
	FieldPassportNumber FieldName = "passportNumber"
	FieldNationality    FieldName = "nationality"
	FieldDateOfBirth    FieldName = "dateOfBirth"
	FieldExpiryDate     FieldName = "expiryDate"
	FieldSurname        FieldName = "surname"
	FieldGivenNames     FieldName = "givenNames"
	FieldFullName       FieldName = "fullName"
	FieldSex            FieldName = "sex"
	FieldDocumentType   FieldName = "documentType"
	FieldIssuingCountry FieldName = "issuingCountry"
	FieldOptionalData   FieldName = "optionalData"

	// FieldSurnames is the MRZ primary identifier; it merges into FieldSurname.
	FieldSurnames FieldName = "surnames"
)

// FieldValue is one extracted value with its confidence and origin.
type FieldValue struct {
	Label      string `json:"label"`
	Value      string `json:"value"`
	Confidence int    `json:"confidence"`
	Source     Source `json:"source"`
}

// Merge applies the overwrite rule: incoming replaces existing when its
// confidence is greater than or equal to the stored one, so ties favor the
// most recent write. The result's confidence is clamped.
func Merge(existing *FieldValue, incoming FieldValue) FieldValue {
	incoming.Confidence = confidence.Clamp(incoming.Confidence)
	if existing == nil || incoming.Confidence >= existing.Confidence {
		return incoming
	}
	return *existing
}

// FieldMap holds the reconciled fields of one document.
type FieldMap map[FieldName]FieldValue

// Set writes value under name through Merge. Empty values are ignored.
func (m FieldMap) Set(name FieldName, value string, conf int, source Source) {
	if value == "" {
		return
	}
	incoming := FieldValue{Label: string(name), Value: value, Confidence: conf, Source: source}
	if cur, ok := m[name]; ok {
		m[name] = Merge(&cur, incoming)
		return
	}
	m[name] = Merge(nil, incoming)
}

// Value returns the stored value for name, or "" when absent.
func (m FieldMap) Value(name FieldName) string {
	return m[name].Value
}

// Clone returns a shallow copy; FieldValue is a value type so this is a full copy.
func (m FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Confidences lists every field confidence in map order.
func (m FieldMap) Confidences() []int {
	out := make([]int, 0, len(m))
	for _, f := range m {
		out = append(out, f.Confidence)
	}
	return out
}
