package mrz

import (
	"strings"

	"docverify/internal/document/models"
)

// span is a half-open slice of one MRZ line. A negative end runs to the end
// of the line.
type span struct {
	line, start, end int
}

func (s span) of(lines []string) string {
	l := lines[s.line]
	if s.end < 0 {
		return l[s.start:]
	}
	return l[s.start:s.end]
}

// segment names a piece of the composite check digit input.
type segment int

const (
	segDocNumber segment = iota
	segDocNumberCheck
	segOptional
	segBirth
	segBirthCheck
	segExpiry
	segExpiryCheck
)

// confidences are fixed per format; they depend only on the layout and the
// check digit outcome, never on OCR quality.
type confidences struct {
	identity int
	name     int
	sex      int
	verified int
	failed   int
	optional int
}

type layout struct {
	format models.MrzFormat
	lines  int
	width  int

	documentType   span
	issuingCountry span
	names          span
	docNumber      span
	docNumberCheck span
	nationality    span
	birth          span
	birthCheck     span
	sex            span
	expiry         span
	expiryCheck    span
	optional       []span
	compositeCheck span
	composite      []segment

	conf confidences
}

// layouts is ordered by classification priority.
var layouts = []layout{
	{
		format:         models.FormatTD1,
		lines:          3,
		width:          30,
		documentType:   span{0, 0, 2},
		issuingCountry: span{0, 2, 5},
		names:          span{2, 0, -1},
		docNumber:      span{0, 5, 14},
		docNumberCheck: span{0, 14, 15},
		nationality:    span{1, 5, 8},
		birth:          span{1, 0, 6},
		birthCheck:     span{1, 6, 7},
		sex:            span{1, 7, 8},
		expiry:         span{1, 8, 14},
		expiryCheck:    span{1, 14, 15},
		optional:       []span{{0, 15, 30}, {1, 15, 30}},
		compositeCheck: span{2, 29, 30},
		composite: []segment{
			segDocNumber, segDocNumberCheck, segOptional,
			segBirth, segBirthCheck, segExpiry, segExpiryCheck,
		},
		conf: confidences{identity: 80, name: 75, sex: 70, verified: 95, failed: 65, optional: 55},
	},
	{
		format:         models.FormatTD2,
		lines:          2,
		width:          36,
		documentType:   span{0, 0, 2},
		issuingCountry: span{0, 2, 5},
		names:          span{0, 5, -1},
		docNumber:      span{1, 0, 9},
		docNumberCheck: span{1, 9, 10},
		nationality:    span{1, 10, 13},
		birth:          span{1, 13, 19},
		birthCheck:     span{1, 19, 20},
		sex:            span{1, 20, 21},
		expiry:         span{1, 21, 27},
		expiryCheck:    span{1, 27, 28},
		optional:       []span{{1, 28, 35}},
		compositeCheck: span{1, 35, 36},
		composite: []segment{
			segDocNumber, segDocNumberCheck, segBirth, segBirthCheck,
			segExpiry, segExpiryCheck, segOptional,
		},
		conf: confidences{identity: 80, name: 75, sex: 70, verified: 95, failed: 65, optional: 55},
	},
	{
		format:         models.FormatTD3,
		lines:          2,
		width:          44,
		documentType:   span{0, 0, 2},
		issuingCountry: span{0, 2, 5},
		names:          span{0, 5, -1},
		docNumber:      span{1, 0, 9},
		docNumberCheck: span{1, 9, 10},
		nationality:    span{1, 10, 13},
		birth:          span{1, 13, 19},
		birthCheck:     span{1, 19, 20},
		sex:            span{1, 20, 21},
		expiry:         span{1, 21, 27},
		expiryCheck:    span{1, 27, 28},
		optional:       []span{{1, 28, 42}},
		compositeCheck: span{1, 43, 44},
		composite: []segment{
			segDocNumber, segDocNumberCheck, segBirth, segBirthCheck,
			segExpiry, segExpiryCheck, segOptional,
		},
		conf: confidences{identity: 85, name: 80, sex: 75, verified: 95, failed: 70, optional: 60},
	},
}

func (l layout) matches(lines []string) bool {
	if len(lines) != l.lines {
		return false
	}
	for _, line := range lines {
		if len(line) != l.width {
			return false
		}
	}
	return true
}

func (l layout) decode(lines []string) *models.ParsedMrz {
	var optional strings.Builder
	for _, s := range l.optional {
		optional.WriteString(s.of(lines))
	}

	segments := map[segment]string{
		segDocNumber:      l.docNumber.of(lines),
		segDocNumberCheck: l.docNumberCheck.of(lines),
		segOptional:       optional.String(),
		segBirth:          l.birth.of(lines),
		segBirthCheck:     l.birthCheck.of(lines),
		segExpiry:         l.expiry.of(lines),
		segExpiryCheck:    l.expiryCheck.of(lines),
	}

	var composite strings.Builder
	for _, seg := range l.composite {
		composite.WriteString(segments[seg])
	}
	compositeValid := VerifyCheckDigit(composite.String(), l.compositeCheck.of(lines))

	names := strings.Split(l.names.of(lines), "<<")

	fields := map[models.FieldName]models.MrzField{
		models.FieldDocumentType:   scalarField(models.FieldDocumentType, l.documentType.of(lines), l.conf.identity),
		models.FieldIssuingCountry: scalarField(models.FieldIssuingCountry, l.issuingCountry.of(lines), l.conf.identity),
		models.FieldSurnames:       nameField(models.FieldSurnames, names, 0, l.conf.name),
		models.FieldGivenNames:     nameField(models.FieldGivenNames, names, 1, l.conf.name),
		models.FieldPassportNumber: l.checkedField(models.FieldPassportNumber, segments[segDocNumber], segments[segDocNumberCheck]),
		models.FieldNationality:    scalarField(models.FieldNationality, l.nationality.of(lines), l.conf.identity),
		models.FieldDateOfBirth:    l.checkedField(models.FieldDateOfBirth, segments[segBirth], segments[segBirthCheck]),
		models.FieldSex:            sexField(l.sex.of(lines), l.conf.sex),
		models.FieldExpiryDate:     l.checkedField(models.FieldExpiryDate, segments[segExpiry], segments[segExpiryCheck]),
		models.FieldOptionalData:   scalarField(models.FieldOptionalData, segments[segOptional], l.conf.optional),
	}

	return &models.ParsedMrz{
		Format:                 l.format,
		RawLines:               clone(lines),
		Fields:                 fields,
		CompositeChecksumValid: &compositeValid,
	}
}

func (l layout) checkedField(name models.FieldName, raw, check string) models.MrzField {
	valid := VerifyCheckDigit(raw, check)
	f := scalarField(name, raw, l.conf.failed)
	if valid {
		f.Confidence = l.conf.verified
	}
	f.ChecksumValid = &valid
	return f
}

func scalarField(name models.FieldName, raw string, conf int) models.MrzField {
	return models.MrzField{
		Label:      string(name),
		Value:      nonEmpty(strings.ReplaceAll(raw, "<", "")),
		Confidence: conf,
		Raw:        raw,
	}
}

// nameField reads part idx of the "<<"-separated name section. Single '<'
// separates words within a part.
func nameField(name models.FieldName, parts []string, idx, conf int) models.MrzField {
	f := models.MrzField{Label: string(name), Confidence: conf}
	if idx >= len(parts) {
		return f
	}
	f.Raw = parts[idx]
	f.Value = nonEmpty(strings.TrimSpace(strings.ReplaceAll(parts[idx], "<", " ")))
	return f
}

func sexField(raw string, conf int) models.MrzField {
	f := models.MrzField{Label: string(models.FieldSex), Confidence: conf, Raw: raw}
	if raw != "<" {
		f.Value = nonEmpty(raw)
	}
	return f
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
