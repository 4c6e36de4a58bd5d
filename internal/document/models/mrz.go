package models

// MrzFormat is the ICAO 9303 layout of a decoded machine-readable zone.
type MrzFormat string

const (
	FormatTD1     MrzFormat = "TD1"
	FormatTD2     MrzFormat = "TD2"
	FormatTD3     MrzFormat = "TD3"
	FormatUnknown MrzFormat = "UNKNOWN"
)

// MrzField is a decoded MRZ value. Value is nil when the zone holds only
// filler. ChecksumValid is nil for fields without a check digit.
type MrzField struct {
	Label         string  `json:"label"`
	Value         *string `json:"value"`
	Confidence    int     `json:"confidence"`
	Raw           string  `json:"raw"`
	ChecksumValid *bool   `json:"checksumValid,omitempty"`
}

// ParsedMrz is the decoded form of one MRZ candidate. UNKNOWN records carry
// no fields.
type ParsedMrz struct {
	Format   MrzFormat              `json:"format"`
	RawLines []string               `json:"rawLines"`
	Fields   map[FieldName]MrzField `json:"fields"`

	// CompositeChecksumValid reports the composite check digit over the
	// document number, dates and optional data. Nil for UNKNOWN records.
	CompositeChecksumValid *bool `json:"compositeChecksumValid,omitempty"`
}

// MrzFieldOrder is the order in which decoded fields are reported.
var MrzFieldOrder = []FieldName{
	FieldDocumentType,
	FieldIssuingCountry,
	FieldSurnames,
	FieldGivenNames,
	FieldPassportNumber,
	FieldNationality,
	FieldDateOfBirth,
	FieldSex,
	FieldExpiryDate,
	FieldOptionalData,
}

// FieldValue returns the non-empty value of a decoded field.
func (p *ParsedMrz) FieldValue(name FieldName) (MrzField, string, bool) {
	if p == nil {
		return MrzField{}, "", false
	}
	f, ok := p.Fields[name]
	if !ok || f.Value == nil || *f.Value == "" {
		return MrzField{}, "", false
	}
	return f, *f.Value, true
}

// ChecksumFields splits the checksum-bearing fields into all checked names
// and those whose check digit failed, in MrzFieldOrder.
func (p *ParsedMrz) ChecksumFields() (checked, failed []string) {
	if p == nil {
		return nil, nil
	}
	for _, name := range MrzFieldOrder {
		f, ok := p.Fields[name]
		if !ok || f.ChecksumValid == nil {
			continue
		}
		checked = append(checked, string(name))
		if !*f.ChecksumValid {
			failed = append(failed, string(name))
		}
	}
	return checked, failed
}
