package extract

import "strings"

// Detected document types.
const (
	TypePassport       = "passport"
	TypeDrivingLicence = "driving_licence"
	TypeNationalID     = "national_id"
	TypeVisa           = "visa"
	TypePermit         = "permit"
)

type typeKeywords struct {
	docType  string
	keywords []string
}

// keywordPriority is scanned in order; the first keyword found wins.
var keywordPriority = []typeKeywords{
	{TypePassport, []string{"PASSPORT"}},
	{TypeDrivingLicence, []string{"DRIVING LICENCE", "DRIVER"}},
	{TypeNationalID, []string{"IDENTITY CARD", "NATIONAL ID"}},
	{TypeVisa, []string{"VISA"}},
	{TypePermit, []string{"PERMIT"}},
}

// DetectType scans text case-insensitively for document type keywords.
func DetectType(text string) (string, bool) {
	upper := strings.ToUpper(text)
	for _, entry := range keywordPriority {
		for _, kw := range entry.keywords {
			if strings.Contains(upper, kw) {
				return entry.docType, true
			}
		}
	}
	return "", false
}

// TypeFromMrzCode maps the ICAO document code of an MRZ to a detected type.
func TypeFromMrzCode(code string) (string, bool) {
	if code == "" {
		return "", false
	}
	switch code[0] {
	case 'P':
		return TypePassport, true
	case 'V':
		return TypeVisa, true
	case 'I', 'A', 'C':
		return TypeNationalID, true
	default:
		return "", false
	}
}
