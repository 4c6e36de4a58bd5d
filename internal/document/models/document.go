package models

// Status is the outcome of a single validation check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// ValidationResult records one check against a document or the batch.
type ValidationResult struct {
	ID            string   `json:"id"`
	Status        Status   `json:"status"`
	Message       string   `json:"message"`
	Confidence    int      `json:"confidence"`
	RelatedFields []string `json:"relatedFields,omitempty"`
}

// Applicant is the declared identity the documents are checked against.
type Applicant struct {
	FullName       string `json:"fullName"`
	DateOfBirth    string `json:"dateOfBirth"`
	PassportNumber string `json:"passportNumber"`
	Nationality    string `json:"nationality"`
	VisaType       string `json:"visaType"`
}

// DocumentAnalysis is the assembled result for one uploaded document.
type DocumentAnalysis struct {
	Index             int                `json:"index"`
	DetectedType      *string            `json:"detectedType"`
	RawText           string             `json:"rawText"`
	OCRConfidence     int                `json:"ocrConfidence"`
	Fields            FieldMap           `json:"fields"`
	Mrz               *ParsedMrz         `json:"mrz"`
	Validations       []ValidationResult `json:"validations"`
	OverallConfidence int                `json:"overallConfidence"`
}

// HasFailure reports whether any validation on the document failed.
func (d DocumentAnalysis) HasFailure() bool {
	for _, v := range d.Validations {
		if v.Status == StatusFail {
			return true
		}
	}
	return false
}
