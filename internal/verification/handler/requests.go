package handler

import (
	"fmt"
	"strings"

	"docverify/internal/document/models"
	dErrors "docverify/pkg/domain-errors"
)

// ApplicantRequest is the declared identity sent alongside the uploads.
type ApplicantRequest struct {
	FullName       string `json:"fullName"`
	DateOfBirth    string `json:"dateOfBirth"`
	PassportNumber string `json:"passportNumber"`
	Nationality    string `json:"nationality"`
	VisaType       string `json:"visaType"`
}

// Sanitize trims surrounding whitespace from every field.
func (r *ApplicantRequest) Sanitize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.PassportNumber = strings.TrimSpace(r.PassportNumber)
	r.Nationality = strings.TrimSpace(r.Nationality)
	r.VisaType = strings.TrimSpace(r.VisaType)
}

// Validate enforces minimum lengths only; content is checked against the
// documents later.
func (r *ApplicantRequest) Validate() error {
	checks := []struct {
		field string
		value string
		min   int
	}{
		{"fullName", r.FullName, 2},
		{"dateOfBirth", r.DateOfBirth, 1},
		{"passportNumber", r.PassportNumber, 3},
		{"nationality", r.Nationality, 2},
		{"visaType", r.VisaType, 2},
	}
	for _, c := range checks {
		if len([]rune(c.value)) < c.min {
			if c.min == 1 {
				return dErrors.New(dErrors.CodeValidation, c.field+" is required")
			}
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be at least %d characters", c.field, c.min))
		}
	}
	return nil
}

// ToModel converts a sanitized request into the domain applicant.
func (r *ApplicantRequest) ToModel() models.Applicant {
	return models.Applicant{
		FullName:       r.FullName,
		DateOfBirth:    r.DateOfBirth,
		PassportNumber: r.PassportNumber,
		Nationality:    r.Nationality,
		VisaType:       r.VisaType,
	}
}

// DecodeMrzRequest carries OCR text to scan for a machine-readable zone.
type DecodeMrzRequest struct {
	Text string `json:"text"`
}
