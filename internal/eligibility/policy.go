// Package eligibility holds the visa eligibility policy, its sanitization
// from partial caller input, and the deterministic decision evaluator.
package eligibility

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	dErrors "docverify/pkg/domain-errors"
	pstrings "docverify/pkg/platform/strings"
)

const (
	maxPolicyYears     = 120
	defaultMaxStayDays = 90
)

// VisaRule constrains applicants for one visa type.
type VisaRule struct {
	MinAge      int    `json:"minAge" yaml:"min_age"`
	MaxStayDays int    `json:"maxStayDays" yaml:"max_stay_days"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Policy is a fully populated eligibility policy. Values are read-only once
// built; use Clone before handing one to code that may modify it.
type Policy struct {
	MinPassportValidityMonths int                 `json:"minPassportValidityMonths"`
	MinApplicantAge           int                 `json:"minApplicantAge"`
	MaxApplicantAge           int                 `json:"maxApplicantAge"`
	ProhibitedNationalities   []string            `json:"prohibitedNationalities"`
	RequireDocumentTypes      []string            `json:"requireDocumentTypes"`
	VisaTypeRules             map[string]VisaRule `json:"visaTypeRules"`
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() Policy {
	return Policy{
		MinPassportValidityMonths: 6,
		MinApplicantAge:           18,
		MaxApplicantAge:           75,
		ProhibitedNationalities:   []string{},
		RequireDocumentTypes:      []string{"passport"},
		VisaTypeRules: map[string]VisaRule{
			"tourist": {
				MinAge:      0,
				MaxStayDays: 90,
				Notes:       "Standard tourist visa requirements",
			},
			"business": {
				MinAge:      21,
				MaxStayDays: 90,
				Notes:       "Business visits require invitation letter",
			},
			"work": {
				MinAge:      21,
				MaxStayDays: 365,
				Notes:       "Work visas require sponsorship documentation",
			},
		},
	}
}

// Clone returns a deep copy.
func (p Policy) Clone() Policy {
	out := p
	out.ProhibitedNationalities = slices.Clone(p.ProhibitedNationalities)
	out.RequireDocumentTypes = slices.Clone(p.RequireDocumentTypes)
	out.VisaTypeRules = maps.Clone(p.VisaTypeRules)
	return out
}

// VisaRuleInput is a partially specified visa rule.
type VisaRuleInput struct {
	MinAge      *int    `json:"minAge,omitempty" yaml:"min_age"`
	MaxStayDays *int    `json:"maxStayDays,omitempty" yaml:"max_stay_days"`
	Notes       *string `json:"notes,omitempty" yaml:"notes"`
}

// PolicyInput is a partially specified policy as supplied by callers, the
// profile store, or the defaults file. Nil fields fall back to defaults.
// A nil slice is absent; an empty slice is an explicit empty list.
type PolicyInput struct {
	MinPassportValidityMonths *int                     `json:"minPassportValidityMonths,omitempty" yaml:"min_passport_validity_months"`
	MinApplicantAge           *int                     `json:"minApplicantAge,omitempty" yaml:"min_applicant_age"`
	MaxApplicantAge           *int                     `json:"maxApplicantAge,omitempty" yaml:"max_applicant_age"`
	ProhibitedNationalities   []string                 `json:"prohibitedNationalities" yaml:"prohibited_nationalities"`
	RequireDocumentTypes      []string                 `json:"requireDocumentTypes" yaml:"require_document_types"`
	VisaTypeRules             map[string]VisaRuleInput `json:"visaTypeRules" yaml:"visa_type_rules"`
}

// Validate range-checks the values that are present.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (in *PolicyInput) Validate() error {
	if in == nil {
		return nil
	}
	years := map[string]*int{
		"minPassportValidityMonths": in.MinPassportValidityMonths,
		"minApplicantAge":           in.MinApplicantAge,
		"maxApplicantAge":           in.MaxApplicantAge,
	}
	for _, name := range slices.Sorted(maps.Keys(years)) {
		if v := years[name]; v != nil && (*v < 0 || *v > maxPolicyYears) {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be between 0 and %d", name, maxPolicyYears))
		}
	}
	for _, visaType := range slices.Sorted(maps.Keys(in.VisaTypeRules)) {
		rule := in.VisaTypeRules[visaType]
		if rule.MinAge != nil && (*rule.MinAge < 0 || *rule.MinAge > maxPolicyYears) {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("visaTypeRules.%s.minAge must be between 0 and %d", visaType, maxPolicyYears))
		}
		if rule.MaxStayDays != nil && *rule.MaxStayDays < 0 {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("visaTypeRules.%s.maxStayDays must not be negative", visaType))
		}
	}
	return nil
}

// Sanitize fills every absent field of in from defaults. Supplied lists are
// trimmed and deduplicated case-insensitively. A non-empty rule
// map replaces the default rules wholesale; within each supplied rule a
// missing minAge takes the default minimum applicant age and a missing
// maxStayDays takes 90. Rule keys are lowercased. A nil input yields a
// copy of defaults.
func Sanitize(in *PolicyInput, defaults Policy) Policy {
	out := defaults.Clone()
	if in == nil {
		return out
	}

	if in.MinPassportValidityMonths != nil {
		out.MinPassportValidityMonths = *in.MinPassportValidityMonths
	}
	if in.MinApplicantAge != nil {
		out.MinApplicantAge = *in.MinApplicantAge
	}
	if in.MaxApplicantAge != nil {
		out.MaxApplicantAge = *in.MaxApplicantAge
	}
	if in.ProhibitedNationalities != nil {
		out.ProhibitedNationalities = slices.Clone(pstrings.DedupeFold(in.ProhibitedNationalities))
	}
	if in.RequireDocumentTypes != nil {
		out.RequireDocumentTypes = slices.Clone(pstrings.DedupeFold(in.RequireDocumentTypes))
	}

	if len(in.VisaTypeRules) > 0 {
		out.VisaTypeRules = make(map[string]VisaRule, len(in.VisaTypeRules))
		for visaType, rule := range in.VisaTypeRules {
			sanitized := VisaRule{
				MinAge:      defaults.MinApplicantAge,
				MaxStayDays: defaultMaxStayDays,
			}
			if rule.MinAge != nil {
				sanitized.MinAge = *rule.MinAge
			}
			if rule.MaxStayDays != nil {
				sanitized.MaxStayDays = *rule.MaxStayDays
			}
			if rule.Notes != nil {
				sanitized.Notes = *rule.Notes
			}
			out.VisaTypeRules[strings.ToLower(visaType)] = sanitized
		}
	}

	return out
}
