package eligibility

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "docverify/pkg/domain-errors"
)

type PolicySuite struct {
	suite.Suite
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicySuite))
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func (s *PolicySuite) TestSanitizeNilReturnsDefaults() {
	got := Sanitize(nil, DefaultPolicy())
	s.Equal(DefaultPolicy(), got)

	got.RequireDocumentTypes[0] = "visa"
	got.VisaTypeRules["tourist"] = VisaRule{MinAge: 99}
	s.Equal([]string{"passport"}, DefaultPolicy().RequireDocumentTypes)
	s.Equal(0, DefaultPolicy().VisaTypeRules["tourist"].MinAge)
}

func (s *PolicySuite) TestSanitizeFillsAbsentFields() {
	got := Sanitize(&PolicyInput{MinApplicantAge: intPtr(21)}, DefaultPolicy())

	s.Equal(21, got.MinApplicantAge)
	s.Equal(6, got.MinPassportValidityMonths)
	s.Equal(75, got.MaxApplicantAge)
	s.Empty(got.ProhibitedNationalities)
	s.Equal([]string{"passport"}, got.RequireDocumentTypes)
	s.Equal(DefaultPolicy().VisaTypeRules, got.VisaTypeRules)
}

func (s *PolicySuite) TestSanitizeZeroValuesAreKept() {
	got := Sanitize(&PolicyInput{
		MinPassportValidityMonths: intPtr(0),
		MinApplicantAge:           intPtr(0),
		RequireDocumentTypes:      []string{},
	}, DefaultPolicy())

	s.Equal(0, got.MinPassportValidityMonths)
	s.Equal(0, got.MinApplicantAge)
	s.NotNil(got.RequireDocumentTypes)
	s.Empty(got.RequireDocumentTypes)
}

func (s *PolicySuite) TestSanitizeVisaRulesReplaceDefaults() {
	got := Sanitize(&PolicyInput{
		MinApplicantAge: intPtr(30),
		VisaTypeRules: map[string]VisaRuleInput{
			"Student": {Notes: strPtr("Enrollment letter required")},
			"work":    {MinAge: intPtr(25), MaxStayDays: intPtr(730)},
		},
	}, DefaultPolicy())

	s.Equal(map[string]VisaRule{
		// Missing minAge falls back to the default minimum, not the supplied one.
		"student": {MinAge: 18, MaxStayDays: 90, Notes: "Enrollment letter required"},
		"work":    {MinAge: 25, MaxStayDays: 730},
	}, got.VisaTypeRules)
}

func (s *PolicySuite) TestSanitizeEmptyVisaRulesKeepDefaults() {
	got := Sanitize(&PolicyInput{VisaTypeRules: map[string]VisaRuleInput{}}, DefaultPolicy())
	s.Equal(DefaultPolicy().VisaTypeRules, got.VisaTypeRules)
}

func (s *PolicySuite) TestSanitizeDeduplicatesLists() {
	got := Sanitize(&PolicyInput{
		ProhibitedNationalities: []string{"XXA", " xxa", "", "YYB"},
		RequireDocumentTypes:    []string{"passport", " PASSPORT ", "visa"},
	}, DefaultPolicy())

	s.Equal([]string{"XXA", "YYB"}, got.ProhibitedNationalities)
	s.Equal([]string{"passport", "visa"}, got.RequireDocumentTypes)
}

func (s *PolicySuite) TestSanitizeAgainstCustomDefaults() {
	base := DefaultPolicy()
	base.ProhibitedNationalities = []string{"XXA"}
	base.MinApplicantAge = 16

	got := Sanitize(&PolicyInput{VisaTypeRules: map[string]VisaRuleInput{"student": {}}}, base)

	s.Equal([]string{"XXA"}, got.ProhibitedNationalities)
	s.Equal(16, got.VisaTypeRules["student"].MinAge)
}

func (s *PolicySuite) TestValidate() {
	valid := []*PolicyInput{
		nil,
		{},
		{MinPassportValidityMonths: intPtr(0), MinApplicantAge: intPtr(120), MaxApplicantAge: intPtr(75)},
		{VisaTypeRules: map[string]VisaRuleInput{"work": {MinAge: intPtr(21), MaxStayDays: intPtr(0)}}},
	}
	for _, in := range valid {
		s.NoError(in.Validate())
	}

	invalid := map[string]*PolicyInput{
		"minApplicantAge must be between 0 and 120":              {MinApplicantAge: intPtr(121)},
		"maxApplicantAge must be between 0 and 120":              {MaxApplicantAge: intPtr(-1)},
		"minPassportValidityMonths must be between 0 and 120":    {MinPassportValidityMonths: intPtr(200)},
		"visaTypeRules.work.minAge must be between 0 and 120":    {VisaTypeRules: map[string]VisaRuleInput{"work": {MinAge: intPtr(-5)}}},
		"visaTypeRules.tourist.maxStayDays must not be negative": {VisaTypeRules: map[string]VisaRuleInput{"tourist": {MaxStayDays: intPtr(-1)}}},
	}
	for msg, in := range invalid {
		err := in.Validate()
		s.Require().Error(err, msg)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), msg)
		s.Equal(msg, err.Error())
	}
}

func (s *PolicySuite) TestLoadDefaults() {
	s.Run("empty path", func() {
		got, err := LoadDefaults("")
		s.Require().NoError(err)
		s.Equal(DefaultPolicy(), got)
	})

	s.Run("missing file", func() {
		got, err := LoadDefaults(filepath.Join(s.T().TempDir(), "absent.yaml"))
		s.Require().NoError(err)
		s.Equal(DefaultPolicy(), got)
	})

	s.Run("overlay", func() {
		path := s.writeFile(`
min_passport_validity_months: 3
prohibited_nationalities: [XXA]
visa_type_rules:
  student:
    min_age: 16
    max_stay_days: 365
    notes: Enrollment letter required
`)
		got, err := LoadDefaults(path)
		s.Require().NoError(err)
		s.Equal(3, got.MinPassportValidityMonths)
		s.Equal(18, got.MinApplicantAge)
		s.Equal([]string{"XXA"}, got.ProhibitedNationalities)
		s.Equal([]string{"passport"}, got.RequireDocumentTypes)
		s.Equal(map[string]VisaRule{
			"student": {MinAge: 16, MaxStayDays: 365, Notes: "Enrollment letter required"},
		}, got.VisaTypeRules)
	})

	s.Run("malformed yaml", func() {
		_, err := LoadDefaults(s.writeFile("min_applicant_age: ["))
		s.Error(err)
	})

	s.Run("out of range value", func() {
		_, err := LoadDefaults(s.writeFile("max_applicant_age: 500"))
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *PolicySuite) writeFile(body string) string {
	s.T().Helper()
	path := filepath.Join(s.T().TempDir(), "policy.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(body), 0o600))
	return path
}
