package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"docverify/internal/document/models"
)

type EvaluatorSuite struct {
	suite.Suite
	now       time.Time
	applicant models.Applicant
	policy    Policy
	documents []models.DocumentAnalysis
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.now = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	s.applicant = models.Applicant{
		FullName:       "Anna Maria Eriksson",
		DateOfBirth:    "1990-01-01",
		PassportNumber: "L898902C",
		Nationality:    "UTO",
		VisaType:       "tourist",
	}
	s.policy = DefaultPolicy()
	s.documents = []models.DocumentAnalysis{document("passport", "2030-01-01")}
}

func document(detectedType, expiry string) models.DocumentAnalysis {
	doc := models.DocumentAnalysis{Fields: models.FieldMap{}}
	if detectedType != "" {
		doc.DetectedType = &detectedType
	}
	doc.Fields.Set(models.FieldExpiryDate, expiry, 95, models.SourceMRZ)
	return doc
}

func (s *EvaluatorSuite) evaluate() Result {
	return Evaluate(Input{Applicant: s.applicant, Documents: s.documents, Policy: s.policy, Now: s.now})
}

func (s *EvaluatorSuite) TestAllRulesPass() {
	got := s.evaluate()

	s.Equal(DecisionEligible, got.Decision)
	s.Equal(75, got.Score)
	s.NotNil(got.Reasons)
	s.Empty(got.Reasons)
	s.Equal([]string{"age_band_ok", "nationality_allowed", "visa_rule_tourist", "required_documents_present"}, got.MatchedRules)
}

func (s *EvaluatorSuite) TestUnderageApplicant() {
	s.applicant.DateOfBirth = "2010-01-01"

	got := s.evaluate()

	s.Equal(DecisionIneligible, got.Decision)
	s.Equal(45, got.Score)
	s.Equal([]string{"Applicant younger than required minimum age of 18"}, got.Reasons)
	s.NotContains(got.MatchedRules, RuleAgeBandOK)
	s.Contains(got.MatchedRules, "visa_rule_tourist")
}

func (s *EvaluatorSuite) TestApplicantOverMaximumAge() {
	s.applicant.DateOfBirth = "1940-01-01"

	got := s.evaluate()

	s.Equal(DecisionIneligible, got.Decision)
	s.Equal(45, got.Score)
	s.Equal([]string{"Applicant exceeds maximum age of 75"}, got.Reasons)
}

func (s *EvaluatorSuite) TestUnknownVisaTypeGoesToReview() {
	s.applicant.VisaType = "diplomatic"

	got := s.evaluate()

	s.Equal(DecisionReview, got.Decision)
	s.Equal(65, got.Score)
	s.Equal([]string{"No configured policy for visa type diplomatic"}, got.Reasons)
	s.Equal([]string{"age_band_ok", "nationality_allowed", "required_documents_present"}, got.MatchedRules)
}

func (s *EvaluatorSuite) TestUnknownVisaTypeNeverDowngradesIneligible() {
	s.applicant.DateOfBirth = "2010-01-01"
	s.applicant.VisaType = "diplomatic"

	got := s.evaluate()

	s.Equal(DecisionIneligible, got.Decision)
	s.Equal(35, got.Score)
	s.Equal([]string{
		"Applicant younger than required minimum age of 18",
		"No configured policy for visa type diplomatic",
	}, got.Reasons)
}

func (s *EvaluatorSuite) TestNoDocuments() {
	s.documents = nil

	got := s.evaluate()

	s.Equal(DecisionIneligible, got.Decision)
	s.Equal(50, got.Score)
	s.Equal([]string{"Missing required document types: passport"}, got.Reasons)
	s.NotContains(got.MatchedRules, RuleRequiredDocumentsPresent)
}

func (s *EvaluatorSuite) TestPassportValidity() {
	s.Run("short validity on the first document fails", func() {
		s.documents = []models.DocumentAnalysis{document("passport", "2026-06-01")}
		got := s.evaluate()
		s.Equal(DecisionIneligible, got.Decision)
		s.Equal(50, got.Score)
		s.Equal([]string{"Passport validity below required minimum of 6 months"}, got.Reasons)
	})

	s.Run("exactly the minimum passes", func() {
		s.documents = []models.DocumentAnalysis{document("passport", "2026-09-01")}
		got := s.evaluate()
		s.Equal(DecisionEligible, got.Decision)
	})

	s.Run("only the first document is consulted", func() {
		s.documents = []models.DocumentAnalysis{
			document("visa", ""),
			document("passport", "2026-04-01"),
		}
		got := s.evaluate()
		s.Equal(DecisionEligible, got.Decision)
		s.Equal(75, got.Score)
	})

	s.Run("unparsable expiry is ignored", func() {
		s.documents = []models.DocumentAnalysis{document("passport", "23/06/2026")}
		got := s.evaluate()
		s.Equal(DecisionEligible, got.Decision)
	})
}

func (s *EvaluatorSuite) TestProhibitedNationality() {
	s.policy.ProhibitedNationalities = []string{"xxa"}
	s.applicant.Nationality = "XXA"

	got := s.evaluate()

	s.Equal(DecisionIneligible, got.Decision)
	s.Equal(35, got.Score)
	s.Equal([]string{"Nationality XXA is not eligible"}, got.Reasons)
	s.NotContains(got.MatchedRules, RuleNationalityAllowed)
}

func (s *EvaluatorSuite) TestVisaRuleMinimumAge() {
	s.applicant.DateOfBirth = "2006-06-01"
	s.applicant.VisaType = "Business"

	got := s.evaluate()

	s.Equal(DecisionIneligible, got.Decision)
	s.Equal(50, got.Score)
	s.Equal([]string{"Applicant does not meet minimum age 21 for visa type Business"}, got.Reasons)
	s.Contains(got.MatchedRules, "visa_rule_business")
	s.Contains(got.MatchedRules, RuleAgeBandOK)
}

func (s *EvaluatorSuite) TestUnparsableDateOfBirthSkipsAgeRules() {
	s.applicant.DateOfBirth = "unknown"
	s.applicant.VisaType = "business"

	got := s.evaluate()

	s.Equal(DecisionEligible, got.Decision)
	s.Equal(75, got.Score)
	s.Equal([]string{"nationality_allowed", "visa_rule_business", "required_documents_present"}, got.MatchedRules)
}

func (s *EvaluatorSuite) TestFreeFormDateOfBirth() {
	s.applicant.DateOfBirth = "06/08/2012"

	got := s.evaluate()

	s.Equal([]string{"Applicant younger than required minimum age of 18"}, got.Reasons)
}

func (s *EvaluatorSuite) TestRequiredDocumentTypes() {
	s.Run("matching is case insensitive across the batch", func() {
		s.policy.RequireDocumentTypes = []string{"Passport", "VISA"}
		s.documents = []models.DocumentAnalysis{document("passport", "2030-01-01"), document("visa", "")}
		got := s.evaluate()
		s.Equal(DecisionEligible, got.Decision)
		s.Contains(got.MatchedRules, RuleRequiredDocumentsPresent)
	})

	s.Run("missing types keep the policy spelling", func() {
		s.policy.RequireDocumentTypes = []string{"Passport", "residence_permit", "Bank_Statement"}
		s.documents = []models.DocumentAnalysis{document("passport", "2030-01-01"), document("", "")}
		got := s.evaluate()
		s.Equal([]string{"Missing required document types: residence_permit, Bank_Statement"}, got.Reasons)
	})

	s.Run("no required types always passes", func() {
		s.policy.RequireDocumentTypes = []string{}
		s.documents = nil
		got := s.evaluate()
		s.Equal(DecisionEligible, got.Decision)
		s.Contains(got.MatchedRules, RuleRequiredDocumentsPresent)
	})
}

func (s *EvaluatorSuite) TestScoreIsClamped() {
	s.applicant.DateOfBirth = "2016-01-01"
	s.applicant.Nationality = "XXA"
	s.applicant.VisaType = "business"
	s.policy.ProhibitedNationalities = []string{"XXA"}
	s.documents = []models.DocumentAnalysis{document("visa", "2026-04-01")}

	got := s.evaluate()

	s.Equal(DecisionIneligible, got.Decision)
	s.Equal(0, got.Score)
	s.Len(got.Reasons, 5)
	s.Equal([]string{"visa_rule_business"}, got.MatchedRules)
}
