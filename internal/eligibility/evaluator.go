package eligibility

import (
	"fmt"
	"strings"
	"time"

	"docverify/internal/document/models"
	"docverify/pkg/confidence"
	"docverify/pkg/dates"
	pstrings "docverify/pkg/platform/strings"
)

// Matched rule identifiers reported in Result.MatchedRules.
const (
	RuleAgeBandOK                = "age_band_ok"
	RuleNationalityAllowed       = "nationality_allowed"
	RuleRequiredDocumentsPresent = "required_documents_present"
	ruleVisaPrefix               = "visa_rule_"
)

const (
	baselineScore           = 75
	penaltyPassportValidity = 25
	penaltyAgeBand          = 30
	penaltyNationality      = 40
	penaltyVisaMinAge       = 25
	penaltyUnknownVisaType  = 10
	penaltyMissingDocuments = 25
)

// Result is the eligibility outcome with its audit trail. Reasons lists the
// rules that failed or need attention; MatchedRules lists the rules that
// passed. Both are populated whatever the decision.
type Result struct {
	Decision     Decision `json:"decision"`
	Score        int      `json:"score"`
	Reasons      []string `json:"reasons"`
	MatchedRules []string `json:"matchedRules"`
}

// Input is everything the evaluator looks at.
type Input struct {
	Applicant models.Applicant
	Documents []models.DocumentAnalysis
	Policy    Policy
	Now       time.Time
}

type evaluation struct {
	Input
	age    int
	hasAge bool
	result Result
}

func (e *evaluation) fail(reason string, penalty int, decision Decision) {
	e.result.Reasons = append(e.result.Reasons, reason)
	e.result.Score -= penalty
	e.result.Decision = Escalate(e.result.Decision, decision)
}

func (e *evaluation) match(rule string) {
	e.result.MatchedRules = append(e.result.MatchedRules, rule)
}

type rule func(e *evaluation)

// rules are independent; severity only escalates, so order affects only the
// order of reasons and matched rules in the result.
var rules = []rule{
	passportValidity,
	ageBand,
	nationality,
	visaType,
	requiredDocuments,
}

// Evaluate scores the applicant and document batch against the policy.
// Evaluation starts at 75 and eligible; every failed rule subtracts its
// penalty and escalates the decision. The final score is clamped to [0,100].
func Evaluate(in Input) Result {
	e := &evaluation{
		Input: in,
		result: Result{
			Decision:     DecisionEligible,
			Score:        baselineScore,
			Reasons:      []string{},
			MatchedRules: []string{},
		},
	}
	// Declared birth dates are free-form; normalize before computing age.
	if dob, ok := dates.Parse(in.Applicant.DateOfBirth, in.Now); ok {
		e.age, e.hasAge = dates.Age(dob, in.Now)
	}

	for _, r := range rules {
		r(e)
	}

	e.result.Score = confidence.Clamp(e.result.Score)
	return e.result
}

// Rule 1: the first document's expiry must leave enough validity.
func passportValidity(e *evaluation) {
	if len(e.Documents) == 0 {
		return
	}
	expiry := e.Documents[0].Fields.Value(models.FieldExpiryDate)
	if expiry == "" {
		return
	}
	months, ok := dates.MonthsUntil(expiry, e.Now)
	if !ok || months >= e.Policy.MinPassportValidityMonths {
		return
	}
	e.fail(
		fmt.Sprintf("Passport validity below required minimum of %d months", e.Policy.MinPassportValidityMonths),
		penaltyPassportValidity, DecisionIneligible,
	)
}

// Rule 2: the applicant's age must sit inside the policy band.
func ageBand(e *evaluation) {
	if !e.hasAge {
		return
	}
	switch {
	case e.age < e.Policy.MinApplicantAge:
		e.fail(fmt.Sprintf("Applicant younger than required minimum age of %d", e.Policy.MinApplicantAge), penaltyAgeBand, DecisionIneligible)
	case e.age > e.Policy.MaxApplicantAge:
		e.fail(fmt.Sprintf("Applicant exceeds maximum age of %d", e.Policy.MaxApplicantAge), penaltyAgeBand, DecisionIneligible)
	default:
		e.match(RuleAgeBandOK)
	}
}

// Rule 3: prohibited nationalities are rejected.
func nationality(e *evaluation) {
	if pstrings.ContainsFold(e.Policy.ProhibitedNationalities, e.Applicant.Nationality) {
		e.fail(fmt.Sprintf("Nationality %s is not eligible", e.Applicant.Nationality), penaltyNationality, DecisionIneligible)
		return
	}
	e.match(RuleNationalityAllowed)
}

// Rule 4: the visa type needs a configured rule; unknown types go to review.
func visaType(e *evaluation) {
	key := strings.ToLower(e.Applicant.VisaType)
	visaRule, ok := e.Policy.VisaTypeRules[key]
	if !ok {
		e.fail(fmt.Sprintf("No configured policy for visa type %s", e.Applicant.VisaType), penaltyUnknownVisaType, DecisionReview)
		return
	}
	e.match(ruleVisaPrefix + key)
	if e.hasAge && e.age < visaRule.MinAge {
		e.fail(
			fmt.Sprintf("Applicant does not meet minimum age %d for visa type %s", visaRule.MinAge, e.Applicant.VisaType),
			penaltyVisaMinAge, DecisionIneligible,
		)
	}
}

// Rule 5: every required document type must be detected somewhere in the batch.
func requiredDocuments(e *evaluation) {
	var detected []string
	for _, doc := range e.Documents {
		if doc.DetectedType != nil && *doc.DetectedType != "" {
			detected = append(detected, *doc.DetectedType)
		}
	}

	var missing []string
	for _, required := range e.Policy.RequireDocumentTypes {
		if !pstrings.ContainsFold(detected, required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		e.fail(fmt.Sprintf("Missing required document types: %s", strings.Join(missing, ", ")), penaltyMissingDocuments, DecisionIneligible)
		return
	}
	e.match(RuleRequiredDocumentsPresent)
}
