package verification

import (
	"docverify/internal/document/models"
	"docverify/internal/eligibility"
)

// Priority ranks a recommended action.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Recommended actions.
const (
	ActionEscalate = "Escalate for manual review"
	ActionResubmit = "Request resubmission of unclear or inconsistent documents"
	ActionProceed  = "Proceed with visa application submission"
)

// RecommendedAction is a next step for the caseworker.
type RecommendedAction struct {
	Action   string   `json:"action"`
	Priority Priority `json:"priority"`
}

// Request is one verification: the uploaded documents in submission order,
// the declared applicant and the sanitized policy to score against.
type Request struct {
	Documents [][]byte
	Applicant models.Applicant
	Policy    eligibility.Policy
}

// Response is the structurally complete verification report.
type Response struct {
	VerificationID     string                    `json:"verificationId"`
	Summary            string                    `json:"summary"`
	OverallConfidence  int                       `json:"overallConfidence"`
	Applicant          models.Applicant          `json:"applicant"`
	Documents          []models.DocumentAnalysis `json:"documents"`
	Eligibility        eligibility.Result        `json:"eligibility"`
	Validations        []models.ValidationResult `json:"validations"`
	RecommendedActions []RecommendedAction       `json:"recommendedActions"`
}
