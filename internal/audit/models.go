package audit

import "time"

// EventName identifies what happened.
type EventName string

const (
	EventVerificationCompleted EventName = "verification.completed"
)

// Event is emitted after a verification completes. It carries outcome and
// counts only; applicant identity and document content never leave the
// request.
type Event struct {
	Name              EventName `json:"event"`
	Timestamp         time.Time `json:"timestamp"`
	VerificationID    string    `json:"verificationId"`
	RequestID         string    `json:"requestId,omitempty"`
	Decision          string    `json:"decision"`
	Score             int       `json:"score"`
	DocumentCount     int       `json:"documentCount"`
	OverallConfidence int       `json:"overallConfidence"`
}
