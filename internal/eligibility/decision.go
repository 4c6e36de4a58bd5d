package eligibility

// Decision is the eligibility outcome. Decisions are ordered by severity:
// Eligible < Review < Ineligible.
type Decision string

const (
	DecisionEligible   Decision = "eligible"
	DecisionReview     Decision = "review"
	DecisionIneligible Decision = "ineligible"
)

func (d Decision) severity() int {
	switch d {
	case DecisionEligible:
		return 0
	case DecisionReview:
		return 1
	case DecisionIneligible:
		return 2
	default:
		return -1
	}
}

// Escalate returns the more severe of current and proposed. An evaluation
// that has reached Ineligible can never move back to Review or Eligible.
func Escalate(current, proposed Decision) Decision {
	if proposed.severity() > current.severity() {
		return proposed
	}
	return current
}
