package domain

import "time"

// Decision is the eligibility outcome derived from a probability pair.
type Decision string

const (
	DecisionEligible   Decision = "eligible"
	DecisionIneligible Decision = "ineligible"
)

// Probabilities is a successful scoring outcome. The pair is not assumed to
// sum to 1. MissingFields lists response keys that were absent and defaulted
// to 0.
type Probabilities struct {
	Eligible      float64
	Ineligible    float64
	MissingFields []string
}

// Decision applies the eligibility rule; ties favour eligibility.
func (p Probabilities) Decision() Decision {
	if p.Eligible >= p.Ineligible {
		return DecisionEligible
	}
	return DecisionIneligible
}

// Defaulted reports whether any probability was substituted with 0.
func (p Probabilities) Defaulted() bool { return len(p.MissingFields) > 0 }

// Analysis outcomes recorded in the audit trail and metrics.
const (
	OutcomeExplained         = "explained"
	OutcomeScoringFailed     = "scoring_failed"
	OutcomeExplanationFailed = "explanation_failed"
)

// AnalysisAudit is the non-identifying trace of one analysis request.
type AnalysisAudit struct {
	ID             string
	RequestID      string
	Outcome        string
	Decision       Decision
	ProbEligible   float64
	ProbIneligible float64
	MissingFields  []string
	FailureReason  string
	Duration       time.Duration
	CreatedAt      time.Time
}
