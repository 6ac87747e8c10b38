package ports

import (
	"context"

	"github.com/loanlens/analysis-api/internal/core/domain"
)

// Scorer obtains an eligibility probability pair for an applicant.
// Failures are returned as *domain.ScoringError.
type Scorer interface {
	Score(ctx context.Context, record domain.ApplicantRecord) (domain.Probabilities, error)
}

// PromptComposer renders the LLM instruction text for a scored applicant.
type PromptComposer interface {
	Compose(record domain.ApplicantRecord, probs domain.Probabilities) string
}

// Explainer turns a rendered prompt into natural-language text.
// Failures are returned as *domain.ExplanationError.
type Explainer interface {
	Explain(ctx context.Context, prompt string) (string, error)
}

// AnalyseInput is the DTO passed from the transport layer to AnalysisService.
type AnalyseInput struct {
	RequestID string
	Record    domain.ApplicantRecord
}

// AnalysisResult is returned by a successful analysis.
type AnalysisResult struct {
	Message       string
	Decision      domain.Decision
	Probabilities domain.Probabilities
}

// AnalysisService runs score -> compose -> explain for one applicant.
type AnalysisService interface {
	Analyse(ctx context.Context, in AnalyseInput) (*AnalysisResult, error)
}
