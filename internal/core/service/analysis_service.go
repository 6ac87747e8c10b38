package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/loanlens/analysis-api/internal/core/domain"
	"github.com/loanlens/analysis-api/internal/core/ports"
	"github.com/loanlens/analysis-api/internal/infrastructure/metrics"
)

type analysisService struct {
	scorer    ports.Scorer
	composer  ports.PromptComposer
	explainer ports.Explainer
	audit     ports.AuditSink
	log       zerolog.Logger
	now       func() time.Time
}

// NewAnalysisService returns an AnalysisService implementation. audit may be
// nil, in which case no audit trail is kept.
func NewAnalysisService(
	scorer ports.Scorer,
	composer ports.PromptComposer,
	explainer ports.Explainer,
	audit ports.AuditSink,
	log zerolog.Logger,
) ports.AnalysisService {
	return &analysisService{
		scorer:    scorer,
		composer:  composer,
		explainer: explainer,
		audit:     audit,
		log:       log,
		now:       time.Now,
	}
}

// Analyse scores the applicant, renders the prompt and asks the LLM for an
// explanation. The two remote calls run strictly in sequence; a scoring
// failure ends the analysis before any prompt is rendered.
func (s *analysisService) Analyse(ctx context.Context, in ports.AnalyseInput) (*ports.AnalysisResult, error) {
	start := s.now()
	log := s.log.With().Str("request_id", in.RequestID).Logger()

	if in.Record.LoanPercentIncomeOutOfRange() {
		metrics.PercentIncomeOutOfRangeTotal.Inc()
		log.Warn().
			Float64("loan_percent_income", in.Record.LoanPercentIncome()).
			Msg("loan_percent_income_out_of_range")
	}

	// 1. Score.
	probs, err := s.scorer.Score(ctx, in.Record)
	if err != nil {
		log.Error().Err(err).Msg("scoring failed")
		s.finish(in.RequestID, start, domain.OutcomeScoringFailed, "", domain.Probabilities{}, failureReason(err))
		return nil, err
	}
	if probs.Defaulted() {
		log.Warn().Strs("missing_fields", probs.MissingFields).Msg("scoring response missing probabilities, defaulted to 0")
	}
	decision := probs.Decision()

	// 2. Compose.
	prompt := s.composer.Compose(in.Record, probs)

	// 3. Explain.
	text, err := s.explainer.Explain(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("decision", string(decision)).Msg("explanation failed")
		s.finish(in.RequestID, start, domain.OutcomeExplanationFailed, decision, probs, failureReason(err))
		return nil, err
	}

	s.finish(in.RequestID, start, domain.OutcomeExplained, decision, probs, "")
	log.Info().
		Str("decision", string(decision)).
		Float64("prob_eligible", probs.Eligible).
		Float64("prob_ineligible", probs.Ineligible).
		Msg("analysis completed")

	return &ports.AnalysisResult{
		Message:       text,
		Decision:      decision,
		Probabilities: probs,
	}, nil
}

func (s *analysisService) finish(requestID string, start time.Time, outcome string, decision domain.Decision, probs domain.Probabilities, reason string) {
	elapsed := s.now().Sub(start)
	metrics.AnalysesTotal.WithLabelValues(outcome, string(decision)).Inc()
	metrics.AnalysisDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AnalysisAudit{
		ID:             uuid.NewString(),
		RequestID:      requestID,
		Outcome:        outcome,
		Decision:       decision,
		ProbEligible:   probs.Eligible,
		ProbIneligible: probs.Ineligible,
		MissingFields:  probs.MissingFields,
		FailureReason:  reason,
		Duration:       elapsed,
		CreatedAt:      start.UTC(),
	})
}

func failureReason(err error) string {
	var se *domain.ScoringError
	if errors.As(err, &se) {
		return se.Reason
	}
	var ee *domain.ExplanationError
	if errors.As(err, &ee) {
		return ee.Reason
	}
	return "unknown"
}
