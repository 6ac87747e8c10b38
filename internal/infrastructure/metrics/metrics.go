// Package metrics defines and registers all custom Prometheus metrics for the
// loan analysis API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the router on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "loan_analysis"

// ── Analysis metrics ──────────────────────────────────────────────────────────

// AnalysesTotal counts finished analysis requests.
// Labels:
//   - outcome: "explained", "scoring_failed" or "explanation_failed"
//   - decision: "eligible", "ineligible", or "" when scoring failed
var AnalysesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Total number of analysis requests, by outcome and decision.",
	},
	[]string{"outcome", "decision"},
)

// AnalysisDuration measures score -> compose -> explain end to end.
var AnalysisDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Duration of an analysis from scoring request to explanation.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
	},
	[]string{"outcome"},
)

// ValidationErrorsTotal counts rejected request payloads.
// Label:
//   - field: JSON name of the offending field
var ValidationErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_errors_total",
		Help:      "Total number of rejected applicant payloads, by field.",
	},
	[]string{"field"},
)

// PercentIncomeOutOfRangeTotal counts accepted records whose
// loan_percent_income exceeds 100.
var PercentIncomeOutOfRangeTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loan_percent_income_out_of_range_total",
		Help:      "Applicant records accepted with loan_percent_income above 100.",
	},
)

// ── Collaborator metrics ──────────────────────────────────────────────────────

// ScoringProbabilityOutOfRangeTotal counts probabilities outside [0, 1]
// returned by the scoring service. They are passed on unchanged.
// Label:
//   - field: "prob_eligible" or "prob_not_eligible"
var ScoringProbabilityOutOfRangeTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scoring_probability_out_of_range_total",
		Help:      "Scoring probabilities received outside the 0-1 range.",
	},
	[]string{"field"},
)

// ScoringRequestsTotal counts calls to the scoring service.
// Label:
//   - result: "ok", "defaulted", "unreachable", "unexpected_status" or "malformed_response"
var ScoringRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scoring_requests_total",
		Help:      "Total number of scoring service calls, by result.",
	},
	[]string{"result"},
)

// ScoringDuration measures a single scoring round-trip.
var ScoringDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scoring_duration_seconds",
		Help:      "Duration of scoring service calls.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ExplanationRequestsTotal counts calls to the LLM.
// Label:
//   - result: "ok", "unreachable", "quota_exceeded", "empty_response" or "provider_error"
var ExplanationRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "explanation_requests_total",
		Help:      "Total number of LLM explanation calls, by result.",
	},
	[]string{"result"},
)

// ExplanationDuration measures a single LLM round-trip.
var ExplanationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "explanation_duration_seconds",
		Help:      "Duration of LLM explanation calls.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
	},
)

// ── Infrastructure metrics ────────────────────────────────────────────────────

// AuditQueueDepth tracks audit records waiting to be persisted.
var AuditQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit records pending persistence.",
	},
)

// AuditRecordsTotal counts audit records by result.
// Label:
//   - result: "stored", "failed" or "dropped" (queue full)
var AuditRecordsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_records_total",
		Help:      "Total number of analysis audit records, by result.",
	},
	[]string{"result"},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429.",
	},
)
