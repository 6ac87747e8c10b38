// Package scoring calls the external loan scoring service.
//
// Request:  POST <endpoint> with the applicant's numeric and categorical fields.
// Response: {"prob_eligible": <number>, "prob_not_eligible": <number>}
//
// The legacy keys "prob of eligible" / "prob of not eligible" are read when the
// canonical keys are absent. A missing probability defaults to 0.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/loanlens/analysis-api/internal/core/domain"
	"github.com/loanlens/analysis-api/internal/infrastructure/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20

	KeyEligible         = "prob_eligible"
	KeyIneligible       = "prob_not_eligible"
	legacyKeyEligible   = "prob of eligible"
	legacyKeyIneligible = "prob of not eligible"
)

// Config captures the settings for the scoring client.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client implements ports.Scorer over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient builds a Client. A default timeout is applied when none is provided.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type scoreRequest struct {
	Age               float64 `json:"age"`
	Income            float64 `json:"income"`
	Ownership         string  `json:"ownership"`
	EmploymentLen     float64 `json:"employment_len"`
	LoanIntent        string  `json:"loan_intent"`
	LoanAmount        float64 `json:"loan_amnt"`
	LoanIntRate       float64 `json:"loan_int_rate"`
	LoanPercentIncome float64 `json:"loan_percent_income"`
	CredHistLen       float64 `json:"cred_hist_len"`
	CreditScore       string  `json:"creditScore,omitempty"`
}

func toScoreRequest(r domain.ApplicantRecord) scoreRequest {
	return scoreRequest{
		Age:               r.Age(),
		Income:            r.Income(),
		Ownership:         r.Ownership(),
		EmploymentLen:     r.EmploymentLen(),
		LoanIntent:        r.LoanIntent(),
		LoanAmount:        r.LoanAmount(),
		LoanIntRate:       r.LoanIntRate(),
		LoanPercentIncome: r.LoanPercentIncome(),
		CredHistLen:       r.CredHistLen(),
		CreditScore:       r.CreditScore(),
	}
}

// Score sends the record to the scoring service. Failures are returned as
// *domain.ScoringError.
func (c *Client) Score(ctx context.Context, record domain.ApplicantRecord) (domain.Probabilities, error) {
	start := time.Now()
	probs, err := c.score(ctx, record)
	metrics.ScoringDuration.Observe(time.Since(start).Seconds())

	result := "ok"
	switch {
	case err != nil:
		var se *domain.ScoringError
		if errors.As(err, &se) {
			result = se.Reason
		}
	case probs.Defaulted():
		result = "defaulted"
	}
	metrics.ScoringRequestsTotal.WithLabelValues(result).Inc()

	return probs, err
}

func (c *Client) score(ctx context.Context, record domain.ApplicantRecord) (domain.Probabilities, error) {
	body, err := json.Marshal(toScoreRequest(record))
	if err != nil {
		return domain.Probabilities{}, fmt.Errorf("scoring: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Probabilities{}, &domain.ScoringError{Reason: domain.ReasonUnreachable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Probabilities{}, &domain.ScoringError{Reason: domain.ReasonUnreachable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return domain.Probabilities{}, &domain.ScoringError{StatusCode: resp.StatusCode, Reason: domain.ReasonUnexpectedStatus}
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return domain.Probabilities{}, &domain.ScoringError{StatusCode: resp.StatusCode, Reason: domain.ReasonMalformedResponse, Err: err}
	}

	var probs domain.Probabilities
	var ok bool
	if probs.Eligible, ok, err = lookup(payload, KeyEligible, legacyKeyEligible); err != nil {
		return domain.Probabilities{}, &domain.ScoringError{StatusCode: resp.StatusCode, Reason: domain.ReasonMalformedResponse, Err: err}
	} else if !ok {
		probs.MissingFields = append(probs.MissingFields, KeyEligible)
	}
	if probs.Ineligible, ok, err = lookup(payload, KeyIneligible, legacyKeyIneligible); err != nil {
		return domain.Probabilities{}, &domain.ScoringError{StatusCode: resp.StatusCode, Reason: domain.ReasonMalformedResponse, Err: err}
	} else if !ok {
		probs.MissingFields = append(probs.MissingFields, KeyIneligible)
	}

	c.checkRange(KeyEligible, probs.Eligible)
	c.checkRange(KeyIneligible, probs.Ineligible)
	return probs, nil
}

func (c *Client) checkRange(field string, v float64) {
	if v >= 0 && v <= 1 {
		return
	}
	metrics.ScoringProbabilityOutOfRangeTotal.WithLabelValues(field).Inc()
	c.log.Warn().Str("field", field).Float64("value", v).Msg("scoring probability out of range")
}

// lookup returns the first present key as a number. A present key holding a
// non-number is an error; null counts as absent.
func lookup(payload map[string]json.RawMessage, keys ...string) (float64, bool, error) {
	for _, k := range keys {
		raw, present := payload[k]
		if !present || string(raw) == "null" {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, false, fmt.Errorf("field %q: %w", k, err)
		}
		return v, true, nil
	}
	return 0, false, nil
}

// Ping checks that the scoring endpoint accepts connections. Any HTTP status
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
