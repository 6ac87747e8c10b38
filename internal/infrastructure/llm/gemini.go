// Package llm generates loan explanations with Google Gemini.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/loanlens/analysis-api/internal/core/domain"
	"github.com/loanlens/analysis-api/internal/infrastructure/metrics"
)

const (
	defaultModel   = "gemini-1.5-pro"
	defaultTimeout = 30 * time.Second
)

// Config captures the settings for the Gemini client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint; empty uses the default.
	BaseURL string
	Timeout time.Duration
}

// GeminiExplainer implements ports.Explainer. Calls are never retried here.
type GeminiExplainer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewGeminiExplainer creates the underlying GenAI client.
func NewGeminiExplainer(ctx context.Context, cfg Config, log zerolog.Logger) (*GeminiExplainer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create GenAI client: %w", err)
	}

	return &GeminiExplainer{
		client:  client,
		model:   model,
		timeout: timeout,
		log:     log.With().Str("model", model).Logger(),
	}, nil
}

// Explain sends prompt as a single user turn and returns the generated text
// verbatim. Failures are returned as *domain.ExplanationError.
func (g *GeminiExplainer) Explain(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.generate(ctx, prompt)
	metrics.ExplanationDuration.Observe(time.Since(start).Seconds())

	result := "ok"
	var ee *domain.ExplanationError
	if errors.As(err, &ee) {
		result = ee.Reason
	}
	metrics.ExplanationRequestsTotal.WithLabelValues(result).Inc()

	return text, err
}

func (g *GeminiExplainer) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &domain.ExplanationError{Reason: classify(ctx, err), Err: err}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &domain.ExplanationError{Reason: domain.ReasonEmptyResponse}
	}

	g.log.Debug().Int("chars", len(text)).Msg("explanation generated")
	return text, nil
}

// classify maps a GenAI error onto an explanation failure reason.
func classify(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return domain.ReasonUnreachable
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	default:
		return domain.ReasonUnreachable
	}

	if code == http.StatusTooManyRequests {
		return domain.ReasonQuotaExceeded
	}
	return domain.ReasonProviderError
}
