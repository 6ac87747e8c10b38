package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/loanlens/analysis-api/internal/core/domain"
)

func scenarioRecord(t *testing.T) domain.ApplicantRecord {
	t.Helper()
	rec, err := domain.NewApplicantRecord(domain.ApplicantInput{
		Age:               21,
		Income:            960000,
		Ownership:         "RENT",
		EmploymentLen:     5.0,
		LoanIntent:        "PERSONAL",
		LoanAmount:        10000000,
		LoanIntRate:       11.14,
		LoanPercentIncome: 1000,
		CredHistLen:       2,
	}, false)
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	return rec
}

func newTestClient(url string) *Client {
	return NewClient(Config{Endpoint: url, Timeout: 2 * time.Second}, zerolog.Nop())
}

func TestClient_Score_Success(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prob_eligible":0.0,"prob_not_eligible":1.0}`))
	}))
	defer srv.Close()

	probs, err := newTestClient(srv.URL).Score(context.Background(), scenarioRecord(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probs.Eligible != 0.0 || probs.Ineligible != 1.0 || probs.Defaulted() {
		t.Errorf("unexpected probabilities: %+v", probs)
	}

	if len(got) != 9 {
		t.Errorf("expected 9 request fields, got %d: %v", len(got), got)
	}
	if got["loan_percent_income"] != float64(1000) {
		t.Errorf("loan_percent_income must be sent unchanged, got %v", got["loan_percent_income"])
	}
	if got["ownership"] != "RENT" || got["loan_amnt"] != float64(10000000) {
		t.Errorf("unexpected request payload: %v", got)
	}
	if _, ok := got["creditScore"]; ok {
		t.Error("creditScore must be omitted when absent")
	}
}

func TestClient_Score_LegacyKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prob of eligible":0.7,"prob of not eligible":0.3}`))
	}))
	defer srv.Close()

	probs, err := newTestClient(srv.URL).Score(context.Background(), scenarioRecord(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probs.Eligible != 0.7 || probs.Ineligible != 0.3 {
		t.Errorf("unexpected probabilities: %+v", probs)
	}
}

func TestClient_Score_MissingKeysDefaultToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	probs, err := newTestClient(srv.URL).Score(context.Background(), scenarioRecord(t))
	if err != nil {
		t.Fatalf("missing keys must not fail, got: %v", err)
	}
	if probs.Eligible != 0 || probs.Ineligible != 0 {
		t.Errorf("expected 0/0, got %+v", probs)
	}
	if len(probs.MissingFields) != 2 || probs.MissingFields[0] != KeyEligible || probs.MissingFields[1] != KeyIneligible {
		t.Errorf("unexpected missing fields: %v", probs.MissingFields)
	}
}

func TestClient_Score_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Score(context.Background(), scenarioRecord(t))

	var se *domain.ScoringError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScoringError, got %v", err)
	}
	if se.StatusCode != http.StatusInternalServerError || se.Reason != domain.ReasonUnexpectedStatus {
		t.Errorf("unexpected scoring error: %+v", se)
	}
}

func TestClient_Score_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Score(context.Background(), scenarioRecord(t))

	var se *domain.ScoringError
	if !errors.As(err, &se) || se.Reason != domain.ReasonMalformedResponse {
		t.Fatalf("expected malformed_response, got %v", err)
	}
}

func TestClient_Score_NonNumericProbability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prob_eligible":"high","prob_not_eligible":0.1}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Score(context.Background(), scenarioRecord(t))

	var se *domain.ScoringError
	if !errors.As(err, &se) || se.Reason != domain.ReasonMalformedResponse {
		t.Fatalf("expected malformed_response, got %v", err)
	}
}

func TestClient_Score_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Score(context.Background(), scenarioRecord(t))

	var se *domain.ScoringError
	if !errors.As(err, &se) || se.Reason != domain.ReasonUnreachable {
		t.Fatalf("expected unreachable, got %v", err)
	}
	if !errors.Is(err, domain.ErrScoringFailed) {
		t.Error("expected errors.Is(err, ErrScoringFailed)")
	}
}

func TestClient_Score_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{Endpoint: srv.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())
	_, err := c.Score(context.Background(), scenarioRecord(t))

	var se *domain.ScoringError
	if !errors.As(err, &se) || se.Reason != domain.ReasonUnreachable {
		t.Fatalf("expected unreachable on timeout, got %v", err)
	}
}

func TestClient_Score_OutOfRangeProbabilityWarned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prob_eligible":-3,"prob_not_eligible":40}`))
	}))
	defer srv.Close()

	var logs bytes.Buffer
	c := NewClient(Config{Endpoint: srv.URL, Timeout: 2 * time.Second}, zerolog.New(&logs))
	probs, err := c.Score(context.Background(), scenarioRecord(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probs.Eligible != -3 || probs.Ineligible != 40 {
		t.Errorf("probabilities must pass through unchanged, got %+v", probs)
	}
	out := logs.String()
	if strings.Count(out, "scoring probability out of range") != 2 {
		t.Errorf("expected one warning per out-of-range field, got:\n%s", out)
	}
	if !strings.Contains(out, `"field":"prob_eligible"`) || !strings.Contains(out, `"field":"prob_not_eligible"`) {
		t.Errorf("warnings must name the field, got:\n%s", out)
	}
}

func TestClient_Score_InRangeProbabilitiesNotWarned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prob_eligible":0,"prob_not_eligible":1}`))
	}))
	defer srv.Close()

	var logs bytes.Buffer
	c := NewClient(Config{Endpoint: srv.URL, Timeout: 2 * time.Second}, zerolog.New(&logs))
	if _, err := c.Score(context.Background(), scenarioRecord(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got:\n%s", logs.String())
	}
}
