package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/loanlens/analysis-api/internal/core/domain"
	"github.com/loanlens/analysis-api/internal/core/ports"
)

type stubService struct {
	calls int
}

func (s *stubService) Analyse(context.Context, ports.AnalyseInput) (*ports.AnalysisResult, error) {
	s.calls++
	return &ports.AnalysisResult{Message: "Congratulations!", Decision: domain.DecisionEligible}, nil
}

type countingLimiter struct {
	limit int
	seen  map[string]int
}

func (l *countingLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.seen[key]++
	return l.seen[key] <= l.limit, nil
}

const validBody = `{"age":30,"income":50000,"ownership":"MORTGAGE","employment_len":4,"loan_intent":"EDUCATION",` +
	`"loan_amnt":5000,"loan_int_rate":9.5,"loan_percent_income":0.1,"cred_hist_len":6}`

func newRouter(deps Dependencies) http.Handler {
	deps.Log = zerolog.Nop()
	if deps.AllowedOrigins == nil {
		deps.AllowedOrigins = []string{"*"}
	}
	return NewRouter(deps)
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Analyse(t *testing.T) {
	svc := &stubService{}
	rec := do(newRouter(Dependencies{Service: svc}), http.MethodPost, "/analyse", validBody, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Errorf("expected a request id header")
	}
	if svc.calls != 1 {
		t.Errorf("expected one service call, got %d", svc.calls)
	}
}

func TestRouter_CORSReflectsOriginForWildcard(t *testing.T) {
	h := newRouter(Dependencies{Service: &stubService{}})

	rec := do(h, http.MethodOptions, "/analyse", "", map[string]string{
		"Origin":                         "https://portal.example.com",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "Content-Type, X-Custom",
	})

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://portal.example.com" {
		t.Errorf("expected reflected origin, got %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("expected credentials allowed")
	}
}

func TestRouter_CORSRestrictedOrigins(t *testing.T) {
	h := newRouter(Dependencies{Service: &stubService{}, AllowedOrigins: []string{"https://portal.example.com"}})

	rec := do(h, http.MethodPost, "/analyse", validBody, map[string]string{"Origin": "https://evil.example.com"})

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow-origin for foreign origin: %q", got)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	limiter := &countingLimiter{limit: 2, seen: map[string]int{}}
	h := newRouter(Dependencies{Service: &stubService{}, Limiter: limiter})

	for i := 0; i < 2; i++ {
		if rec := do(h, http.MethodPost, "/analyse", validBody, nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := do(h, http.MethodPost, "/analyse", validBody, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rate limit exceeded") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	if rec := do(h, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("health must not be rate limited, got %d", rec.Code)
	}
}

func TestRouter_AuthWhenSecretConfigured(t *testing.T) {
	svc := &stubService{}
	h := newRouter(Dependencies{Service: svc, JWTSecret: "s3cret"})

	rec := do(h, http.MethodPost, "/analyse", validBody, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "portal",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rec = do(h, http.MethodPost, "/analyse", validBody, map[string]string{"Authorization": "Bearer " + signed})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.calls != 1 {
		t.Errorf("expected one service call, got %d", svc.calls)
	}
}

func TestRouter_MetricsDocsAndUnknownRoute(t *testing.T) {
	h := newRouter(Dependencies{Service: &stubService{}})

	if rec := do(h, http.MethodGet, "/metrics", "", nil); rec.Code != http.StatusOK {
		t.Errorf("expected metrics 200, got %d", rec.Code)
	}

	if rec := do(h, http.MethodGet, "/swagger/doc.json", "", nil); rec.Code != http.StatusOK ||
		!strings.Contains(rec.Body.String(), "/analyse") {
		t.Errorf("expected swagger doc with /analyse, got %d", rec.Code)
	}

	rec := do(h, http.MethodGet, "/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("expected JSON error envelope, got %s", rec.Body.String())
	}
}
