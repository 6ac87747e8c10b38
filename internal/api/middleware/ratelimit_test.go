package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type stubLimiter struct {
	allowFn func(ctx context.Context, key string) (bool, error)
	keys    []string
}

func (s *stubLimiter) Allow(ctx context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowFn(ctx, key)
}

func runRateLimit(t *testing.T, limiter Limiter) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/analyse", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := RateLimit(limiter, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func TestRateLimit_Allowed(t *testing.T) {
	limiter := &stubLimiter{allowFn: func(context.Context, string) (bool, error) { return true, nil }}

	rec, called := runRateLimit(t, limiter)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected request through, called=%v code=%d", called, rec.Code)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "203.0.113.7" {
		t.Fatalf("expected key by client ip, got %v", limiter.keys)
	}
}

func TestRateLimit_Exceeded(t *testing.T) {
	limiter := &stubLimiter{allowFn: func(context.Context, string) (bool, error) { return false, nil }}

	rec, called := runRateLimit(t, limiter)

	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &stubLimiter{allowFn: func(context.Context, string) (bool, error) {
		return false, errors.New("connection refused")
	}}

	rec, called := runRateLimit(t, limiter)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected request through on limiter error, called=%v code=%d", called, rec.Code)
	}
}
