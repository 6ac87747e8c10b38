package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("invalid applicant record")
	ErrScoringFailed     = errors.New("scoring failed")
	ErrExplanationFailed = errors.New("explanation failed")
)

// ValidationError names the request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Scoring failure reasons.
const (
	ReasonUnreachable       = "unreachable"
	ReasonUnexpectedStatus  = "unexpected_status"
	ReasonMalformedResponse = "malformed_response"
)

// ScoringError is returned when the scoring service could not produce a
// probability pair. StatusCode is 0 when no response was received.
type ScoringError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *ScoringError) Error() string {
	msg := "scoring failed: " + e.Reason
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScoringError) Is(target error) bool { return target == ErrScoringFailed }

func (e *ScoringError) Unwrap() error { return e.Err }

// Explanation failure reasons.
const (
	ReasonQuotaExceeded = "quota_exceeded"
	ReasonEmptyResponse = "empty_response"
	ReasonProviderError = "provider_error"
)

// ExplanationError is returned when the LLM could not produce text.
type ExplanationError struct {
	Reason string
	Err    error
}

func (e *ExplanationError) Error() string {
	if e.Err != nil {
		return "explanation failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "explanation failed: " + e.Reason
}

func (e *ExplanationError) Is(target error) bool { return target == ErrExplanationFailed }

func (e *ExplanationError) Unwrap() error { return e.Err }
