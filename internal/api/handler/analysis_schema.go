package handler

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/loanlens/analysis-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Pointer fields tell a missing key apart from an explicit zero.
type analyseRequest struct {
	Name              *string      `json:"name"`
	Age               *float64     `json:"age"                 validate:"required,gt=0"`
	Income            *float64     `json:"income"              validate:"required,gte=0"`
	Ownership         *string      `json:"ownership"           validate:"required,min=1"`
	EmploymentLen     *float64     `json:"employment_len"      validate:"required,gte=0"`
	LoanIntent        *string      `json:"loan_intent"         validate:"required,min=1"`
	LoanAmount        *float64     `json:"loan_amnt"           validate:"required,gt=0"`
	LoanIntRate       *float64     `json:"loan_int_rate"       validate:"required,gte=0"`
	LoanPercentIncome *float64     `json:"loan_percent_income" validate:"required,gte=0"`
	CredHistLen       *float64     `json:"cred_hist_len"       validate:"required,gte=0"`
	CreditScore       *creditScore `json:"creditScore"`
}

type analyseResponse struct {
	Message string `json:"message"`
}

// creditScore is text, but numeric scores such as 720 are accepted and kept
// in their literal form.
type creditScore string

func (s *creditScore) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = creditScore(v)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return &json.UnmarshalTypeError{Value: jsonKind(b), Type: reflect.TypeOf("")}
	}
	*s = creditScore(n.String())
	return nil
}

func jsonKind(b []byte) string {
	switch {
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		return "bool"
	case bytes.HasPrefix(b, []byte("[")):
		return "array"
	case bytes.HasPrefix(b, []byte("{")):
		return "object"
	}
	return "value"
}

func toApplicantInput(r analyseRequest) domain.ApplicantInput {
	in := domain.ApplicantInput{
		Age:               deref(r.Age),
		Income:            deref(r.Income),
		Ownership:         deref(r.Ownership),
		EmploymentLen:     deref(r.EmploymentLen),
		LoanIntent:        deref(r.LoanIntent),
		LoanAmount:        deref(r.LoanAmount),
		LoanIntRate:       deref(r.LoanIntRate),
		LoanPercentIncome: deref(r.LoanPercentIncome),
		CredHistLen:       deref(r.CredHistLen),
		Name:              deref(r.Name),
	}
	if r.CreditScore != nil {
		in.CreditScore = strings.TrimSpace(string(*r.CreditScore))
	}
	return in
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
