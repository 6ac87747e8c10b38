package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ApplicantInput carries the raw, already type-checked fields of a loan
// application as received at ingress.
type ApplicantInput struct {
	Name              string
	Age               float64
	Income            float64
	Ownership         string
	EmploymentLen     float64
	LoanIntent        string
	LoanAmount        float64
	LoanIntRate       float64
	LoanPercentIncome float64
	CredHistLen       float64
	CreditScore       string
}

// ApplicantRecord is the validated snapshot of one application. Fields are
// unexported so a record cannot change after NewApplicantRecord returns it.
type ApplicantRecord struct {
	name              string
	age               float64
	income            float64
	ownership         string
	employmentLen     float64
	loanIntent        string
	loanAmount        float64
	loanIntRate       float64
	loanPercentIncome float64
	credHistLen       float64
	creditScore       string
}

// NewApplicantRecord checks the range constraints of every field and returns
// the normalised record. When requireIdentity is set, name and creditScore
// must be present as well.
//
// Values are never clamped: a loan_percent_income of 1000 is kept as is.
func NewApplicantRecord(in ApplicantInput, requireIdentity bool) (ApplicantRecord, error) {
	name := norm.NFC.String(strings.TrimSpace(in.Name))
	ownership := strings.ToUpper(strings.TrimSpace(in.Ownership))
	intent := strings.ToUpper(strings.TrimSpace(in.LoanIntent))
	creditScore := strings.TrimSpace(in.CreditScore)

	switch {
	case in.Age <= 0:
		return ApplicantRecord{}, NewValidationError("age", "must be greater than 0")
	case in.Income < 0:
		return ApplicantRecord{}, NewValidationError("income", "must not be negative")
	case ownership == "":
		return ApplicantRecord{}, NewValidationError("ownership", "is required")
	case in.EmploymentLen < 0:
		return ApplicantRecord{}, NewValidationError("employment_len", "must not be negative")
	case intent == "":
		return ApplicantRecord{}, NewValidationError("loan_intent", "is required")
	case in.LoanAmount <= 0:
		return ApplicantRecord{}, NewValidationError("loan_amnt", "must be greater than 0")
	case in.LoanIntRate < 0:
		return ApplicantRecord{}, NewValidationError("loan_int_rate", "must not be negative")
	case in.LoanPercentIncome < 0:
		return ApplicantRecord{}, NewValidationError("loan_percent_income", "must not be negative")
	case in.CredHistLen < 0:
		return ApplicantRecord{}, NewValidationError("cred_hist_len", "must not be negative")
	}

	for _, f := range []struct{ field, value string }{
		{"name", name},
		{"ownership", ownership},
		{"loan_intent", intent},
		{"creditScore", creditScore},
	} {
		if hasLineBreakOrControl(f.value) {
			return ApplicantRecord{}, NewValidationError(f.field, "must not contain line breaks or control characters")
		}
	}

	if requireIdentity {
		if name == "" {
			return ApplicantRecord{}, NewValidationError("name", "is required")
		}
		if creditScore == "" {
			return ApplicantRecord{}, NewValidationError("creditScore", "is required")
		}
	}

	return ApplicantRecord{
		name:              name,
		age:               in.Age,
		income:            in.Income,
		ownership:         ownership,
		employmentLen:     in.EmploymentLen,
		loanIntent:        intent,
		loanAmount:        in.LoanAmount,
		loanIntRate:       in.LoanIntRate,
		loanPercentIncome: in.LoanPercentIncome,
		credHistLen:       in.CredHistLen,
		creditScore:       creditScore,
	}, nil
}

func (r ApplicantRecord) Name() string               { return r.name }
func (r ApplicantRecord) Age() float64               { return r.age }
func (r ApplicantRecord) Income() float64            { return r.income }
func (r ApplicantRecord) Ownership() string          { return r.ownership }
func (r ApplicantRecord) EmploymentLen() float64     { return r.employmentLen }
func (r ApplicantRecord) LoanIntent() string         { return r.loanIntent }
func (r ApplicantRecord) LoanAmount() float64        { return r.loanAmount }
func (r ApplicantRecord) LoanIntRate() float64       { return r.loanIntRate }
func (r ApplicantRecord) LoanPercentIncome() float64 { return r.loanPercentIncome }
func (r ApplicantRecord) CredHistLen() float64       { return r.credHistLen }
func (r ApplicantRecord) CreditScore() string        { return r.creditScore }

// HasName reports whether the applicant supplied a name.
func (r ApplicantRecord) HasName() bool { return r.name != "" }

// LoanPercentIncomeOutOfRange reports whether loan_percent_income lies outside
// the customary 0-100 range. The value is still accepted.
func (r ApplicantRecord) LoanPercentIncomeOutOfRange() bool {
	return r.loanPercentIncome > 100
}

func hasLineBreakOrControl(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsControl(r) || unicode.In(r, unicode.Zl, unicode.Zp)
	}) >= 0
}
