// Package prompt renders the instruction text sent to the LLM for one scored
// applicant. Every variant is produced by a single template; Options decides
// which sections are rendered.
package prompt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/loanlens/analysis-api/internal/core/domain"
)

// Instructions present in every rendered prompt.
const (
	NoSourceInstruction      = "Do not mention any scoring service, prediction, or model anywhere in your response."
	OwnAssessmentInstruction = "Present this analysis as your own independent assessment of the application."
)

// Openings the LLM is told to start its answer with.
const (
	EligibleOpening   = "Congratulations! You are likely to be approved for this loan."
	IneligibleOpening = "We understand this may be disappointing, but your loan application is unlikely to be approved at this time."
)

// OpeningDirective precedes the quoted opening line in the prompt.
const OpeningDirective = "Begin your response with exactly:"

// RejectionFactors is the canonical list embedded with GuidanceEmbeddedList.
var RejectionFactors = []string{
	"Insufficient income for the requested loan amount",
	"High debt-to-income ratio",
	"Low credit score or short credit history",
	"Unstable or short employment history",
	"Excessive loan amount relative to income",
	"High interest rate increasing the repayment burden",
}

// AlternativeOptions are suggested to applicants unlikely to be approved.
var AlternativeOptions = []string{
	"applying with a co-signer",
	"a secured loan backed by collateral",
	"government-backed loan programs",
}

// sourcePhrases name the scoring source in ways the answer must never echo.
// Applicant text matching them is masked before rendering.
var sourcePhrases = regexp.MustCompile(`(?i)model\s+predictions?|ml[\s-]*based\s+evaluations?`)

const maskedText = "[withheld]"

const promptTemplate = `A user has applied for a loan. Their information is as follows:
{{- if .Name}}
Name: {{quote .Name}}{{end}}
Age: {{num .Record.Age}}
Annual income: {{money .Record.Income}}
Home ownership: {{label .Record.Ownership}}
Employment length: {{num .Record.EmploymentLen}} years
Loan intent: {{label .Record.LoanIntent}}
Loan amount: {{money .Record.LoanAmount}}
Loan interest rate: {{num .Record.LoanIntRate}}%
Loan amount as a percentage of income: {{num .Record.LoanPercentIncome}}%
Credit history length: {{num .Record.CredHistLen}} years
{{- if .Record.CreditScore}}
Credit score: {{quote .Record.CreditScore}}{{end}}

Assessment: the applicant is {{if .Eligible}}likely{{else}}unlikely{{end}} to be approved (estimated approval likelihood {{percent .Probabilities.Eligible}}).

Instructions:
- ` + OpeningDirective + ` "{{.Opening}}"
{{- if .Eligible}}
- Follow with a concise summary of the strengths of this application.
- Describe suitable loan options and the next steps to complete the application.
{{- else}}
- Explain, with empathy, the most likely reasons for this outcome.
{{- if .EmbeddedFactors}}
- Base the explanation on the following factors, addressing those that apply to this applicant:
{{- range $i, $f := .Factors}}
  {{inc $i}}. {{$f}}
{{- end}}
{{- else}}
- Identify the specific factors in the applicant's profile that weigh against approval.
{{- end}}
- Suggest alternative financial options such as {{join .Alternatives}}.
- Give an improvement plan and a realistic timeframe after which the applicant could reapply.
{{- end}}
{{- if .MaxPoints}}
- Use no more than {{.MaxPoints}} points in your answer.
{{- end}}
- {{.NoSource}}
- {{.OwnAssessment}}
`

// Composer renders prompts. It is safe for concurrent use.
type Composer struct {
	opts Options
	tmpl *template.Template
}

// NewComposer returns a Composer for the given variant.
func NewComposer(opts Options) *Composer {
	opts = opts.withDefaults()
	printer := message.NewPrinter(language.English)

	funcs := template.FuncMap{
		"num": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
		"money": func(v float64) string {
			return opts.CurrencySymbol + printer.Sprintf("%.2f", v)
		},
		"percent": func(v float64) string { return strconv.FormatFloat(v*100, 'f', 0, 64) + "%" },
		"label":   label,
		"quote":   quote,
		"inc":     func(i int) int { return i + 1 },
		"join":    joinOptions,
	}

	return &Composer{
		opts: opts,
		tmpl: template.Must(template.New("prompt").Funcs(funcs).Parse(promptTemplate)),
	}
}

// Options returns the effective options, defaults applied.
func (c *Composer) Options() Options { return c.opts }

type view struct {
	Name            string
	Record          recordView
	Probabilities   domain.Probabilities
	Eligible        bool
	Opening         string
	EmbeddedFactors bool
	Factors         []string
	Alternatives    []string
	MaxPoints       int
	NoSource        string
	OwnAssessment   string
}

type recordView struct {
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

// Compose renders the prompt for record scored as probs. Output depends only
// on its inputs and the Composer's options.
func (c *Composer) Compose(record domain.ApplicantRecord, probs domain.Probabilities) string {
	eligible := probs.Decision() == domain.DecisionEligible

	v := view{
		Name: record.Name(),
		Record: recordView{
			Age:               record.Age(),
			Income:            record.Income(),
			Ownership:         record.Ownership(),
			EmploymentLen:     record.EmploymentLen(),
			LoanIntent:        record.LoanIntent(),
			LoanAmount:        record.LoanAmount(),
			LoanIntRate:       record.LoanIntRate(),
			LoanPercentIncome: record.LoanPercentIncome(),
			CredHistLen:       record.CredHistLen(),
			CreditScore:       record.CreditScore(),
		},
		Probabilities:   probs,
		Eligible:        eligible,
		Opening:         IneligibleOpening,
		EmbeddedFactors: c.opts.RejectionGuidance == GuidanceEmbeddedList,
		Factors:         RejectionFactors,
		Alternatives:    AlternativeOptions,
		MaxPoints:       c.opts.MaxPoints,
		NoSource:        NoSourceInstruction,
		OwnAssessment:   OwnAssessmentInstruction,
	}
	if eligible {
		v.Opening = EligibleOpening
	}
	if c.opts.IncludeGreeting && record.HasName() {
		v.Opening = "Dear " + clean(record.Name()) + ", " + v.Opening
	}

	var b strings.Builder
	if err := c.tmpl.Execute(&b, v); err != nil {
		// The template is fixed and the view fully typed; failure is a bug.
		panic(fmt.Sprintf("prompt: render: %v", err))
	}
	return b.String()
}

// label turns an enum value such as DEBT_CONSOLIDATION into "Debt Consolidation".
func label(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(clean(s), "_", " "))
}

// quote renders applicant free text as a single quoted value.
func quote(s string) string {
	return `"` + clean(s) + `"`
}

// clean keeps applicant text on one line, free of double quotes and of the
// phrases that would name the scoring source.
func clean(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '"':
			return '\''
		case unicode.IsControl(r), unicode.In(r, unicode.Zl, unicode.Zp):
			return ' '
		}
		return r
	}, s)
	for sourcePhrases.MatchString(s) {
		s = sourcePhrases.ReplaceAllString(s, maskedText)
	}
	return s
}

func joinOptions(opts []string) string {
	switch len(opts) {
	case 0:
		return ""
	case 1:
		return opts[0]
	}
	return strings.Join(opts[:len(opts)-1], ", ") + " or " + opts[len(opts)-1]
}
