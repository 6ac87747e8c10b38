package prompt

import (
	"fmt"
	"strings"
)

// RejectionGuidance controls how rejection factors reach the LLM.
type RejectionGuidance string

const (
	// GuidanceEmbeddedList writes the canonical rejection factors into the
	// prompt verbatim.
	GuidanceEmbeddedList RejectionGuidance = "embedded_list"
	// GuidanceFreeform leaves the factors for the LLM to derive.
	GuidanceFreeform RejectionGuidance = "freeform"
)

// ParseRejectionGuidance accepts "embedded_list" or "freeform" in any case.
// An empty string selects GuidanceEmbeddedList.
func ParseRejectionGuidance(s string) (RejectionGuidance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(GuidanceEmbeddedList):
		return GuidanceEmbeddedList, nil
	case string(GuidanceFreeform):
		return GuidanceFreeform, nil
	default:
		return "", fmt.Errorf("prompt: unknown rejection guidance %q", s)
	}
}

// Options selects the prompt variant.
type Options struct {
	// IncludeGreeting prepends "Dear <name>," when the applicant has a name.
	IncludeGreeting bool
	// CurrencySymbol prefixes monetary fields. Defaults to "$".
	CurrencySymbol string
	// RejectionGuidance defaults to GuidanceEmbeddedList.
	RejectionGuidance RejectionGuidance
	// MaxPoints caps the number of points the LLM may use; 0 means no cap.
	MaxPoints int
}

func (o Options) withDefaults() Options {
	if o.CurrencySymbol == "" {
		o.CurrencySymbol = "$"
	}
	if o.RejectionGuidance == "" {
		o.RejectionGuidance = GuidanceEmbeddedList
	}
	if o.MaxPoints < 0 {
		o.MaxPoints = 0
	}
	return o
}
