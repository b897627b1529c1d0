// Package ambiguity flags incident text with conflicting or uncertain signals.
package ambiguity

import (
	"regexp"
	"strings"
)

var (
	contradictionRe = regexp.MustCompile(`\b(but|however|although)\b.*\bnormal\b`)
	highSymptomRe   = regexp.MustCompile(`\b(high|elevated|increased|spike)\b`)
	normalMetricRe  = regexp.MustCompile(`\b(normal|low|stable|within range)\b`)
	uncertaintyRe   = regexp.MustCompile(`\b(may|might|could|possibly|unclear|unknown|intermittent)\b`)
	noPatternRe     = regexp.MustCompile(`\bno (clear|obvious|apparent) (pattern|cause|reason|indicator)`)
)

// Detect reports whether the incident text is ambiguous: symptoms that
// contradict metrics, repeated hedging, or an explicit lack of a clear cause.
// Ambiguous incidents are capped at confidence 60 and restricted to safe
// actions by the policy validator. Matching is case-insensitive.
func Detect(incidentText string) bool {
	text := strings.ToLower(incidentText)

	// Contradiction followed by "normal" ("latency high but metrics normal").
	if contradictionRe.MatchString(text) {
		return true
	}

	// High-symptom language alongside normal-metric language.
	if highSymptomRe.MatchString(text) && normalMetricRe.MatchString(text) {
		return true
	}

	// Two or more hedging terms.
	if len(uncertaintyRe.FindAllString(text, -1)) >= 2 {
		return true
	}

	// Explicit absence of a clear cause.
	return noPatternRe.MatchString(text)
}
