// Package policy enforces decision safety rules after model output parsing.
//
// Validation is total: it never rejects a decision, it rewrites unsafe ones.
// Rule order matters and must not change: each step may tighten the result
// of the previous one.
package policy

import (
	"fmt"
	"os"
	"regexp"

	"github.com/aegisops/aegis/internal/ambiguity"
	"github.com/aegisops/aegis/internal/model"
)

// autoResolvePatterns match explanation language that promises automatic
// resolution. Below confidence 90 such language gets a review disclaimer.
var autoResolvePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bauto[\s-]?resolv`),
	regexp.MustCompile(`(?i)\bresolved automatically\b`),
	regexp.MustCompile(`(?i)\bcan be resolved\b.*\bautomatically\b`),
	regexp.MustCompile(`(?i)\bwill be resolved\b`),
}

const reviewDisclaimer = " Requires review before execution."

// Validate applies the decision policy to a parsed model decision.
//
// Steps, in order:
//  1. invalid action: force escalation, cap confidence at 10
//  2. ambiguous incident text: cap confidence at 60, force a safe action
//  3. confidence below 80 with an unsafe action: force escalation
//  4. confidence below 90 with auto-resolution language: append disclaimer
//  5. clamp confidence to [0,100]
func Validate(d model.Decision, incidentText string) model.Decision {
	if !d.RecommendedAction.Valid() {
		fmt.Fprintf(os.Stderr, "policy: invalid action %q, forcing escalation\n", d.RecommendedAction)
		d.RecommendedAction = model.ActionEscalateToHuman
		if d.ConfidenceScore > 10 {
			d.ConfidenceScore = 10
		}
	}

	if ambiguity.Detect(incidentText) {
		if d.ConfidenceScore > 60 {
			fmt.Fprintf(os.Stderr, "policy: ambiguous incident, capping confidence %d at 60\n", d.ConfidenceScore)
			d.ConfidenceScore = 60
		}
		if !d.RecommendedAction.Safe() {
			fmt.Fprintf(os.Stderr, "policy: ambiguous incident but action %q, forcing escalation\n", d.RecommendedAction)
			d.RecommendedAction = model.ActionEscalateToHuman
		}
	}

	if d.ConfidenceScore < 80 && !d.RecommendedAction.Safe() {
		fmt.Fprintf(os.Stderr, "policy: confidence %d below threshold for action %q, forcing escalation\n",
			d.ConfidenceScore, d.RecommendedAction)
		d.RecommendedAction = model.ActionEscalateToHuman
	}

	if d.ConfidenceScore < 90 {
		for _, re := range autoResolvePatterns {
			if re.MatchString(d.Explanation) {
				d.Explanation += reviewDisclaimer
				break
			}
		}
	}

	if d.ConfidenceScore < 0 {
		d.ConfidenceScore = 0
	}
	if d.ConfidenceScore > 100 {
		d.ConfidenceScore = 100
	}

	return d
}
