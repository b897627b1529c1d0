package llm

import (
	"context"
	"strings"
)

// MockClient returns canned responses keyed off the incident text.
// It exists for demos and tests without model access, and deliberately
// exercises the full extraction cascade: one response is commentary-wrapped,
// one is clean JSON.
type MockClient struct {
	Model string
}

// ModelID returns the configured model identifier.
func (m *MockClient) ModelID() string {
	if m.Model == "" {
		return DefaultModelID
	}
	return m.Model
}

// Generate returns a deterministic response based on the user message.
func (m *MockClient) Generate(ctx context.Context, systemMsg, userMsg string) (string, error) {
	lower := strings.ToLower(userMsg)

	// Ambiguous incident: JSON wrapped in commentary.
	if (strings.Contains(lower, "but") && strings.Contains(lower, "normal")) ||
		(strings.Contains(lower, "high") && strings.Contains(lower, "metrics") && strings.Contains(lower, "normal")) {
		return `
Here's the analysis:
{
  "analysis": "Database latency elevated but system metrics appear normal",
  "recommended_action": "run_diagnostics",
  "confidence_score": 50,
  "explanation": "Conflicting signals detected: high latency but normal metrics. Requires diagnostic investigation to identify root cause."
}
Hope this helps!
`, nil
	}

	// Clear disk space issue: clean JSON.
	if strings.Contains(lower, "disk") && (strings.Contains(userMsg, "99") || strings.Contains(userMsg, "95")) {
		return `{"analysis": "Disk space critically low on server", "recommended_action": "clear_logs", "confidence_score": 95, "explanation": "Clear disk space issue with standard remediation available. Low risk for automated cleanup."}`, nil
	}

	// Default: low-confidence escalation.
	return `{"analysis": "Incident requires investigation", "recommended_action": "escalate_to_human", "confidence_score": 40, "explanation": "Insufficient information to determine root cause confidently. Escalating for human review."}`, nil
}
