package policy

import (
	"strings"
	"testing"

	"github.com/aegisops/aegis/internal/model"
)

const clearIncident = "Disk usage at 99% on /var, log rotation failed since Monday"
const ambiguousIncident = "Database latency is high but all system metrics are normal"

func TestValidateInvalidAction(t *testing.T) {
	d := Validate(model.Decision{
		RecommendedAction: "format_disk",
		ConfidenceScore:   95,
	}, clearIncident)

	if d.RecommendedAction != model.ActionEscalateToHuman {
		t.Errorf("action = %q, want escalate_to_human", d.RecommendedAction)
	}
	if d.ConfidenceScore != 10 {
		t.Errorf("confidence = %d, want 10", d.ConfidenceScore)
	}
}

func TestValidateInvalidActionKeepsLowerConfidence(t *testing.T) {
	d := Validate(model.Decision{RecommendedAction: "noop", ConfidenceScore: 5}, clearIncident)
	if d.ConfidenceScore != 5 {
		t.Errorf("confidence = %d, cap should not raise a lower score", d.ConfidenceScore)
	}
}

func TestValidateAmbiguityCapsConfidence(t *testing.T) {
	d := Validate(model.Decision{
		RecommendedAction: model.ActionRunDiagnostics,
		ConfidenceScore:   90,
	}, ambiguousIncident)

	if d.ConfidenceScore != 60 {
		t.Errorf("confidence = %d, want 60", d.ConfidenceScore)
	}
	if d.RecommendedAction != model.ActionRunDiagnostics {
		t.Errorf("safe action should be preserved, got %q", d.RecommendedAction)
	}
}

func TestValidateAmbiguityForcesSafeAction(t *testing.T) {
	d := Validate(model.Decision{
		RecommendedAction: model.ActionClearLogs,
		ConfidenceScore:   95,
	}, ambiguousIncident)

	if d.RecommendedAction != model.ActionEscalateToHuman {
		t.Errorf("action = %q, want escalate_to_human", d.RecommendedAction)
	}
	if d.ConfidenceScore != 60 {
		t.Errorf("confidence = %d, want 60", d.ConfidenceScore)
	}
}

func TestValidateLowConfidenceUnsafeAction(t *testing.T) {
	d := Validate(model.Decision{
		RecommendedAction: model.ActionRestartService,
		ConfidenceScore:   79,
	}, clearIncident)

	if d.RecommendedAction != model.ActionEscalateToHuman {
		t.Errorf("action = %q, want escalate_to_human", d.RecommendedAction)
	}
	if d.ConfidenceScore != 79 {
		t.Errorf("confidence = %d, escalation must not change the score", d.ConfidenceScore)
	}
}

func TestValidateHighConfidenceUnsafeActionPasses(t *testing.T) {
	d := Validate(model.Decision{
		RecommendedAction: model.ActionClearLogs,
		ConfidenceScore:   95,
		Explanation:       "Standard cleanup.",
	}, clearIncident)

	if d.RecommendedAction != model.ActionClearLogs {
		t.Errorf("action = %q, want clear_logs", d.RecommendedAction)
	}
	if d.ConfidenceScore != 95 {
		t.Errorf("confidence = %d, want 95", d.ConfidenceScore)
	}
	if strings.Contains(d.Explanation, "Requires review") {
		t.Error("no disclaimer expected at confidence 95")
	}
}

func TestValidateAutoResolveLanguage(t *testing.T) {
	d := Validate(model.Decision{
		RecommendedAction: model.ActionRunDiagnostics,
		ConfidenceScore:   85,
		Explanation:       "This will be resolved by the automation.",
	}, clearIncident)

	if !strings.HasSuffix(d.Explanation, "Requires review before execution.") {
		t.Errorf("expected disclaimer appended, got %q", d.Explanation)
	}
}

func TestValidateAutoResolveAppendedOnce(t *testing.T) {
	d := Validate(model.Decision{
		RecommendedAction: model.ActionRunDiagnostics,
		ConfidenceScore:   85,
		Explanation:       "Can be auto-resolved and will be resolved shortly.",
	}, clearIncident)

	if strings.Count(d.Explanation, "Requires review before execution.") != 1 {
		t.Errorf("disclaimer should be appended exactly once: %q", d.Explanation)
	}
}

func TestValidateClampsConfidence(t *testing.T) {
	d := Validate(model.Decision{
		RecommendedAction: model.ActionEscalateToHuman,
		ConfidenceScore:   -5,
	}, clearIncident)
	if d.ConfidenceScore != 0 {
		t.Errorf("confidence = %d, want 0", d.ConfidenceScore)
	}

	d = Validate(model.Decision{
		RecommendedAction: model.ActionEscalateToHuman,
		ConfidenceScore:   140,
	}, clearIncident)
	if d.ConfidenceScore != 100 {
		t.Errorf("confidence = %d, want 100", d.ConfidenceScore)
	}
}

func TestValidateIdempotentOnValidatedOutput(t *testing.T) {
	first := Validate(model.Decision{
		RecommendedAction: model.ActionClearLogs,
		ConfidenceScore:   95,
		Explanation:       "Clear cause, safe remediation.",
	}, ambiguousIncident)

	second := Validate(first, ambiguousIncident)
	if first != second {
		t.Errorf("validation not stable: %+v != %+v", first, second)
	}
}
