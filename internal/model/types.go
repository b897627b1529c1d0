// Package model defines the decision contract shared by the pipeline,
// the policy validator, and the HTTP surface.
package model

import "fmt"

// Action is a remediation action the model may recommend.
type Action string

const (
	ActionClearLogs       Action = "clear_logs"
	ActionRestartService  Action = "restart_service"
	ActionRunDiagnostics  Action = "run_diagnostics"
	ActionEscalateToHuman Action = "escalate_to_human"
)

// ParseAction maps a string to an Action. Unknown strings return an error;
// callers decide whether to fail or force escalation.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionClearLogs, ActionRestartService, ActionRunDiagnostics, ActionEscalateToHuman:
		return Action(s), nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// Valid reports whether the action is one of the four allowed values.
func (a Action) Valid() bool {
	switch a {
	case ActionClearLogs, ActionRestartService, ActionRunDiagnostics, ActionEscalateToHuman:
		return true
	}
	return false
}

// Safe reports whether the action is non-mutating. Only safe actions may
// accompany low-confidence decisions.
func (a Action) Safe() bool {
	return a == ActionRunDiagnostics || a == ActionEscalateToHuman
}

// Decision is the structured output of incident analysis, before and after
// policy validation.
type Decision struct {
	Analysis          string `json:"analysis"`
	RecommendedAction Action `json:"recommended_action"`
	ConfidenceScore   int    `json:"confidence_score"`
	Explanation       string `json:"explanation"`
}

// Policy carries the confidence thresholds the orchestrator branches on.
type Policy struct {
	AutoExecuteThreshold int `json:"auto_execute_threshold" yaml:"auto_execute_threshold"`
	EscalateThreshold    int `json:"escalate_threshold" yaml:"escalate_threshold"`
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		AutoExecuteThreshold: 80,
		EscalateThreshold:    80,
	}
}

// Envelope is the complete evaluation result returned to callers.
// It is constructed once per request and never persisted.
type Envelope struct {
	Analysis          string `json:"analysis"`
	RecommendedAction Action `json:"recommended_action"`
	ConfidenceScore   int    `json:"confidence_score"`
	Explanation       string `json:"explanation"`
	RunbookContext    string `json:"runbook_context"`
	TraceID           string `json:"trace_id"`
	ModelID           string `json:"model_id"`
	Policy            Policy `json:"policy"`
}

// RunbookContextLimit caps the runbook excerpt included in responses.
const RunbookContextLimit = 500

// NewEnvelope builds an envelope from a validated decision, truncating the
// runbook context to RunbookContextLimit bytes.
func NewEnvelope(d Decision, runbookContext, traceID, modelID string) Envelope {
	if len(runbookContext) > RunbookContextLimit {
		runbookContext = runbookContext[:RunbookContextLimit]
	}
	return Envelope{
		Analysis:          d.Analysis,
		RecommendedAction: d.RecommendedAction,
		ConfidenceScore:   d.ConfidenceScore,
		Explanation:       d.Explanation,
		RunbookContext:    runbookContext,
		TraceID:           traceID,
		ModelID:           modelID,
		Policy:            DefaultPolicy(),
	}
}

// FallbackDecision is the safe decision used whenever analysis fails.
// It always escalates with minimal confidence.
func FallbackDecision(reason string) Decision {
	if len(reason) > 100 {
		reason = reason[:100]
	}
	return Decision{
		Analysis:          "System error during analysis",
		RecommendedAction: ActionEscalateToHuman,
		ConfidenceScore:   10,
		Explanation:       fmt.Sprintf("An error occurred during analysis. Human review required. Error: %s", reason),
	}
}
