// Package pipeline wires the evaluation stages together: runbook
// context, prompt construction, model generation, decision extraction,
// and policy validation. The pipeline is total: every request produces
// an envelope, falling back to a safe escalation when any stage fails.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/aegisops/aegis/internal/audit"
	"github.com/aegisops/aegis/internal/extract"
	"github.com/aegisops/aegis/internal/llm"
	"github.com/aegisops/aegis/internal/model"
	"github.com/aegisops/aegis/internal/policy"
	"github.com/aegisops/aegis/internal/runbook"
	"github.com/aegisops/aegis/internal/trace"
)

// Evaluator runs incident evaluations. Audit is optional; a nil log
// disables recording without changing evaluation behavior.
type Evaluator struct {
	Resolver   *runbook.Resolver
	Generator  llm.Generator
	Audit      *audit.Log
	ConfigHash string
}

// Evaluate runs the full pipeline for one incident. It never returns an
// error: model failures, unparsable output, and panics all degrade to
// the fallback escalation envelope carrying the same trace ID.
func (e *Evaluator) Evaluate(ctx context.Context, req model.IncidentRequest) model.Envelope {
	traceID := trace.NewID()
	env := e.evaluate(ctx, req, traceID)
	e.record(traceID, env)
	return env
}

func (e *Evaluator) evaluate(ctx context.Context, req model.IncidentRequest, traceID string) (env model.Envelope) {
	var rbContent string

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "pipeline: panic recovered [trace=%s]: %v\n", traceID, r)
			env = e.fallback(traceID, rbContent, fmt.Sprintf("panic: %v", r))
		}
	}()

	rbContent = e.Resolver.Context(ctx, req.Category, req.IncidentText)

	systemMsg := llm.BuildSystemPrompt(runbook.FormatForPrompt(rbContent))
	userMsg := llm.BuildUserPrompt(req)

	raw, err := e.Generator.Generate(ctx, systemMsg, userMsg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: model generation failed [trace=%s]: %v\n", traceID, err)
		return e.fallback(traceID, rbContent, err.Error())
	}

	decision, err := extract.Decision(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: extraction failed [trace=%s]: %v\n", traceID, err)
		return e.fallback(traceID, rbContent, err.Error())
	}

	decision = policy.Validate(decision, req.IncidentText)
	return model.NewEnvelope(decision, rbContent, traceID, e.Generator.ModelID())
}

// fallback builds the safe escalation envelope for a failed evaluation.
func (e *Evaluator) fallback(traceID, rbContent, reason string) model.Envelope {
	return model.NewEnvelope(model.FallbackDecision(reason), rbContent, traceID, e.Generator.ModelID())
}

func (e *Evaluator) record(traceID string, env model.Envelope) {
	if e.Audit == nil {
		return
	}
	err := e.Audit.Record(audit.Entry{
		TraceID:    traceID,
		Kind:       audit.KindDecision,
		Action:     string(env.RecommendedAction),
		Confidence: env.ConfidenceScore,
		Outcome:    outcome(env),
		ConfigHash: e.ConfigHash,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: audit record failed [trace=%s]: %v\n", traceID, err)
	}
}

// outcome classifies the envelope for the audit trail using the policy
// thresholds: auto-executable, or requiring human review.
func outcome(env model.Envelope) string {
	if env.RecommendedAction.Safe() {
		return "review"
	}
	if env.ConfidenceScore >= env.Policy.AutoExecuteThreshold {
		return "auto_execute_eligible"
	}
	return "review"
}
