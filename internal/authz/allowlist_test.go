package authz

import (
	"errors"
	"testing"
)

const (
	execAgent   = "11111111-1111-1111-1111-111111111111"
	triageAgent = "22222222-2222-2222-2222-222222222222"
)

func TestAuthorizeExecutionAgent(t *testing.T) {
	al := NewAllowlist(execAgent, triageAgent)

	for _, cap := range []Capability{CapExecuteRunbook, CapRunDiagnostics, CapGetSecret} {
		got, err := al.Authorize(execAgent, cap)
		if err != nil {
			t.Errorf("execution agent denied %s: %v", cap, err)
		}
		if got != execAgent {
			t.Errorf("returned agent = %q", got)
		}
	}
}

func TestAuthorizeTriageAgent(t *testing.T) {
	al := NewAllowlist(execAgent, triageAgent)

	if _, err := al.Authorize(triageAgent, CapRunDiagnostics); err != nil {
		t.Errorf("triage agent denied run_diagnostics: %v", err)
	}

	var forbidden *ForbiddenError
	if _, err := al.Authorize(triageAgent, CapExecuteRunbook); !errors.As(err, &forbidden) {
		t.Errorf("triage agent should be forbidden execute_runbook, got %v", err)
	}
	if _, err := al.Authorize(triageAgent, CapGetSecret); !errors.As(err, &forbidden) {
		t.Errorf("triage agent should be forbidden get_secret, got %v", err)
	}
}

func TestAuthorizeEmptyAgentID(t *testing.T) {
	al := NewAllowlist(execAgent, "")

	var invalid *InvalidRequestError
	if _, err := al.Authorize("", CapRunDiagnostics); !errors.As(err, &invalid) {
		t.Errorf("empty agent should be InvalidRequestError, got %v", err)
	}
	// Whitespace-only is also invalid, never forbidden.
	if _, err := al.Authorize("   ", CapRunDiagnostics); !errors.As(err, &invalid) {
		t.Errorf("blank agent should be InvalidRequestError, got %v", err)
	}
}

func TestAuthorizeFailClosed(t *testing.T) {
	al := NewAllowlist("", "")

	var forbidden *ForbiddenError
	if _, err := al.Authorize(execAgent, CapRunDiagnostics); !errors.As(err, &forbidden) {
		t.Errorf("no configured agents should be ForbiddenError, got %v", err)
	}
}

func TestAuthorizeUnknownAgent(t *testing.T) {
	al := NewAllowlist(execAgent, triageAgent)

	var forbidden *ForbiddenError
	if _, err := al.Authorize("33333333-3333-3333-3333-333333333333", CapRunDiagnostics); !errors.As(err, &forbidden) {
		t.Errorf("unknown agent should be ForbiddenError, got %v", err)
	}
}

func TestAuthorizeTrimsAgentID(t *testing.T) {
	al := NewAllowlist(execAgent, "")
	got, err := al.Authorize("  "+execAgent+"  ", CapGetSecret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != execAgent {
		t.Errorf("agent not trimmed: %q", got)
	}
}

func TestInfo(t *testing.T) {
	info := Info(execAgent, CapRunDiagnostics)
	if info.AuthorizedAgentID != execAgent {
		t.Errorf("agent = %q", info.AuthorizedAgentID)
	}
	if info.AuthorizationCheck != "passed" {
		t.Errorf("check = %q", info.AuthorizationCheck)
	}
	if info.Policy != "run_diagnostics" {
		t.Errorf("policy = %q", info.Policy)
	}
	if info.MutatingActionsTaken {
		t.Error("mutating_actions_taken should default to false")
	}
}
