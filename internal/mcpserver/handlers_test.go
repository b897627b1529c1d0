package mcpserver

import (
	"context"
	"testing"

	"github.com/aegisops/aegis/internal/authz"
	"github.com/aegisops/aegis/internal/tools"
)

const (
	execAgent   = "11111111-1111-1111-1111-111111111111"
	triageAgent = "22222222-2222-2222-2222-222222222222"
)

func newTestServer() *Server {
	return New(
		authz.NewAllowlist(execAgent, triageAgent),
		&tools.Executor{ExecToken: "tok-abc"},
		nil,
	)
}

func TestHandleGetSecretAuthorized(t *testing.T) {
	s := newTestServer()

	res, out, err := s.handleGetSecret(context.Background(), nil, GetSecretInput{
		AgentID:    execAgent,
		SecretName: "execution_token",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != nil && res.IsError {
		t.Fatalf("unexpected error result: %+v", out)
	}
	if out.Secret == nil || out.Secret.Value != "tok-abc" {
		t.Errorf("secret = %+v", out.Secret)
	}
	if out.Authorization == nil || out.Authorization.AuthorizationCheck != "passed" {
		t.Errorf("authorization = %+v", out.Authorization)
	}
}

func TestHandleGetSecretForbidden(t *testing.T) {
	s := newTestServer()

	res, out, err := s.handleGetSecret(context.Background(), nil, GetSecretInput{
		AgentID:    triageAgent,
		SecretName: "execution_token",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil || !res.IsError {
		t.Fatal("triage agent should be denied get_secret")
	}
	if out.Denied == "" {
		t.Error("denial reason missing")
	}
	if out.Secret != nil {
		t.Error("secret leaked on denial")
	}
}

func TestHandleRunDiagnosticsTriage(t *testing.T) {
	s := newTestServer()

	res, out, err := s.handleRunDiagnostics(context.Background(), nil, RunDiagnosticsInput{
		AgentID:      triageAgent,
		IncidentText: "disk space low on /var",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != nil && res.IsError {
		t.Fatalf("triage agent should be allowed diagnostics: %+v", out)
	}
	if out.Result == nil || len(out.Result.Diagnostics.LikelyCauses) == 0 {
		t.Errorf("result = %+v", out.Result)
	}
}

func TestHandleExecuteRunbookAuthorized(t *testing.T) {
	s := newTestServer()

	res, out, err := s.handleExecuteRunbook(context.Background(), nil, ExecuteRunbookInput{
		AgentID: execAgent,
		Action:  "clear_logs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != nil && res.IsError {
		t.Fatalf("unexpected error result: %+v", out)
	}
	if out.Result == nil || out.Result.Status != "simulated_success" {
		t.Errorf("result = %+v", out.Result)
	}
	if !out.Simulated {
		t.Error("simulated flag missing")
	}
}

func TestHandleExecuteRunbookEmptyAgent(t *testing.T) {
	s := newTestServer()

	res, out, err := s.handleExecuteRunbook(context.Background(), nil, ExecuteRunbookInput{
		Action: "clear_logs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil || !res.IsError {
		t.Fatal("missing agent_id should be an error result")
	}
	if out.Result != nil {
		t.Error("result produced without authorization")
	}
}
