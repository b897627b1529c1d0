package mcpserver

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aegisops/aegis/internal/authz"
	"github.com/aegisops/aegis/internal/tools"
)

// --- Input/Output types ---

// GetSecretInput defines parameters for the get_secret tool.
type GetSecretInput struct {
	AgentID    string `json:"agent_id" jsonschema:"UUID of the calling agent"`
	SecretName string `json:"secret_name" jsonschema:"name of the secret to retrieve"`
}

// GetSecretOutput contains the secret or denial details.
type GetSecretOutput struct {
	Secret        *tools.SecretResult      `json:"secret,omitempty"`
	Authorization *authz.AuthorizationInfo `json:"authorization,omitempty"`
	Denied        string                   `json:"denied,omitempty"`
}

// RunDiagnosticsInput defines parameters for the run_diagnostics tool.
type RunDiagnosticsInput struct {
	AgentID      string `json:"agent_id" jsonschema:"UUID of the calling agent"`
	IncidentText string `json:"incident_text" jsonschema:"incident description to diagnose"`
}

// RunDiagnosticsOutput contains the diagnostics or denial details.
type RunDiagnosticsOutput struct {
	Result        *tools.DiagnosticsResult `json:"result,omitempty"`
	Authorization *authz.AuthorizationInfo `json:"authorization,omitempty"`
	Denied        string                   `json:"denied,omitempty"`
}

// ExecuteRunbookInput defines parameters for the execute_runbook tool.
type ExecuteRunbookInput struct {
	AgentID    string         `json:"agent_id" jsonschema:"UUID of the calling agent"`
	Action     string         `json:"action" jsonschema:"runbook action: clear_logs, restart_service, or run_diagnostics"`
	Parameters map[string]any `json:"parameters,omitempty" jsonschema:"optional action parameters"`
}

// ExecuteRunbookOutput contains the simulated execution record or denial details.
type ExecuteRunbookOutput struct {
	Result        *tools.RunbookResult     `json:"result,omitempty"`
	Authorization *authz.AuthorizationInfo `json:"authorization,omitempty"`
	Simulated     bool                     `json:"simulated,omitempty"`
	Denied        string                   `json:"denied,omitempty"`
}

// --- Handlers ---

func (s *Server) handleGetSecret(ctx context.Context, req *mcpsdk.CallToolRequest, input GetSecretInput) (*mcpsdk.CallToolResult, GetSecretOutput, error) {
	agentID, err := s.allowlist.Authorize(input.AgentID, authz.CapGetSecret)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, GetSecretOutput{Denied: err.Error()}, nil
	}

	info := authz.Info(agentID, authz.CapGetSecret)
	info.VaultSecretLoaded = s.vaultLoaded(ctx)
	secret := s.executor.GetSecret(input.SecretName)
	return nil, GetSecretOutput{Secret: &secret, Authorization: &info}, nil
}

func (s *Server) handleRunDiagnostics(ctx context.Context, req *mcpsdk.CallToolRequest, input RunDiagnosticsInput) (*mcpsdk.CallToolResult, RunDiagnosticsOutput, error) {
	agentID, err := s.allowlist.Authorize(input.AgentID, authz.CapRunDiagnostics)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, RunDiagnosticsOutput{Denied: err.Error()}, nil
	}

	info := authz.Info(agentID, authz.CapRunDiagnostics)
	info.VaultSecretLoaded = s.vaultLoaded(ctx)
	result := s.executor.RunDiagnostics(input.IncidentText)
	return nil, RunDiagnosticsOutput{Result: &result, Authorization: &info}, nil
}

func (s *Server) handleExecuteRunbook(ctx context.Context, req *mcpsdk.CallToolRequest, input ExecuteRunbookInput) (*mcpsdk.CallToolResult, ExecuteRunbookOutput, error) {
	agentID, err := s.allowlist.Authorize(input.AgentID, authz.CapExecuteRunbook)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, ExecuteRunbookOutput{Denied: err.Error()}, nil
	}

	info := authz.Info(agentID, authz.CapExecuteRunbook)
	info.VaultSecretLoaded = s.vaultLoaded(ctx)
	result := s.executor.ExecuteRunbook(input.Action, input.Parameters)
	return nil, ExecuteRunbookOutput{Result: &result, Authorization: &info, Simulated: true}, nil
}
