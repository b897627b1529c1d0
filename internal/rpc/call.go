package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aegisops/aegis/internal/authz"
	"github.com/aegisops/aegis/internal/vault"
)

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// capabilityFor maps a tool name to the capability it requires.
func capabilityFor(tool string) (authz.Capability, bool) {
	switch tool {
	case "get_secret":
		return authz.CapGetSecret, true
	case "run_diagnostics":
		return authz.CapRunDiagnostics, true
	case "execute_runbook":
		return authz.CapExecuteRunbook, true
	}
	return "", false
}

// toolsCall authorizes and executes one tool invocation. Tool failures
// are reported as isError results, not protocol errors: the request was
// well-formed JSON-RPC even when the call itself is rejected.
func (r *Router) toolsCall(ctx context.Context, req Request) *Response {
	if len(req.ID) == 0 {
		return nil
	}

	var params callParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return &Response{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error:   &Error{Code: CodeInternalError, Message: fmt.Sprintf("Internal error: %v", err)},
			}
		}
	}

	cap, ok := capabilityFor(params.Name)
	if !ok {
		return r.errorResult(req, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	agentID, _ := params.Arguments["agent_id"].(string)
	agentID, err := r.Allowlist.Authorize(agentID, cap)
	if err != nil {
		var invalid *authz.InvalidRequestError
		var forbidden *authz.ForbiddenError
		switch {
		case errors.As(err, &invalid):
			return r.errorResult(req, "Bad Request: "+invalid.Msg)
		case errors.As(err, &forbidden):
			return r.errorResult(req, "Forbidden: "+forbidden.Msg)
		default:
			return r.errorResult(req, "Error: "+err.Error())
		}
	}

	info := authz.Info(agentID, cap)
	info.VaultSecretLoaded = r.ProbeStatus(ctx).Loaded

	payload := map[string]any{"authorization": info}

	switch params.Name {
	case "get_secret":
		name, _ := params.Arguments["secret_name"].(string)
		payload["secret"] = r.Executor.GetSecret(name)

	case "run_diagnostics":
		incident, _ := params.Arguments["incident_text"].(string)
		payload["result"] = r.Executor.RunDiagnostics(incident)

	case "execute_runbook":
		action, _ := params.Arguments["action"].(string)
		parameters, _ := params.Arguments["parameters"].(map[string]any)
		payload["result"] = r.Executor.ExecuteRunbook(action, parameters)
		payload["safety"] = map[string]any{
			"simulated": true,
			"note":      "Simulated execution. No infrastructure was modified.",
		}
	}

	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return r.errorResult(req, "Error: "+err.Error())
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []map[string]any{{"type": "text", "text": string(text)}},
			"isError": false,
		},
	}
}

// errorResult wraps a tool-level failure as an isError content result.
func (r *Router) errorResult(req Request, msg string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []map[string]any{{"type": "text", "text": msg}},
			"isError": true,
		},
	}
}

// ProbeStatus reports the Vault secret status, tolerating a nil prober.
func (r *Router) ProbeStatus(ctx context.Context) vault.Status {
	if r.Prober == nil {
		return vault.Status{}
	}
	return r.Prober.Probe(ctx)
}
