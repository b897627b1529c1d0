// Package rpc implements the JSON-RPC 2.0 surface of the tool service.
// The method set is closed: dispatch is a switch over known method
// names, and anything else is a method-not-found error. Notifications
// produce no response.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aegisops/aegis/internal/authz"
	"github.com/aegisops/aegis/internal/tools"
	"github.com/aegisops/aegis/internal/vault"
)

// Protocol constants exchanged during initialize.
const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "aegis-mcp-server"
	ServerVersion   = "0.2.0"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInternalError  = -32603
)

// Request is an incoming JSON-RPC 2.0 message. A missing ID marks a
// notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outgoing JSON-RPC 2.0 message.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Router dispatches JSON-RPC requests to the tool layer.
type Router struct {
	Allowlist *authz.Allowlist
	Executor  *tools.Executor
	Prober    *vault.Prober
}

// Handle parses and dispatches one JSON-RPC message. A nil response
// means the message was a notification and the transport should send
// nothing back.
func (r *Router) Handle(ctx context.Context, raw []byte) *Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return &Response{
			JSONRPC: "2.0",
			ID:      json.RawMessage("null"),
			Error:   &Error{Code: CodeParseError, Message: fmt.Sprintf("Parse error: %v", err)},
		}
	}
	return r.Dispatch(ctx, req)
}

// Dispatch routes a parsed request by method name.
func (r *Router) Dispatch(ctx context.Context, req Request) *Response {
	switch req.Method {
	case "initialize":
		return r.respond(req, map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{"listChanged": false},
			},
			"serverInfo": map[string]any{
				"name":    ServerName,
				"version": ServerVersion,
			},
		})

	case "tools/list":
		return r.respond(req, map[string]any{"tools": ToolDefinitions()})

	case "tools/call":
		return r.toolsCall(ctx, req)

	case "notifications/initialized":
		// Notifications never get a response, acknowledged or not.
		return nil

	default:
		if len(req.ID) == 0 {
			return nil
		}
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("Method not found: %s", req.Method)},
		}
	}
}

func (r *Router) respond(req Request, result any) *Response {
	if len(req.ID) == 0 {
		return nil
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

// ToolDefinitions returns the tool catalog served by tools/list.
func ToolDefinitions() []map[string]any {
	agentID := map[string]any{
		"type":        "string",
		"description": "UUID of the calling agent, checked against the capability allowlist",
	}
	return []map[string]any{
		{
			"name":        "get_secret",
			"description": "Retrieve a secret value by name. Restricted to the execution agent.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"agent_id":    agentID,
					"secret_name": map[string]any{"type": "string", "description": "Name of the secret to retrieve"},
				},
				"required": []string{"agent_id", "secret_name"},
			},
		},
		{
			"name":        "run_diagnostics",
			"description": "Run read-only diagnostics against an incident description.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"agent_id":      agentID,
					"incident_text": map[string]any{"type": "string", "description": "Incident description to diagnose"},
				},
				"required": []string{"agent_id", "incident_text"},
			},
		},
		{
			"name":        "execute_runbook",
			"description": "Execute a remediation runbook action (simulated). Restricted to the execution agent.",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"agent_id":   agentID,
					"action":     map[string]any{"type": "string", "description": "Runbook action: clear_logs, restart_service, or run_diagnostics"},
					"parameters": map[string]any{"type": "object", "description": "Optional action parameters"},
				},
				"required": []string{"agent_id", "action"},
			},
		},
	}
}
