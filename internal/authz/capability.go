// Package authz enforces agent-based authorization for tool access.
//
// The model is deliberately small: a closed set of capabilities, an
// allowlist of agent IDs per capability built from configuration, and a
// fail-closed default. No agents configured means nothing is allowed.
package authz

// Capability identifies a tool-level permission.
type Capability string

const (
	CapExecuteRunbook Capability = "execute_runbook"
	CapRunDiagnostics Capability = "run_diagnostics"
	CapGetSecret      Capability = "get_secret"
)

// InvalidRequestError marks a malformed authorization request, typically
// a missing agent ID. HTTP transports map it to 400.
type InvalidRequestError struct {
	Msg string
}

func (e *InvalidRequestError) Error() string { return e.Msg }

// ForbiddenError marks an agent that is not allowed the requested
// capability. HTTP transports map it to 403.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

// AuthorizationInfo is the audit-friendly record attached to tool
// responses after a successful check.
type AuthorizationInfo struct {
	AuthorizedAgentID    string `json:"authorized_agent_id"`
	AuthorizationCheck   string `json:"authorization_check"`
	Policy               string `json:"policy"`
	VaultSecretLoaded    bool   `json:"vault_secret_loaded"`
	MutatingActionsTaken bool   `json:"mutating_actions_taken"`
}

// Info builds the authorization record for a validated agent.
func Info(agentID string, cap Capability) AuthorizationInfo {
	return AuthorizationInfo{
		AuthorizedAgentID:  agentID,
		AuthorizationCheck: "passed",
		Policy:             string(cap),
	}
}
