package authz

import (
	"fmt"
	"strings"
)

// Allowlist maps capabilities to the agent IDs allowed to use them.
type Allowlist struct {
	executionAgentID string
	triageAgentID    string
}

// NewAllowlist builds the allowlist from the two configured identities.
//
// Policy rules:
//   - execute_runbook: only the execution agent
//   - get_secret: only the execution agent
//   - run_diagnostics: execution agent plus triage agent (if configured)
func NewAllowlist(executionAgentID, triageAgentID string) *Allowlist {
	return &Allowlist{
		executionAgentID: strings.TrimSpace(executionAgentID),
		triageAgentID:    strings.TrimSpace(triageAgentID),
	}
}

// allowed returns the set of agent IDs permitted for a capability.
func (a *Allowlist) allowed(cap Capability) map[string]bool {
	set := make(map[string]bool)
	switch cap {
	case CapExecuteRunbook, CapGetSecret:
		if a.executionAgentID != "" {
			set[a.executionAgentID] = true
		}
	case CapRunDiagnostics:
		if a.executionAgentID != "" {
			set[a.executionAgentID] = true
		}
		if a.triageAgentID != "" {
			set[a.triageAgentID] = true
		}
	}
	return set
}

// Authorize checks an agent against the allowlist for a capability.
//
// Returns the trimmed agent ID on success. A missing or blank agent ID
// is an InvalidRequestError; an empty allowlist or an unknown agent is a
// ForbiddenError. The distinction matters: the first is a malformed
// request, the second is a policy decision.
func (a *Allowlist) Authorize(agentID string, cap Capability) (string, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return "", &InvalidRequestError{Msg: "agent_id is required and cannot be empty"}
	}

	allowed := a.allowed(cap)
	if len(allowed) == 0 {
		return "", &ForbiddenError{Msg: fmt.Sprintf(
			"No agents configured for capability '%s'. Set AEGIS_EXECUTION_AGENT_ID environment variable.", cap)}
	}

	if !allowed[agentID] {
		return "", &ForbiddenError{Msg: fmt.Sprintf(
			"Agent '%s' is not authorized for capability '%s'", agentID, cap)}
	}

	return agentID, nil
}
