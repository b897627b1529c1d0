// Package mcpserver exposes the tool surface over the MCP stdio
// transport for editor and agent-host integrations. It shares the
// allowlist, executor, and vault prober with the HTTP tool service so
// both transports enforce identical policy.
package mcpserver

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aegisops/aegis/internal/authz"
	"github.com/aegisops/aegis/internal/tools"
	"github.com/aegisops/aegis/internal/vault"
)

// Server wraps the MCP SDK server with agent authorization.
type Server struct {
	mcpServer *mcpsdk.Server
	allowlist *authz.Allowlist
	executor  *tools.Executor
	prober    *vault.Prober
}

// New creates the stdio MCP server with all tools registered.
func New(allowlist *authz.Allowlist, executor *tools.Executor, prober *vault.Prober) *Server {
	s := &Server{
		allowlist: allowlist,
		executor:  executor,
		prober:    prober,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "aegis-mcp-server",
			Version: "0.2.0",
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds the three authorization-gated tools.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_secret",
		Description: "Retrieve a secret value by name. Restricted to the execution agent.",
	}, s.handleGetSecret)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_diagnostics",
		Description: "Run read-only diagnostics against an incident description.",
	}, s.handleRunDiagnostics)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "execute_runbook",
		Description: "Execute a remediation runbook action (simulated). Restricted to the execution agent.",
	}, s.handleExecuteRunbook)
}

// vaultLoaded reports the Vault secret status, tolerating a nil prober.
func (s *Server) vaultLoaded(ctx context.Context) bool {
	if s.prober == nil {
		return false
	}
	return s.prober.Probe(ctx).Loaded
}
