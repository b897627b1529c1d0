package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aegisops/aegis/internal/audit"
	"github.com/aegisops/aegis/internal/authz"
	"github.com/aegisops/aegis/internal/httpapi"
	"github.com/aegisops/aegis/internal/mcpserver"
	"github.com/aegisops/aegis/internal/rpc"
	"github.com/aegisops/aegis/internal/tools"
	"github.com/aegisops/aegis/internal/vault"
)

var (
	mcpPort     int
	mcpStdio    bool
	mcpAuditLog string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().IntVar(&mcpPort, "port", 0, "HTTP listen port (default 8080)")
	mcpCmd.Flags().BoolVar(&mcpStdio, "stdio", false, "Serve MCP over stdio instead of HTTP")
	mcpCmd.Flags().StringVar(&mcpAuditLog, "audit-log", "", "Path to audit log JSONL file")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the agent tool service",
	Long:  "Runs the authorization-gated tool service.\nExposes get_secret, run_diagnostics, and execute_runbook over HTTP (REST, JSON-RPC, SSE) or MCP stdio.\nEvery call is checked against the per-capability agent allowlist.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if mcpPort != 0 {
		cfg.ToolPort = mcpPort
	}
	if mcpAuditLog != "" {
		cfg.AuditLogPath = mcpAuditLog
	}

	allowlist := authz.NewAllowlist(cfg.ExecutionAgentID, cfg.TriageAgentID)
	executor := &tools.Executor{ExecToken: cfg.ExecToken}
	prober := vault.NewProber(cfg.Vault)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if mcpStdio {
		srv := mcpserver.New(allowlist, executor, prober)

		go func() {
			<-sigCh
			fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
			cancel()
		}()

		fmt.Fprintln(os.Stderr, "aegis MCP server running on stdio")
		fmt.Fprintln(os.Stderr)
		return srv.Run(ctx)
	}

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
		defer auditLog.Close()
	}

	router := &rpc.Router{
		Allowlist: allowlist,
		Executor:  executor,
		Prober:    prober,
	}
	srv := httpapi.NewToolServer(cfg.ToolPort, router, cfg.BearerToken, auditLog)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down tool service...")
		cancel()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		srv.Stop(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "aegis tool service listening on :%d\n", cfg.ToolPort)
	if cfg.ExecutionAgentID == "" {
		fmt.Fprintln(os.Stderr, "warning: AEGIS_EXECUTION_AGENT_ID not set, all tool calls will be denied")
	}
	fmt.Fprintln(os.Stderr)

	return srv.Start(ctx)
}
