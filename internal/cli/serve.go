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
	"github.com/aegisops/aegis/internal/httpapi"
	"github.com/aegisops/aegis/internal/llm"
	"github.com/aegisops/aegis/internal/pipeline"
	"github.com/aegisops/aegis/internal/runbook"
)

var (
	servePort       int
	serveRunbookDir string
	serveAuditLog   string
	serveMock       bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP listen port (default 5000)")
	serveCmd.Flags().StringVar(&serveRunbookDir, "runbook-dir", "", "Directory of category runbook files")
	serveCmd.Flags().StringVar(&serveAuditLog, "audit-log", "", "Path to audit log JSONL file")
	serveCmd.Flags().BoolVar(&serveMock, "mock", false, "Use the deterministic mock model")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the incident decision service",
	Long:  "Runs the HTTP decision service.\nEvery evaluation passes through the confidence policy; failures degrade to a safe escalation.\nRunbook files hot-reload when the directory changes.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, hash, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.DecisionPort = servePort
	}
	if serveRunbookDir != "" {
		cfg.RunbookDir = serveRunbookDir
	}
	if serveAuditLog != "" {
		cfg.AuditLogPath = serveAuditLog
	}
	if serveMock {
		cfg.Model.Mock = true
	}

	generator := llm.New(llm.Config{
		APIURL:    cfg.Model.URL,
		APIKey:    cfg.Model.APIKey,
		Model:     cfg.Model.ID,
		MaxTokens: cfg.Model.MaxTokens,
		Timeout:   cfg.Model.Timeout,
		Mock:      cfg.Model.Mock,
	})

	store := runbook.NewStore(cfg.RunbookDir)
	resolver := &runbook.Resolver{
		Remote: runbook.NewRemoteClient(cfg.RemoteRunbookURL),
		Store:  store,
	}

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
		defer auditLog.Close()
	}

	ev := &pipeline.Evaluator{
		Resolver:   resolver,
		Generator:  generator,
		Audit:      auditLog,
		ConfigHash: hash,
	}

	srv := httpapi.NewDecisionServer(cfg.DecisionPort, ev, generator.ModelID(), cfg.Model.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hot-reload runbook files on change
	watcher, err := runbook.NewWatcher(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: runbook hot-reload disabled: %v\n", err)
	}
	if watcher != nil {
		go watcher.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down decision service...")
		cancel()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		srv.Stop(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "aegis decision service listening on :%d\n", cfg.DecisionPort)
	fmt.Fprintf(os.Stderr, "Model: %s", generator.ModelID())
	if cfg.Model.Mock {
		fmt.Fprintf(os.Stderr, " (mock)")
	}
	fmt.Fprintln(os.Stderr)
	if cfg.RunbookDir != "" {
		fmt.Fprintf(os.Stderr, "Runbooks: %s (hot-reload enabled)\n", cfg.RunbookDir)
	}
	fmt.Fprintln(os.Stderr)

	return srv.Start(ctx)
}
