package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aegisops/aegis/internal/llm"
	"github.com/aegisops/aegis/internal/model"
	"github.com/aegisops/aegis/internal/pipeline"
	"github.com/aegisops/aegis/internal/runbook"
)

var (
	evalCategory string
	evalRole     string
	evalMock     bool
)

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&evalCategory, "category", "", "Incident category (latency/storage/auth/unknown)")
	evaluateCmd.Flags().StringVar(&evalRole, "role", "", "Reporter role (SRE/Developer/Manager/Other)")
	evaluateCmd.Flags().BoolVar(&evalMock, "mock", false, "Use the deterministic mock model")
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <incident text>",
	Short: "Evaluate one incident and print the decision envelope",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, hash, err := loadConfig()
	if err != nil {
		return err
	}
	if evalMock {
		cfg.Model.Mock = true
	}

	req := model.IncidentRequest{
		IncidentText: strings.Join(args, " "),
		Category:     model.Category(evalCategory),
		ReporterRole: model.ReporterRole(evalRole),
	}
	if err := req.Normalize(); err != nil {
		return err
	}

	generator := llm.New(llm.Config{
		APIURL:    cfg.Model.URL,
		APIKey:    cfg.Model.APIKey,
		Model:     cfg.Model.ID,
		MaxTokens: cfg.Model.MaxTokens,
		Timeout:   cfg.Model.Timeout,
		Mock:      cfg.Model.Mock,
	})

	ev := &pipeline.Evaluator{
		Resolver: &runbook.Resolver{
			Remote: runbook.NewRemoteClient(cfg.RemoteRunbookURL),
			Store:  runbook.NewStore(cfg.RunbookDir),
		},
		Generator:  generator,
		ConfigHash: hash,
	}

	env := ev.Evaluate(context.Background(), req)
	out, _ := json.MarshalIndent(env, "", "  ")
	fmt.Println(string(out))
	return nil
}
