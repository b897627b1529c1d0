// Package cli wires the aegis commands: the decision service, the tool
// service, one-shot evaluation, and audit verification.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aegisops/aegis/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "aegis",
	Short: "Confidence-gated incident decisions and capability-gated agent tools",
	Long:  "Analyzes incident reports with a decision model, enforces confidence policy on every recommendation, and serves authorization-gated operator tools to AI agents.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the shared configuration and its hash from the
// --config path, environment, and defaults.
func loadConfig() (*config.Config, string, error) {
	cfg, hash, err := config.LoadWithHash(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, hash, nil
}
