package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const starterConfig = `# aegis configuration
decision_port: 5000
tool_port: 8080

# Agent identities (usually set via AEGIS_EXECUTION_AGENT_ID / AEGIS_TRIAGE_AGENT_ID)
execution_agent_id: ""
triage_agent_id: ""

# Local runbook directory (files named <category>.md, unknown.md as fallback)
runbook_dir: ""

# Hash-chained JSONL audit log; empty disables auditing
audit_log: ""

model:
  id: ibm/granite-3-8b-instruct
  url: ""
  max_tokens: 500
  timeout: 60s
  mock: false

vault:
  kv_mount: secret
  secret_path: aegis/mcp
`

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "aegis.yaml"
		if len(args) > 0 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", path)
		}
		if err := os.WriteFile(path, []byte(starterConfig), 0644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
		return nil
	},
}
