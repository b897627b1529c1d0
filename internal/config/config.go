// Package config holds process configuration for both services.
// Precedence: defaults, then the YAML file, then environment variables.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ModelConfig configures the decision model client.
type ModelConfig struct {
	URL       string        `yaml:"url"`
	APIKey    string        `yaml:"api_key"`
	ID        string        `yaml:"id"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
	Mock      bool          `yaml:"mock"`
}

// VaultConfig configures the KV v2 reachability probe.
type VaultConfig struct {
	Addr       string `yaml:"addr"`
	Token      string `yaml:"token"`
	Namespace  string `yaml:"namespace"`
	KVMount    string `yaml:"kv_mount"`
	SecretPath string `yaml:"secret_path"`
}

// Config is the full process configuration. One instance is built at
// startup and passed down; nothing reads the environment after load.
type Config struct {
	DecisionPort int `yaml:"decision_port"`
	ToolPort     int `yaml:"tool_port"`

	ExecutionAgentID string `yaml:"execution_agent_id"`
	TriageAgentID    string `yaml:"triage_agent_id"`
	BearerToken      string `yaml:"bearer_token"`
	ExecToken        string `yaml:"exec_token"`

	RunbookDir        string `yaml:"runbook_dir"`
	RemoteRunbookURL  string `yaml:"remote_runbook_url"`
	AuditLogPath      string `yaml:"audit_log"`

	Model ModelConfig `yaml:"model"`
	Vault VaultConfig `yaml:"vault"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		DecisionPort: 5000,
		ToolPort:     8080,
		Model: ModelConfig{
			ID:        "ibm/granite-3-8b-instruct",
			MaxTokens: 500,
			Timeout:   60 * time.Second,
		},
		Vault: VaultConfig{
			KVMount:    "secret",
			SecretPath: "aegis/mcp",
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. Empty path or missing file means defaults plus environment.
// Invalid YAML returns an error.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash is Load plus the SHA-256 hash of the raw YAML bytes,
// recorded in audit entries so decisions can be tied to the exact
// configuration that produced them. When no file exists the hash is the
// SHA-256 of empty input.
func LoadWithHash(path string) (*Config, string, error) {
	cfg := DefaultConfig()

	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, "", fmt.Errorf("failed to read config: %w", err)
			}
			data = nil
		}
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	if data != nil {
		// Start with defaults, YAML overwrites only specified fields
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, "", fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, hash, nil
}

// applyEnv overlays environment variables. Secrets and identities usually
// arrive this way in deployment.
func applyEnv(cfg *Config) {
	setString(&cfg.ExecutionAgentID, "AEGIS_EXECUTION_AGENT_ID")
	setString(&cfg.TriageAgentID, "AEGIS_TRIAGE_AGENT_ID")
	setString(&cfg.BearerToken, "MCP_BEARER_TOKEN")
	setString(&cfg.ExecToken, "AEGIS_EXEC_TOKEN")
	setString(&cfg.RunbookDir, "AEGIS_RUNBOOK_DIR")
	setString(&cfg.RemoteRunbookURL, "LANGFLOW_RUNBOOK_URL")
	setString(&cfg.AuditLogPath, "AEGIS_AUDIT_LOG")

	setString(&cfg.Model.URL, "AEGIS_MODEL_URL")
	setString(&cfg.Model.APIKey, "AEGIS_MODEL_API_KEY")
	setString(&cfg.Model.ID, "AEGIS_MODEL_ID")
	if os.Getenv("AEGIS_MOCK_MODEL") == "1" {
		cfg.Model.Mock = true
	}

	setString(&cfg.Vault.Addr, "VAULT_ADDR")
	setString(&cfg.Vault.Token, "VAULT_TOKEN")
	setString(&cfg.Vault.Namespace, "VAULT_NAMESPACE")
	setString(&cfg.Vault.KVMount, "VAULT_KV_MOUNT")
	setString(&cfg.Vault.SecretPath, "VAULT_SECRET_PATH")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
