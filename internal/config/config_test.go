package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DecisionPort != 5000 || cfg.ToolPort != 8080 {
		t.Errorf("unexpected default ports: %d %d", cfg.DecisionPort, cfg.ToolPort)
	}
	if cfg.Model.ID != "ibm/granite-3-8b-instruct" {
		t.Errorf("default model id = %q", cfg.Model.ID)
	}
	if cfg.Vault.KVMount != "secret" || cfg.Vault.SecretPath != "aegis/mcp" {
		t.Errorf("unexpected vault defaults: %+v", cfg.Vault)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.DecisionPort != 5000 {
		t.Errorf("decision port = %d", cfg.DecisionPort)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aegis.yaml")
	data := "decision_port: 6000\nmodel:\n  id: test/model\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DecisionPort != 6000 {
		t.Errorf("decision_port = %d, want 6000", cfg.DecisionPort)
	}
	if cfg.Model.ID != "test/model" {
		t.Errorf("model id = %q", cfg.Model.ID)
	}
	// Unspecified fields keep defaults.
	if cfg.ToolPort != 8080 {
		t.Errorf("tool_port = %d, want default 8080", cfg.ToolPort)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("decision_port: [not an int"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aegis.yaml")
	if err := os.WriteFile(path, []byte("execution_agent_id: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AEGIS_EXECUTION_AGENT_ID", "from-env")
	t.Setenv("AEGIS_MOCK_MODEL", "1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ExecutionAgentID != "from-env" {
		t.Errorf("execution_agent_id = %q, env should win", cfg.ExecutionAgentID)
	}
	if !cfg.Model.Mock {
		t.Error("AEGIS_MOCK_MODEL=1 should enable mock mode")
	}
}

func TestLoadWithHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aegis.yaml")
	if err := os.WriteFile(path, []byte("tool_port: 9000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, hash1, err := LoadWithHash(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(hash1, "sha256:") {
		t.Errorf("hash format: %q", hash1)
	}

	_, hash2, err := LoadWithHash("")
	if err != nil {
		t.Fatal(err)
	}
	if hash1 == hash2 {
		t.Error("file hash should differ from empty-input hash")
	}
}
