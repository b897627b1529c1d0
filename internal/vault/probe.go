// Package vault checks whether the service's secret is readable from a
// HashiCorp Vault KV v2 mount. Only the load status leaves this package;
// the secret value never does.
package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aegisops/aegis/internal/config"
)

// Status reports the outcome of a probe. Err is a human-readable reason
// when Loaded is false.
type Status struct {
	Loaded bool   `json:"vault_secret_loaded"`
	Err    string `json:"error,omitempty"`
}

// ProbeTimeout bounds each Vault request.
const ProbeTimeout = 10 * time.Second

// Prober checks secret readability against a Vault server.
type Prober struct {
	cfg    config.VaultConfig
	client *http.Client
}

// NewProber creates a prober for the given Vault configuration.
func NewProber(cfg config.VaultConfig) *Prober {
	return &Prober{
		cfg:    cfg,
		client: &http.Client{Timeout: ProbeTimeout},
	}
}

// Configured reports whether the minimum settings (address and token)
// are present.
func (p *Prober) Configured() bool {
	return p.cfg.Addr != "" && p.cfg.Token != ""
}

// Probe attempts to read the configured secret and reports only whether
// it exists and has data. Any failure degrades to Loaded=false with a
// reason; a probe never fails a tool call.
func (p *Prober) Probe(ctx context.Context) Status {
	if !p.Configured() {
		return Status{Err: "Vault not configured (VAULT_ADDR or VAULT_TOKEN missing)"}
	}

	// KV v2 read path: {mount}/data/{path}
	url := fmt.Sprintf("%s/v1/%s/data/%s", p.cfg.Addr, p.cfg.KVMount, p.cfg.SecretPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Status{Err: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("X-Vault-Token", p.cfg.Token)
	if p.cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", p.cfg.Namespace)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Status{Err: err.Error()}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body struct {
			Data struct {
				Data map[string]any `json:"data"`
			} `json:"data"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err := json.Unmarshal(raw, &body); err != nil {
			return Status{Err: fmt.Sprintf("decode response: %v", err)}
		}
		if len(body.Data.Data) == 0 {
			return Status{Err: "Secret exists but has no data"}
		}
		return Status{Loaded: true}

	case http.StatusNotFound:
		return Status{Err: fmt.Sprintf("Secret not found at path: %s/%s", p.cfg.KVMount, p.cfg.SecretPath)}

	default:
		return Status{Err: fmt.Sprintf("Vault returned status %d", resp.StatusCode)}
	}
}
