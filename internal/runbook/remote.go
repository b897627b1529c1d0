package runbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aegisops/aegis/internal/model"
)

// RemoteTimeout bounds each remote context fetch. The remote endpoint is
// an optimization, not a dependency; slow answers are worse than none.
const RemoteTimeout = 3 * time.Second

// RemoteClient fetches runbook context from a remote flow endpoint.
type RemoteClient struct {
	url    string
	client *http.Client
}

// NewRemoteClient creates a client for the given endpoint URL.
// An empty URL disables remote fetching; Fetch then always errors.
func NewRemoteClient(url string) *RemoteClient {
	return &RemoteClient{
		url:    url,
		client: &http.Client{Timeout: RemoteTimeout},
	}
}

// Configured reports whether a remote endpoint is set.
func (c *RemoteClient) Configured() bool {
	return c != nil && c.url != ""
}

// Fetch posts the category and incident text and returns the context
// string the endpoint produced. Empty context is an error so callers
// fall back to local runbooks.
func (c *RemoteClient) Fetch(ctx context.Context, category model.Category, incidentText string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("runbook: remote endpoint not configured")
	}

	body, _ := json.Marshal(map[string]string{
		"category":      string(category),
		"incident_text": incidentText,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("runbook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("runbook: remote fetch failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("runbook: remote HTTP %d", resp.StatusCode)
	}

	var result struct {
		Context string `json:"context"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("runbook: decode remote response: %w", err)
	}
	if result.Context == "" {
		return "", fmt.Errorf("runbook: remote returned empty context")
	}
	return result.Context, nil
}

// Resolver combines the remote client and the local store into the full
// resolution chain. It never fails: something is always returned.
type Resolver struct {
	Remote *RemoteClient
	Store  *Store
}

// Context resolves runbook context for an incident. Remote first when
// configured, then the local store (which itself falls back to built-ins).
func (r *Resolver) Context(ctx context.Context, category model.Category, incidentText string) string {
	if r.Remote.Configured() {
		content, err := r.Remote.Fetch(ctx, category, incidentText)
		if err == nil {
			return content
		}
		fmt.Fprintf(os.Stderr, "runbook: remote unavailable, using local: %v\n", err)
	}
	return r.Store.Get(category)
}
