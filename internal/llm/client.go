package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultModelID is the decision model used unless configuration overrides it.
const DefaultModelID = "ibm/granite-3-8b-instruct"

// Config holds parameters for the chat-completions client.
type Config struct {
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Mock      bool
}

// Generator produces raw model output for a prompt pair. Satisfied by
// Client and MockClient.
type Generator interface {
	Generate(ctx context.Context, systemMsg, userMsg string) (string, error)
	ModelID() string
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg Config
}

// New returns a Generator for the given configuration. Mock mode returns
// the deterministic offline client.
func New(cfg Config) Generator {
	if cfg.Model == "" {
		cfg.Model = DefaultModelID
	}
	if cfg.Mock {
		return &MockClient{Model: cfg.Model}
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{cfg: cfg}
}

// ModelID returns the configured model identifier.
func (c *Client) ModelID() string {
	return c.cfg.Model
}

// Generate sends the prompt and returns the raw completion text.
func (c *Client) Generate(ctx context.Context, systemMsg, userMsg string) (string, error) {
	messages := []map[string]string{
		{"role": "system", "content": systemMsg},
		{"role": "user", "content": userMsg},
	}

	body, _ := json.Marshal(map[string]interface{}{
		"model":       c.cfg.Model,
		"messages":    messages,
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": 0,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: c.cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || len(result.Choices) == 0 {
		return "", fmt.Errorf("empty model response")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
