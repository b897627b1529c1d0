package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aegisops/aegis/internal/audit"
	"github.com/aegisops/aegis/internal/authz"
	"github.com/aegisops/aegis/internal/rpc"
	"github.com/aegisops/aegis/internal/trace"
)

// SSEKeepalive is the interval between keepalive comments on an open
// event stream.
const SSEKeepalive = 30 * time.Second

// ToolServer serves the agent tool surface: REST tool endpoints, the
// JSON-RPC message endpoint, and the SSE stream.
type ToolServer struct {
	router *rpc.Router
	bearer string
	audit  *audit.Log
	srv    *http.Server

	// keepalive is overridable in tests; zero means SSEKeepalive.
	keepalive time.Duration
}

// NewToolServer creates the tool service listening on port. An empty
// bearer token disables authentication; that is logged loudly because
// it should only happen in local development.
func NewToolServer(port int, router *rpc.Router, bearerToken string, auditLog *audit.Log) *ToolServer {
	if bearerToken == "" {
		fmt.Fprintf(os.Stderr, "httpapi: MCP_BEARER_TOKEN not set, tool service is UNAUTHENTICATED\n")
	}
	s := &ToolServer{
		router: router,
		bearer: bearerToken,
		audit:  auditLog,
	}
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Handler(),
	}
	return s
}

// Handler builds the route table. Exposed for tests.
func (s *ToolServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp/tools/", s.handleRESTTool)
	mux.HandleFunc("/messages", s.handleRPC)
	mux.HandleFunc("/mcp", s.handleRPC)
	mux.HandleFunc("/sse", s.handleSSE)
	mux.HandleFunc("/", s.handleRoot)
	return s.requireBearer(mux)
}

// Start begins listening. Blocks until the context is cancelled.
func (s *ToolServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	err = s.srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server.
func (s *ToolServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// requireBearer enforces the static bearer token on every route. When no
// token is configured the check is skipped entirely.
func (s *ToolServer) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.bearer != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got == "" || got != s.bearer {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid or expired token"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// restToolRequest is the REST-shaped tool invocation body. The fields
// beyond agent_id are per-tool; unused ones are simply ignored.
type restToolRequest struct {
	AgentID      string         `json:"agent_id"`
	SecretName   string         `json:"secret_name"`
	IncidentText string         `json:"incident_text"`
	Action       string         `json:"action"`
	Parameters   map[string]any `json:"parameters"`
}

// handleRESTTool serves POST /mcp/tools/{name} with HTTP-native status
// codes: 400 for malformed requests, 403 for policy denials.
func (s *ToolServer) handleRESTTool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
		return
	}

	tool := strings.TrimPrefix(r.URL.Path, "/mcp/tools/")
	cap, ok := capabilityForTool(tool)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": fmt.Sprintf("Unknown tool: %s", tool)})
		return
	}

	var req restToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	agentID, err := s.router.Allowlist.Authorize(req.AgentID, cap)
	if err != nil {
		s.recordToolCall(req.AgentID, tool, "denied", err.Error())
		var invalid *authz.InvalidRequestError
		var forbidden *authz.ForbiddenError
		switch {
		case errors.As(err, &invalid):
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": invalid.Msg})
		case errors.As(err, &forbidden):
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": forbidden.Msg})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		}
		return
	}

	info := authz.Info(agentID, cap)
	info.VaultSecretLoaded = s.router.ProbeStatus(r.Context()).Loaded

	payload := map[string]any{"authorization": info}
	switch tool {
	case "get_secret":
		payload["secret"] = s.router.Executor.GetSecret(req.SecretName)
	case "run_diagnostics":
		payload["result"] = s.router.Executor.RunDiagnostics(req.IncidentText)
	case "execute_runbook":
		payload["result"] = s.router.Executor.ExecuteRunbook(req.Action, req.Parameters)
		payload["safety"] = map[string]any{
			"simulated": true,
			"note":      "Simulated execution. No infrastructure was modified.",
		}
	}

	s.recordToolCall(agentID, tool, "allowed", "")
	writeJSON(w, http.StatusOK, payload)
}

func capabilityForTool(tool string) (authz.Capability, bool) {
	switch tool {
	case "get_secret":
		return authz.CapGetSecret, true
	case "run_diagnostics":
		return authz.CapRunDiagnostics, true
	case "execute_runbook":
		return authz.CapExecuteRunbook, true
	}
	return "", false
}

// handleRPC serves JSON-RPC messages. Notifications get 204 No Content.
func (s *ToolServer) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "failed to read body"})
		return
	}

	resp := s.router.Handle(r.Context(), body)
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSSE serves the event stream. The first event tells the client
// where to POST messages; after that only keepalives flow until the
// client disconnects.
func (s *ToolServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "data: %s\n\n", `{"type":"endpoint","url":"/messages"}`)
	flusher.Flush()

	interval := s.keepalive
	if interval <= 0 {
		interval = SSEKeepalive
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// handleRoot dispatches the bare path by method: GET opens an event
// stream, POST is JSON-RPC. Some MCP clients use one, some the other.
func (s *ToolServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleSSE(w, r)
	case http.MethodPost:
		s.handleRPC(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
	}
}

func (s *ToolServer) recordToolCall(agentID, tool, outcome, reason string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(audit.Entry{
		TraceID: trace.NewID(),
		Kind:    audit.KindToolCall,
		AgentID: agentID,
		Action:  tool,
		Outcome: outcome,
		Reason:  reason,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "httpapi: audit record failed: %v\n", err)
	}
}
