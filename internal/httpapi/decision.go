// Package httpapi exposes the two HTTP surfaces: the decision service
// for incident evaluation and the tool service for agent tool calls.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/aegisops/aegis/internal/model"
	"github.com/aegisops/aegis/internal/pipeline"
	"github.com/aegisops/aegis/internal/trace"
)

// Decision service identity, reported by /version.
const (
	DecisionServiceName    = "aegis-decision-service"
	DecisionServiceVersion = "0.2.0"
)

// DecisionServer serves incident evaluation over HTTP.
type DecisionServer struct {
	evaluator *pipeline.Evaluator
	modelID   string
	modelURL  string
	srv       *http.Server
}

// NewDecisionServer creates the decision service listening on port.
func NewDecisionServer(port int, ev *pipeline.Evaluator, modelID, modelURL string) *DecisionServer {
	s := &DecisionServer{
		evaluator: ev,
		modelID:   modelID,
		modelURL:  modelURL,
	}
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Handler(),
	}
	return s
}

// Handler builds the route table. Exposed for tests.
func (s *DecisionServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/evaluate-incident", s.handleEvaluate)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/version", s.handleVersion)
	mux.HandleFunc("/", s.handleRoot)
	return s.recoverFallback(mux)
}

// Start begins listening. Blocks until the context is cancelled.
func (s *DecisionServer) Start(ctx context.Context) error {
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
func (s *DecisionServer) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// recoverFallback converts handler panics into the safe fallback
// envelope. The decision surface never returns a bare 500: callers
// always get a well-formed envelope they can act on.
func (s *DecisionServer) recoverFallback(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				fmt.Fprintf(os.Stderr, "httpapi: panic in %s %s: %v\n", r.Method, r.URL.Path, rec)
				env := model.NewEnvelope(
					model.FallbackDecision(fmt.Sprintf("panic: %v", rec)),
					"", trace.NewID(), s.modelID)
				writeJSON(w, http.StatusOK, env)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *DecisionServer) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
		return
	}

	var req model.IncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"detail": fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}
	if err := req.Normalize(); err != nil {
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, model.ErrIncidentTooShort) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"detail": err.Error()})
		return
	}

	env := s.evaluator.Evaluate(r.Context(), req)
	writeJSON(w, http.StatusOK, env)
}

func (s *DecisionServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *DecisionServer) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service":   DecisionServiceName,
		"version":   DecisionServiceVersion,
		"model_id":  s.modelID,
		"model_url": s.modelURL,
	})
}

func (s *DecisionServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": DecisionServiceName,
		"status":  "running",
		"endpoints": []string{
			"POST /evaluate-incident",
			"GET /health",
			"GET /version",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "httpapi: write response: %v\n", err)
	}
}
