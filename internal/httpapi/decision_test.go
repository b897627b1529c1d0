package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aegisops/aegis/internal/model"
	"github.com/aegisops/aegis/internal/pipeline"
	"github.com/aegisops/aegis/internal/runbook"
)

type stubGenerator struct {
	response string
	panics   bool
}

func (s *stubGenerator) Generate(ctx context.Context, systemMsg, userMsg string) (string, error) {
	if s.panics {
		panic("stub exploded")
	}
	return s.response, nil
}

func (s *stubGenerator) ModelID() string { return "stub-model" }

func newDecisionTestServer(g *stubGenerator) *httptest.Server {
	ev := &pipeline.Evaluator{
		Resolver:  &runbook.Resolver{Remote: runbook.NewRemoteClient(""), Store: runbook.NewStore("")},
		Generator: g,
	}
	s := NewDecisionServer(0, ev, "stub-model", "https://model.example.com")
	return httptest.NewServer(s.Handler())
}

func TestEvaluateIncident(t *testing.T) {
	srv := newDecisionTestServer(&stubGenerator{
		response: `{"analysis":"Disk full","recommended_action":"clear_logs","confidence_score":95,"explanation":"Safe cleanup"}`,
	})
	defer srv.Close()

	body := `{"incident_text":"Disk usage at 99% on db-host","category":"storage","reporter_role":"SRE"}`
	resp, err := http.Post(srv.URL+"/evaluate-incident", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var env model.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.RecommendedAction != model.ActionClearLogs {
		t.Errorf("action = %q", env.RecommendedAction)
	}
	if env.TraceID == "" {
		t.Error("trace_id missing")
	}
	if env.Policy.AutoExecuteThreshold != 80 {
		t.Errorf("policy = %+v", env.Policy)
	}
}

func TestEvaluateIncidentTooShort(t *testing.T) {
	srv := newDecisionTestServer(&stubGenerator{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/evaluate-incident", "application/json",
		strings.NewReader(`{"incident_text":"short"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestEvaluateIncidentBadJSON(t *testing.T) {
	srv := newDecisionTestServer(&stubGenerator{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/evaluate-incident", "application/json",
		strings.NewReader(`{not json`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestEvaluateIncidentMethodNotAllowed(t *testing.T) {
	srv := newDecisionTestServer(&stubGenerator{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/evaluate-incident")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv := newDecisionTestServer(&stubGenerator{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestVersion(t *testing.T) {
	srv := newDecisionTestServer(&stubGenerator{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/version")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["service"] != DecisionServiceName {
		t.Errorf("service = %q", body["service"])
	}
	if body["model_id"] != "stub-model" {
		t.Errorf("model_id = %q", body["model_id"])
	}
}

func TestRootServiceInfo(t *testing.T) {
	srv := newDecisionTestServer(&stubGenerator{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	resp2, err := http.Get(srv.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status = %d", resp2.StatusCode)
	}
}

func TestPanicReturnsFallbackEnvelope(t *testing.T) {
	srv := newDecisionTestServer(&stubGenerator{panics: true})
	defer srv.Close()

	body := `{"incident_text":"Disk usage at 99% on db-host"}`
	resp, err := http.Post(srv.URL+"/evaluate-incident", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var env model.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.RecommendedAction != model.ActionEscalateToHuman {
		t.Errorf("action = %q", env.RecommendedAction)
	}
	if env.ConfidenceScore != 10 {
		t.Errorf("confidence = %d", env.ConfidenceScore)
	}
}
