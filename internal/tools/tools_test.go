package tools

import (
	"strings"
	"testing"
)

func TestGetSecret(t *testing.T) {
	e := &Executor{ExecToken: "tok-123"}

	got := e.GetSecret("execution_token")
	if got.Value != "tok-123" {
		t.Errorf("value = %q", got.Value)
	}

	got = (&Executor{}).GetSecret("execution_token")
	if got.Value != "NOT_CONFIGURED" {
		t.Errorf("unconfigured token value = %q", got.Value)
	}

	got = e.GetSecret("database_password")
	if got.Value != "NOT_FOUND" {
		t.Errorf("unknown secret value = %q", got.Value)
	}
}

func TestRunDiagnosticsKeywords(t *testing.T) {
	e := &Executor{}

	r := e.RunDiagnostics("CPU pegged at 100% on worker nodes")
	if len(r.Diagnostics.LikelyCauses) == 0 || !strings.Contains(r.Diagnostics.LikelyCauses[0], "CPU") {
		t.Errorf("cpu diagnostics missing: %+v", r.Diagnostics)
	}

	r = e.RunDiagnostics("disk space exhausted on /data")
	found := false
	for _, c := range r.Diagnostics.LikelyCauses {
		if strings.Contains(c, "Disk space") {
			found = true
		}
	}
	if !found {
		t.Errorf("disk diagnostics missing: %+v", r.Diagnostics.LikelyCauses)
	}

	if r.Incident != "disk space exhausted on /data" {
		t.Errorf("incident echo = %q", r.Incident)
	}
}

func TestRunDiagnosticsCombinesCategories(t *testing.T) {
	e := &Executor{}
	r := e.RunDiagnostics("high memory usage causing network timeouts")

	var hasMemory, hasNetwork bool
	for _, c := range r.Diagnostics.LikelyCauses {
		if strings.Contains(c, "Memory leak") {
			hasMemory = true
		}
		if strings.Contains(c, "Network congestion") {
			hasNetwork = true
		}
	}
	if !hasMemory || !hasNetwork {
		t.Errorf("expected memory and network causes, got %+v", r.Diagnostics.LikelyCauses)
	}
}

func TestRunDiagnosticsFallback(t *testing.T) {
	e := &Executor{}
	r := e.RunDiagnostics("users report the app feels wrong")

	if len(r.Diagnostics.LikelyCauses) != 1 || !strings.Contains(r.Diagnostics.LikelyCauses[0], "Unclassified") {
		t.Errorf("expected generic fallback, got %+v", r.Diagnostics.LikelyCauses)
	}
}

func TestExecuteRunbookClearLogs(t *testing.T) {
	e := &Executor{}
	r := e.ExecuteRunbook("clear_logs", map[string]any{"retention_days": 14})

	if r.Status != "simulated_success" {
		t.Errorf("status = %q", r.Status)
	}
	if r.Details["retention_days"] != 14 {
		t.Errorf("retention_days = %v", r.Details["retention_days"])
	}
	if len(r.ExecutionLog) == 0 {
		t.Error("execution log empty")
	}
}

func TestExecuteRunbookDefaults(t *testing.T) {
	e := &Executor{}
	r := e.ExecuteRunbook("restart_service", nil)

	if r.Details["service_name"] != "application-server" {
		t.Errorf("service_name = %v", r.Details["service_name"])
	}
	if r.Status != "simulated_success" {
		t.Errorf("status = %q", r.Status)
	}
}

func TestExecuteRunbookUnknownAction(t *testing.T) {
	e := &Executor{}
	r := e.ExecuteRunbook("drop_tables", nil)

	if r.Status != "unknown_action" {
		t.Errorf("status = %q", r.Status)
	}
	supported, ok := r.Details["supported_actions"].([]string)
	if !ok || len(supported) != 3 {
		t.Errorf("supported_actions = %v", r.Details["supported_actions"])
	}
}
