package audit

// Entry kinds.
const (
	KindDecision = "decision"
	KindToolCall = "tool_call"
)

// Entry is one line in the hash-chained JSONL audit log.
// All fields are scalars or strings (no map[string]any) to guarantee
// deterministic json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp  string `json:"ts"`
	TraceID    string `json:"trace_id"`
	Kind       string `json:"kind"`
	AgentID    string `json:"agent_id,omitempty"`
	Action     string `json:"action"`
	Confidence int    `json:"confidence,omitempty"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	ConfigHash string `json:"config_hash,omitempty"`
	PrevHash   string `json:"prev_hash"`
}
