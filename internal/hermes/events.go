package hermes

import "time"

// RunCompletedEvent is published after a successful computation.
type RunCompletedEvent struct {
	RunID        string    `json:"run_id"`
	RequestID    string    `json:"request_id,omitempty"`
	Alternatives int       `json:"alternatives"`
	Criteria     int       `json:"criteria"`
	V            float64   `json:"v"`
	Best         string    `json:"best"`
	BestQ        float64   `json:"best_q"`
	Compromise   []string  `json:"compromise"`
	Frontier     []string  `json:"frontier"`
	DurationMs   float64   `json:"duration_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

// RunFailedEvent is published when validation or computation aborts a run.
type RunFailedEvent struct {
	RunID     string    `json:"run_id"`
	RequestID string    `json:"request_id,omitempty"`
	Kind      string    `json:"kind"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}
