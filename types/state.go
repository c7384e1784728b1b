package types

import "time"

// RunState is the refresh run state machine
type RunState string

const (
	RunStateIdle       RunState = "idle"
	RunStateRefreshing RunState = "refreshing"
	RunStateComplete   RunState = "complete"
	RunStateError      RunState = "error"
)

// LogEntry is a single refresh log line with timestamp
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// LanguageStatus summarizes the stored snapshot of one language
type LanguageStatus struct {
	Language     Language  `json:"language"`
	FetchedAt    time.Time `json:"fetched_at"`
	ArticleCount int       `json:"article_count"`
}

// StatusResponse is the JSON response for GET /api/status
type StatusResponse struct {
	State     RunState         `json:"state"`
	RunID     string           `json:"run_id,omitempty"`
	StartedAt *time.Time       `json:"started_at,omitempty"`
	Error     string           `json:"error,omitempty"`
	Snapshots []LanguageStatus `json:"snapshots"`
	Logs      []LogEntry       `json:"logs"`
}
