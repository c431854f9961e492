package store

import "time"

// RunRecord captures the outcome of one xcodebuild build or test run.
type RunRecord struct {
	ID          string    `json:"id"`
	Folder      string    `json:"folder"`
	Project     string    `json:"project"`
	Scheme      string    `json:"scheme"`
	Destination string    `json:"destination,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Success     bool      `json:"success"`
	ExitCode    int       `json:"exit_code"`
	Duration    string    `json:"duration"`
}
