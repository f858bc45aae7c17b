package domain

import "time"

// RunStatus is the outcome of a pipeline run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunReport captures the diagnostics of a single pipeline run.
type RunReport struct {
	ID              string       `json:"id"`
	Subject         string       `json:"subject"`
	StartedAt       time.Time    `json:"startedAt"`
	FinishedAt      time.Time    `json:"finishedAt"`
	Status          RunStatus    `json:"status"`
	Stage           string       `json:"stage,omitempty"`
	Error           string       `json:"error,omitempty"`
	Fetched         int          `json:"fetched"`
	Skipped         int          `json:"skipped"`
	DefaultedStatus int          `json:"defaultedStatus"`
	PreviewFailed   bool         `json:"previewFailed"`
	Counts          StatusCounts `json:"counts"`
	Organizations   int          `json:"organizations"`
}

// Duration returns how long the run took.
func (r RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
