package domain

import "time"

// StatusCounts holds the number of pull requests per lifecycle state.
type StatusCounts struct {
	Total  int `json:"total"`
	Open   int `json:"open"`
	Merged int `json:"merged"`
	Closed int `json:"closed"`
}

// Add counts one pull request in the given state.
func (c *StatusCounts) Add(s Status) {
	c.Total++
	switch s {
	case StatusMerged:
		c.Merged++
	case StatusClosed:
		c.Closed++
	default:
		c.Open++
	}
}

// SizeSummary describes the typical size of the collected pull requests.
type SizeSummary struct {
	MedianAdditions    float64 `json:"medianAdditions"`
	MedianDeletions    float64 `json:"medianDeletions"`
	MedianChangedFiles float64 `json:"medianChangedFiles"`
	MeanComments       float64 `json:"meanComments"`
	MedianHoursToMerge float64 `json:"medianHoursToMerge"`
}

// Snapshot is the complete output of one pipeline run.
// It is replaced wholesale on every run.
type Snapshot struct {
	PullRequests  []PullRequest  `json:"prs"`
	Organizations []Organization `json:"orgs"`
	LastUpdated   string         `json:"lastUpdated"`
	CapturedAt    time.Time      `json:"capturedAt"`
	TotalCount    int            `json:"totalCount"`
	Counts        StatusCounts   `json:"counts"`
	Summary       SizeSummary    `json:"summary"`
}
