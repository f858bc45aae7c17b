package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPullRequest_CheckLifecycle(t *testing.T) {
	ts := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		pr          PullRequest
		expectError bool
	}{
		{name: "open without timestamps", pr: PullRequest{State: StatusOpen}},
		{name: "merged with both timestamps", pr: PullRequest{State: StatusMerged, MergedAt: &ts, ClosedAt: &ts}},
		{name: "closed with closedAt only", pr: PullRequest{State: StatusClosed, ClosedAt: &ts}},
		{name: "mergedAt set on open PR", pr: PullRequest{State: StatusOpen, MergedAt: &ts}, expectError: true},
		{name: "mergedAt set on closed PR", pr: PullRequest{State: StatusClosed, MergedAt: &ts, ClosedAt: &ts}, expectError: true},
		{name: "merged without mergedAt", pr: PullRequest{State: StatusMerged, ClosedAt: &ts}, expectError: true},
		{name: "closed without closedAt", pr: PullRequest{State: StatusClosed}, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.pr.CheckLifecycle()
			if tc.expectError {
				assert.ErrorIs(t, err, ErrLifecycleMismatch)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusCounts_Add(t *testing.T) {
	var c StatusCounts
	for _, s := range []Status{StatusOpen, StatusMerged, StatusMerged, StatusClosed} {
		c.Add(s)
	}
	assert.Equal(t, StatusCounts{Total: 4, Open: 1, Merged: 2, Closed: 1}, c)
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusOpen.Valid())
	assert.True(t, StatusMerged.Valid())
	assert.True(t, StatusClosed.Valid())
	assert.False(t, Status("OPEN").Valid())
	assert.False(t, Status("").Valid())
}
