package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
	"github.com/naka-gawa/pr-portfolio/internal/snapshot"
)

func writeSnapshot(t *testing.T) string {
	t.Helper()
	return writeSnapshotAs(t, snapshot.FormatJSON)
}

func writeSnapshotAs(t *testing.T, format snapshot.Format) string {
	t.Helper()
	dir := t.TempDir()
	updated := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	snap := &domain.Snapshot{
		PullRequests: []domain.PullRequest{
			{ID: "PR_2", Number: 7, Title: "Add docs", State: domain.StatusOpen, UpdatedAt: updated,
				Repository: domain.Repository{Owner: "beta", Name: "core"}},
			{ID: "PR_1", Number: 42, Title: "Fix bug", State: domain.StatusClosed, UpdatedAt: updated.Add(-time.Hour),
				Repository: domain.Repository{Owner: "acme", Name: "widgets"}},
		},
		Organizations: []domain.Organization{{Name: "beta", PRCount: 1}, {Name: "acme", PRCount: 1}},
		LastUpdated:   "2025-12-01 18:00:00",
		TotalCount:    2,
		Counts:        domain.StatusCounts{Total: 2, Open: 1, Closed: 1},
	}
	require.NoError(t, snapshot.NewWriter(dir, format, zap.NewNop().Sugar()).Write(context.Background(), snap))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	t.Setenv("PORTFOLIO_SNAPSHOT_DIR", writeSnapshot(t))

	out, err := execute(t, "stats")
	require.NoError(t, err)

	var got statsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "2025-12-01 18:00:00", got.LastUpdated)
	assert.Equal(t, domain.StatusCounts{Total: 2, Open: 1, Closed: 1}, got.Counts)
	require.Len(t, got.Organizations, 2)
	assert.Equal(t, "beta", got.Organizations[0].Name)
}

func TestStatsCommand_TypeScriptSnapshot(t *testing.T) {
	t.Setenv("PORTFOLIO_SNAPSHOT_DIR", writeSnapshotAs(t, snapshot.FormatTypeScript))
	t.Setenv("PORTFOLIO_SNAPSHOT_FORMAT", "ts")

	out, err := execute(t, "stats")
	require.NoError(t, err)

	var got statsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.TotalCount)
	assert.Equal(t, domain.StatusCounts{Total: 2, Open: 1, Closed: 1}, got.Counts)
	require.Len(t, got.Organizations, 2)
	assert.Equal(t, "beta", got.Organizations[0].Name)
}

func TestListCommand(t *testing.T) {
	dir := writeSnapshot(t)

	out, err := execute(t, "list", "--dir", dir, "--search", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "acme/widgets")
	assert.NotContains(t, out, "beta/core")
	assert.Contains(t, out, "1 PRs found")

	_, err = execute(t, "list", "--dir", dir, "--status", "draft", "--search", "")
	assert.ErrorContains(t, err, "unknown status")
}

func TestListCommand_MissingSnapshot(t *testing.T) {
	_, err := execute(t, "list", "--dir", t.TempDir(), "--status", "all")
	assert.ErrorContains(t, err, "failed to read snapshot artifact")
}

func TestHistoryCommand_Disabled(t *testing.T) {
	t.Setenv("PORTFOLIO_HISTORY_PATH", "")

	_, err := execute(t, "history")
	assert.ErrorContains(t, err, "history is disabled")
}
