package usecase

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
)

func pr(id, owner string, state domain.Status, updatedAt time.Time) domain.PullRequest {
	return domain.PullRequest{
		ID:        id,
		State:     state,
		UpdatedAt: updatedAt,
		Repository: domain.Repository{
			Name:           "repo",
			Owner:          owner,
			OwnerAvatarURL: AvatarURL(testAvatarTemplate, owner),
		},
	}
}

func ids(prs []domain.PullRequest) []string {
	out := make([]string, 0, len(prs))
	for _, p := range prs {
		out = append(out, p.ID)
	}
	return out
}

// TestAggregate uses a table-driven approach to test the aggregator.
func TestAggregate(t *testing.T) {
	testCases := []struct {
		name           string
		input          []domain.PullRequest
		expectedOrder  []string
		expectedOrgs   []domain.Organization
		expectedCounts domain.StatusCounts
	}{
		{
			name: "orders by last update and counts per owner",
			input: []domain.PullRequest{
				pr("beta-1", "beta", domain.StatusOpen, baseTime.Add(1*time.Hour)),
				pr("acme-other", "acme", domain.StatusMerged, baseTime.Add(2*time.Hour)),
				pr("acme-newest", "acme", domain.StatusClosed, baseTime.Add(3*time.Hour)),
			},
			expectedOrder: []string{"acme-newest", "acme-other", "beta-1"},
			expectedOrgs: []domain.Organization{
				{Name: "acme", AvatarURL: "https://github.com/acme.png", PRCount: 2},
				{Name: "beta", AvatarURL: "https://github.com/beta.png", PRCount: 1},
			},
			expectedCounts: domain.StatusCounts{Total: 3, Open: 1, Merged: 1, Closed: 1},
		},
		{
			name: "ties on updatedAt keep arrival order",
			input: []domain.PullRequest{
				pr("first", "acme", domain.StatusOpen, baseTime),
				pr("newer", "acme", domain.StatusOpen, baseTime.Add(time.Minute)),
				pr("second", "beta", domain.StatusOpen, baseTime),
				pr("third", "gamma", domain.StatusOpen, baseTime),
			},
			expectedOrder: []string{"newer", "first", "second", "third"},
			expectedOrgs: []domain.Organization{
				{Name: "acme", AvatarURL: "https://github.com/acme.png", PRCount: 2},
				{Name: "beta", AvatarURL: "https://github.com/beta.png", PRCount: 1},
				{Name: "gamma", AvatarURL: "https://github.com/gamma.png", PRCount: 1},
			},
			expectedCounts: domain.StatusCounts{Total: 4, Open: 4},
		},
		{
			name: "organizations with equal counts keep first-seen order",
			input: []domain.PullRequest{
				pr("z1", "zeta", domain.StatusOpen, baseTime),
				pr("a1", "alpha", domain.StatusOpen, baseTime),
				pr("m1", "mu", domain.StatusOpen, baseTime),
				pr("m2", "mu", domain.StatusOpen, baseTime),
			},
			expectedOrder: []string{"z1", "a1", "m1", "m2"},
			expectedOrgs: []domain.Organization{
				{Name: "mu", AvatarURL: "https://github.com/mu.png", PRCount: 2},
				{Name: "zeta", AvatarURL: "https://github.com/zeta.png", PRCount: 1},
				{Name: "alpha", AvatarURL: "https://github.com/alpha.png", PRCount: 1},
			},
			expectedCounts: domain.StatusCounts{Total: 4, Open: 4},
		},
		{
			name: "tied organizations follow the most recently updated pull request",
			input: []domain.PullRequest{
				pr("beta-1", "beta", domain.StatusOpen, baseTime),
				pr("acme-1", "acme", domain.StatusOpen, baseTime.Add(time.Hour)),
			},
			expectedOrder: []string{"acme-1", "beta-1"},
			expectedOrgs: []domain.Organization{
				{Name: "acme", AvatarURL: "https://github.com/acme.png", PRCount: 1},
				{Name: "beta", AvatarURL: "https://github.com/beta.png", PRCount: 1},
			},
			expectedCounts: domain.StatusCounts{Total: 2, Open: 2},
		},
		{
			name:           "empty input yields an empty snapshot",
			input:          nil,
			expectedOrder:  []string{},
			expectedOrgs:   []domain.Organization{},
			expectedCounts: domain.StatusCounts{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snap := Aggregate(tc.input, "2025-12-01 18:00:00", baseTime)

			assert.Equal(t, tc.expectedOrder, ids(snap.PullRequests))
			assert.Equal(t, tc.expectedOrgs, snap.Organizations)
			assert.Equal(t, tc.expectedCounts, snap.Counts)
			assert.Equal(t, len(tc.input), snap.TotalCount)
			assert.Equal(t, "2025-12-01 18:00:00", snap.LastUpdated)
			assert.Equal(t, baseTime, snap.CapturedAt)
		})
	}
}

func TestAggregate_EmptySnapshotSerializesAsEmptyCollections(t *testing.T) {
	snap := Aggregate(nil, "2025-12-01 18:00:00", baseTime)

	require.NotNil(t, snap.PullRequests)
	require.NotNil(t, snap.Organizations)
	b, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"prs":[]`)
	assert.Contains(t, string(b), `"orgs":[]`)
	assert.Equal(t, domain.SizeSummary{}, snap.Summary)
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	input := []domain.PullRequest{
		pr("old", "acme", domain.StatusOpen, baseTime),
		pr("new", "acme", domain.StatusOpen, baseTime.Add(time.Hour)),
	}
	Aggregate(input, "", baseTime)
	assert.Equal(t, []string{"old", "new"}, ids(input))
}

func TestAggregate_Invariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	owners := []string{"acme", "beta", "gamma", "delta"}
	input := make([]domain.PullRequest, 0, 200)
	for i := range 200 {
		owner := owners[rng.IntN(len(owners))]
		// A coarse time grid forces plenty of ties.
		updated := baseTime.Add(time.Duration(rng.IntN(20)) * time.Hour)
		input = append(input, pr(fmt.Sprintf("pr-%03d", i), owner, domain.StatusOpen, updated))
	}

	snap := Aggregate(input, "", baseTime)

	arrival := make(map[string]int, len(input))
	for i, p := range input {
		arrival[p.ID] = i
	}
	for i := 1; i < len(snap.PullRequests); i++ {
		prev, cur := snap.PullRequests[i-1], snap.PullRequests[i]
		require.False(t, prev.UpdatedAt.Before(cur.UpdatedAt), "not sorted descending at %d", i)
		if prev.UpdatedAt.Equal(cur.UpdatedAt) {
			require.Less(t, arrival[prev.ID], arrival[cur.ID], "unstable tie at %d", i)
		}
	}

	want := make(map[string]int)
	for _, p := range input {
		want[p.Repository.Owner]++
	}
	total := 0
	require.Len(t, snap.Organizations, len(want))
	for i, org := range snap.Organizations {
		assert.Equal(t, want[org.Name], org.PRCount, org.Name)
		total += org.PRCount
		if i > 0 {
			assert.GreaterOrEqual(t, snap.Organizations[i-1].PRCount, org.PRCount)
		}
	}
	assert.Equal(t, len(snap.PullRequests), total)
}

func TestAggregate_SizeSummary(t *testing.T) {
	merged := func(id string, additions, deletions, files, comments int, hours float64) domain.PullRequest {
		p := pr(id, "acme", domain.StatusMerged, baseTime)
		p.CreatedAt = baseTime
		m := baseTime.Add(time.Duration(hours * float64(time.Hour)))
		p.MergedAt, p.ClosedAt = &m, &m
		p.Additions, p.Deletions, p.ChangedFiles, p.Comments = additions, deletions, files, comments
		return p
	}
	open := pr("open", "acme", domain.StatusOpen, baseTime)
	open.Additions, open.Deletions, open.ChangedFiles, open.Comments = 100, 50, 9, 6

	snap := Aggregate([]domain.PullRequest{
		merged("a", 10, 1, 1, 0, 2),
		merged("b", 30, 3, 3, 3, 10),
		open,
	}, "", baseTime)

	assert.Equal(t, domain.SizeSummary{
		MedianAdditions:    30,
		MedianDeletions:    3,
		MedianChangedFiles: 3,
		MeanComments:       3,
		MedianHoursToMerge: 6,
	}, snap.Summary)
}
