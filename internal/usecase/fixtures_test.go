package usecase

import (
	"time"

	"github.com/shurcooL/githubv4"

	"github.com/naka-gawa/pr-portfolio/internal/gateway"
)

const testAvatarTemplate = "https://github.com/{owner}.png"

var baseTime = time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

func ghInt(v int) *githubv4.Int {
	i := githubv4.Int(v)
	return &i
}

func ghBool(v bool) *githubv4.Boolean {
	b := githubv4.Boolean(v)
	return &b
}

func ghTime(t time.Time) *githubv4.DateTime {
	return &githubv4.DateTime{Time: t}
}

// rawPR builds a complete raw record. Merged and closed records get consistent
// lifecycle timestamps.
func rawPR(id string, number int, state, owner string, updatedAt time.Time) *gateway.RawPullRequest {
	raw := &gateway.RawPullRequest{
		ID:           id,
		Number:       ghInt(number),
		Title:        "PR " + id,
		URL:          "https://github.com/" + owner + "/repo/pull/" + id,
		State:        githubv4.PullRequestState(state),
		CreatedAt:    ghTime(updatedAt.Add(-48 * time.Hour)),
		UpdatedAt:    ghTime(updatedAt),
		IsDraft:      ghBool(false),
		Additions:    ghInt(10),
		Deletions:    ghInt(2),
		ChangedFiles: ghInt(1),
	}
	raw.Comments.TotalCount = ghInt(0)
	raw.Repository.Name = "repo"
	raw.Repository.URL = "https://github.com/" + owner + "/repo"
	raw.Repository.Owner.Login = owner

	switch state {
	case "MERGED":
		raw.MergedAt = ghTime(updatedAt.Add(-time.Hour))
		raw.ClosedAt = ghTime(updatedAt.Add(-time.Hour))
	case "CLOSED":
		raw.ClosedAt = ghTime(updatedAt.Add(-time.Hour))
	}
	return raw
}
