// Package usecase contains the business logic of the application.
package usecase

import (
	"slices"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
)

// Aggregate orders the normalized pull requests and derives the organization summary,
// status counts and size statistics. The input slice is not modified. Records must be
// given in source arrival order; ties are resolved by that order.
func Aggregate(prs []domain.PullRequest, lastUpdated string, capturedAt time.Time) *domain.Snapshot {
	sorted := make([]domain.PullRequest, len(prs))
	copy(sorted, prs)
	slices.SortStableFunc(sorted, func(a, b domain.PullRequest) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	var counts domain.StatusCounts
	for _, pr := range sorted {
		counts.Add(pr.State)
	}

	return &domain.Snapshot{
		PullRequests:  sorted,
		Organizations: summarizeOrganizations(sorted),
		LastUpdated:   lastUpdated,
		CapturedAt:    capturedAt,
		TotalCount:    len(sorted),
		Counts:        counts,
		Summary:       summarizeSizes(sorted),
	}
}

// summarizeOrganizations counts pull requests per owner in a single pass over the
// display-ordered pull requests, then orders the owners by count, descending. Owners with
// equal counts keep the order in which they first appear in prs.
func summarizeOrganizations(prs []domain.PullRequest) []domain.Organization {
	orgs := make([]domain.Organization, 0)
	index := make(map[string]int)
	for _, pr := range prs {
		owner := pr.Repository.Owner
		if i, ok := index[owner]; ok {
			orgs[i].PRCount++
			continue
		}
		index[owner] = len(orgs)
		orgs = append(orgs, domain.Organization{
			Name:      owner,
			AvatarURL: pr.Repository.OwnerAvatarURL,
			PRCount:   1,
		})
	}
	slices.SortStableFunc(orgs, func(a, b domain.Organization) int {
		return b.PRCount - a.PRCount
	})
	return orgs
}

func summarizeSizes(prs []domain.PullRequest) domain.SizeSummary {
	if len(prs) == 0 {
		return domain.SizeSummary{}
	}
	additions := make(stats.Float64Data, 0, len(prs))
	deletions := make(stats.Float64Data, 0, len(prs))
	files := make(stats.Float64Data, 0, len(prs))
	comments := make(stats.Float64Data, 0, len(prs))
	var hoursToMerge stats.Float64Data
	for _, pr := range prs {
		additions = append(additions, float64(pr.Additions))
		deletions = append(deletions, float64(pr.Deletions))
		files = append(files, float64(pr.ChangedFiles))
		comments = append(comments, float64(pr.Comments))
		if pr.State == domain.StatusMerged && pr.MergedAt != nil {
			hoursToMerge = append(hoursToMerge, pr.MergedAt.Sub(pr.CreatedAt).Hours())
		}
	}

	var summary domain.SizeSummary
	summary.MedianAdditions, _ = additions.Median()
	summary.MedianDeletions, _ = deletions.Median()
	summary.MedianChangedFiles, _ = files.Median()
	summary.MeanComments, _ = comments.Mean()
	if len(hoursToMerge) > 0 {
		summary.MedianHoursToMerge, _ = hoursToMerge.Median()
	}
	return summary
}
