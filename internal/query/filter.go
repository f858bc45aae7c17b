// Package query implements the read side of a snapshot: filtering, free-text
// search and fixed-size pagination over the globally sorted pull requests.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
)

// All disables the status or organization filter.
const All = "all"

// Filter selects pull requests. Zero-value fields behave like All.
type Filter struct {
	Status string
	Org    string
	Search string
}

// ParseStatus validates a status filter value.
func ParseStatus(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == All {
		return All, nil
	}
	if !domain.Status(s).Valid() {
		return "", fmt.Errorf("unknown status %q (want all, open, merged or closed)", s)
	}
	return s, nil
}

// Matches reports whether pr passes every filter criterion.
func (f Filter) Matches(pr domain.PullRequest) bool {
	if f.Status != "" && f.Status != All && string(pr.State) != f.Status {
		return false
	}
	if f.Org != "" && f.Org != All && pr.Repository.Owner != f.Org {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(pr.Title), needle) ||
		strings.Contains(strings.ToLower(pr.Repository.Name), needle) ||
		strings.Contains(strings.ToLower(pr.Repository.Owner), needle) ||
		strings.Contains("#"+strconv.Itoa(pr.Number), needle)
}

// Apply returns the pull requests matching f, preserving their order.
func Apply(prs []domain.PullRequest, f Filter) []domain.PullRequest {
	out := make([]domain.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if f.Matches(pr) {
			out = append(out, pr)
		}
	}
	return out
}
