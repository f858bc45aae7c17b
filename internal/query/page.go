package query

import "github.com/naka-gawa/pr-portfolio/internal/domain"

// DefaultPageSize is the number of pull requests shown per page.
const DefaultPageSize = 30

// Ellipsis marks a gap in a page window.
const Ellipsis = 0

// Page is one slice of a filtered collection. Number is 1-based.
type Page struct {
	Items      []domain.PullRequest
	Number     int
	TotalPages int
	Total      int
}

// Paginate returns page number of items. Out-of-range pages are clamped and a
// non-positive size falls back to DefaultPageSize.
func Paginate(items []domain.PullRequest, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := (len(items) + size - 1) / size
	number = clamp(number, totalPages)

	start := (number - 1) * size
	end := min(start+size, len(items))
	page := Page{Number: number, TotalPages: totalPages, Total: len(items), Items: []domain.PullRequest{}}
	if start < end {
		page.Items = items[start:end]
	}
	return page
}

func clamp(number, totalPages int) int {
	if number > totalPages {
		number = totalPages
	}
	if number < 1 {
		number = 1
	}
	return number
}

// PageWindow lists the page numbers a pager shows for current out of total,
// using Ellipsis for elided ranges.
func PageWindow(current, total int) []int {
	if total <= 7 {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}
	switch {
	case current <= 3:
		return []int{1, 2, 3, 4, 5, Ellipsis, total}
	case current >= total-2:
		return []int{1, Ellipsis, total - 4, total - 3, total - 2, total - 1, total}
	default:
		return []int{1, Ellipsis, current - 1, current, current + 1, Ellipsis, total}
	}
}
