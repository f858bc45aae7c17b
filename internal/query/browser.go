package query

import "github.com/naka-gawa/pr-portfolio/internal/domain"

// Browser holds the interactive read state over a snapshot. Changing any filter
// returns to the first page.
type Browser struct {
	prs    []domain.PullRequest
	filter Filter
	page   int
	size   int
}

// NewBrowser creates a Browser over prs, which must already be in display order.
func NewBrowser(prs []domain.PullRequest, size int) *Browser {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Browser{prs: prs, filter: Filter{Status: All, Org: All}, page: 1, size: size}
}

func (b *Browser) SetStatus(status string) {
	b.filter.Status = status
	b.page = 1
}

func (b *Browser) SetOrg(org string) {
	b.filter.Org = org
	b.page = 1
}

func (b *Browser) SetSearch(search string) {
	b.filter.Search = search
	b.page = 1
}

// SetPage moves to page n, clamped to the filtered page range.
func (b *Browser) SetPage(n int) {
	total := (len(Apply(b.prs, b.filter)) + b.size - 1) / b.size
	b.page = clamp(n, total)
}

// Filter returns the active filter.
func (b *Browser) Filter() Filter { return b.filter }

// View returns the current page of the filtered collection.
func (b *Browser) View() Page {
	return Paginate(Apply(b.prs, b.filter), b.page, b.size)
}
