package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/naka-gawa/pr-portfolio/internal/domain"
	"github.com/naka-gawa/pr-portfolio/internal/query"
)

const (
	titleWidth  = 60
	statusWidth = 10
)

// RenderPullRequests writes page as a table followed by a pager line.
func RenderPullRequests(w io.Writer, page query.Page) error {
	if page.Total == 0 {
		_, err := fmt.Fprintln(w, MutedStyle.Render("No pull requests found."))
		return err
	}

	repoWidth := len("REPOSITORY")
	numWidth := len("#")
	for _, pr := range page.Items {
		repoWidth = max(repoWidth, runewidth.StringWidth(repoName(pr)))
		numWidth = max(numWidth, len(strconv.Itoa(pr.Number))+1)
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(strings.Join([]string{
		PadRight("STATUS", statusWidth),
		PadRight("REPOSITORY", repoWidth),
		PadRight("#", numWidth),
		"TITLE",
	}, "  ")))
	b.WriteByte('\n')
	for _, pr := range page.Items {
		b.WriteString(strings.Join([]string{
			PadRight(StatusLabel(pr.State), statusWidth),
			PadRight(repoName(pr), repoWidth),
			PadRight("#"+strconv.Itoa(pr.Number), numWidth),
			Truncate(pr.Title, titleWidth),
		}, "  "))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(fmt.Sprintf("%d PRs found  ", page.Total))
	b.WriteString(Pager(page.Number, page.TotalPages))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// Pager renders the page window, highlighting current.
func Pager(current, total int) string {
	if total <= 1 {
		return ""
	}
	parts := make([]string, 0, 7)
	for _, n := range query.PageWindow(current, total) {
		switch n {
		case query.Ellipsis:
			parts = append(parts, MutedStyle.Render("..."))
		case current:
			parts = append(parts, CurrentPageStyle.Render("["+strconv.Itoa(n)+"]"))
		default:
			parts = append(parts, strconv.Itoa(n))
		}
	}
	return strings.Join(parts, " ")
}

func repoName(pr domain.PullRequest) string {
	return pr.Repository.Owner + "/" + pr.Repository.Name
}
