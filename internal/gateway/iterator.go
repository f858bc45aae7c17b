package gateway

import (
	"context"

	"go.uber.org/zap"
)

// PageIterator walks a PageSource from the first page to the last, one page per call
// to Next. The continuation cursor never leaves the iterator. An iterator cannot be
// restarted: once Next has returned false it keeps returning false.
type PageIterator struct {
	source  PageSource
	logger  *zap.SugaredLogger
	cursor  *string
	records []*RawPullRequest
	pages   int
	fetched int
	done    bool
	err     error
}

// NewPageIterator returns an iterator positioned before the first page.
func NewPageIterator(source PageSource, logger *zap.SugaredLogger) *PageIterator {
	return &PageIterator{source: source, logger: logger}
}

// Next fetches the next page. It returns false when there are no more pages or
// the fetch failed; check Err to tell the two apart.
func (it *PageIterator) Next(ctx context.Context) bool {
	if it.done {
		it.records = nil
		return false
	}
	page, err := it.source.FetchPage(ctx, it.cursor)
	if err != nil {
		it.err = err
		it.done = true
		it.records = nil
		return false
	}

	it.records = page.Records
	it.pages++
	it.fetched += len(page.Records)
	it.logger.Infow("  fetched page", "page", it.pages, "fetched", it.fetched)

	if !page.HasNextPage {
		it.done = true
	} else {
		cursor := page.EndCursor
		it.cursor = &cursor
	}
	return true
}

// Records returns the raw records of the current page.
func (it *PageIterator) Records() []*RawPullRequest {
	return it.records
}

// Fetched returns the number of raw records seen so far, null placeholders included.
func (it *PageIterator) Fetched() int {
	return it.fetched
}

// Err returns the error that stopped the iteration, if any.
func (it *PageIterator) Err() error {
	return it.err
}
