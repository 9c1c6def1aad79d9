package alerter

import (
	"context"

	"github.com/google/uuid"
)

// statusMoreData is the response status code signalling that more pages
// are available for the same request identifier.
const statusMoreData = 1

// Page is one page of a paged listing response.
type Page[T any] struct {
	StatusCode int
	Rows       []T
}

// FetchFunc issues one page request for a logical query. The requestID is
// chosen by the cursor and stays the same across every page of the query.
type FetchFunc[T any] func(ctx context.Context, requestID string) (Page[T], error)

// Cursor drives the remote paging protocol for one logical query. It is
// finite (the query ends on the first page whose status is not the
// more-data code) and not restartable: repeating a query requires a new
// cursor, which generates a fresh request identifier.
type Cursor[T any] struct {
	fetch     FetchFunc[T]
	requestID string
	done      bool
}

// NewCursor creates a cursor for one logical query, generating the
// query's request identifier.
func NewCursor[T any](fetch FetchFunc[T]) *Cursor[T] {
	return &Cursor[T]{
		fetch:     fetch,
		requestID: uuid.NewString(),
	}
}

// Next fetches the next page and returns its rows. The second return is
// false once the query is exhausted. A fetch error halts the cursor and
// is surfaced to the caller; no page is retried or skipped.
func (c *Cursor[T]) Next(ctx context.Context) ([]T, bool, error) {
	if c.done {
		return nil, false, nil
	}

	page, err := c.fetch(ctx, c.requestID)
	if err != nil {
		c.done = true
		return nil, false, err
	}
	if page.StatusCode != statusMoreData {
		c.done = true
	}
	return page.Rows, true, nil
}

// EachPage runs a complete logical query, calling visit once per page of
// rows. Empty pages are skipped. It stops on the first fetch or visit
// error.
func EachPage[T any](ctx context.Context, fetch FetchFunc[T], visit func(rows []T) error) error {
	cursor := NewCursor(fetch)
	for {
		rows, more, err := cursor.Next(ctx)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		if len(rows) == 0 {
			continue
		}
		if err := visit(rows); err != nil {
			return err
		}
	}
}
