package repository

import (
	"context"
	"errors"

	"wunderkammer/internal/domain"
)

// ErrNotFound is returned when a query matches no row or the selected
// column is NULL
var ErrNotFound = errors.New("not found")

// Store is one unit database: a table of oEmbed payloads keyed by URL
type Store interface {
	// RandomURL samples the url column of one row
	RandomURL(ctx context.Context) (string, error)

	// BodyByURL returns the payload stored for an exact record URL
	BodyByURL(ctx context.Context, url string) ([]byte, error)

	// BodyByObjectURI returns the payload of a record by its object URI
	BodyByObjectURI(ctx context.Context, uri string) ([]byte, error)

	// Summaries opens a forward-only cursor over every row
	Summaries(ctx context.Context) (SummaryCursor, error)

	// Close releases the handle
	Close() error
}

// SummaryCursor walks rows of a Summaries query. Usage follows sql.Rows:
// call Next until it returns false, then check Err.
type SummaryCursor interface {
	Next() bool
	Summary() (domain.Summary, error)
	Err() error
	Close() error
}
