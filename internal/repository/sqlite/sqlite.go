package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"wunderkammer/internal/domain"
	"wunderkammer/internal/repository"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

const (
	queryRandomURL    = `SELECT url FROM oembed ORDER BY RANDOM() LIMIT 1`
	queryBodyByURL    = `SELECT body FROM oembed WHERE url = ?`
	queryBodyByObject = `SELECT body FROM oembed WHERE object_uri = ?`
	querySummaries    = `SELECT url, has_thumbnail, has_data_url, has_thumbnail_data_url FROM oembed`
)

// Schema creates the oembed table a unit database is expected to carry
const Schema = `
CREATE TABLE IF NOT EXISTS oembed (
	url TEXT PRIMARY KEY,
	object_uri TEXT,
	body TEXT,
	has_thumbnail INTEGER NOT NULL DEFAULT 0,
	has_data_url INTEGER NOT NULL DEFAULT 0,
	has_thumbnail_data_url INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_oembed_object_uri ON oembed(object_uri);
`

// Repository implements repository.Store on one SQLite file
type Repository struct {
	db      *sql.DB
	path    string
	queries atomic.Int64
}

var _ repository.Store = (*Repository)(nil)

// Open opens the database at path read-only and verifies the connection
func Open(ctx context.Context, path string) (*Repository, error) {
	db, err := sql.Open(DriverName, "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repository{db: db, path: path}, nil
}

// Path returns the file the repository was opened from
func (r *Repository) Path() string {
	return r.path
}

// Queries returns how many queries have been issued against the handle
func (r *Repository) Queries() int64 {
	return r.queries.Load()
}

// RandomURL samples one record URL
func (r *Repository) RandomURL(ctx context.Context) (string, error) {
	var u sql.NullString

	r.queries.Add(1)
	err := r.db.QueryRowContext(ctx, queryRandomURL).Scan(&u)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query random url: %w", err)
	}
	if !u.Valid {
		return "", repository.ErrNotFound
	}

	return u.String, nil
}

// BodyByURL returns the payload stored for a record URL
func (r *Repository) BodyByURL(ctx context.Context, url string) ([]byte, error) {
	return r.body(ctx, queryBodyByURL, url)
}

// BodyByObjectURI returns the payload stored for an object URI
func (r *Repository) BodyByObjectURI(ctx context.Context, uri string) ([]byte, error) {
	return r.body(ctx, queryBodyByObject, uri)
}

func (r *Repository) body(ctx context.Context, query, arg string) ([]byte, error) {
	var body []byte

	r.queries.Add(1)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query body: %w", err)
	}
	if body == nil {
		return nil, repository.ErrNotFound
	}

	return body, nil
}

// Summaries opens a cursor over the summary projection. Row order is
// whatever SQLite returns.
func (r *Repository) Summaries(ctx context.Context) (repository.SummaryCursor, error) {
	r.queries.Add(1)
	rows, err := r.db.QueryContext(ctx, querySummaries)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	return &summaryCursor{rows: rows}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

type summaryCursor struct {
	rows *sql.Rows
}

func (c *summaryCursor) Next() bool {
	return c.rows.Next()
}

func (c *summaryCursor) Summary() (domain.Summary, error) {
	var (
		u                                          sql.NullString
		hasThumbnail, hasDataURL, hasThumbnailData sql.NullInt64
	)

	if err := c.rows.Scan(&u, &hasThumbnail, &hasDataURL, &hasThumbnailData); err != nil {
		return domain.Summary{}, fmt.Errorf("failed to scan summary: %w", err)
	}
	if !u.Valid {
		return domain.Summary{}, fmt.Errorf("summary row: %w", repository.ErrNotFound)
	}

	return domain.Summary{
		URL:                 u.String,
		HasThumbnail:        nullToBool(hasThumbnail),
		HasDataURL:          nullToBool(hasDataURL),
		HasThumbnailDataURL: nullToBool(hasThumbnailData),
	}, nil
}

func (c *summaryCursor) Err() error {
	return c.rows.Err()
}

func (c *summaryCursor) Close() error {
	return c.rows.Close()
}
