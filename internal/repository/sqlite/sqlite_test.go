package sqlite_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"wunderkammer/internal/domain"
	"wunderkammer/internal/repository"
	"wunderkammer/internal/repository/sqlite"
	"wunderkammer/internal/repository/sqlite/sqlitetest"
)

// ============================================================================
// Test Helpers
// ============================================================================

func newTestRepo(t *testing.T, rows ...sqlitetest.Row) *sqlite.Repository {
	t.Helper()
	path := sqlitetest.WriteDatabase(t, t.TempDir(), "unit.db", rows...)

	repo, err := sqlite.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("failed to open test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// ============================================================================
// Open
// ============================================================================

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	if _, err := sqlite.Open(context.Background(), path); err == nil {
		t.Fatal("expected error opening a missing file read-only")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("read-only open must not create %s", path)
	}
}

// ============================================================================
// Queries
// ============================================================================

func TestRandomURL(t *testing.T) {
	ctx := context.Background()

	t.Run("single row", func(t *testing.T) {
		repo := newTestRepo(t, sqlitetest.Row{URL: "https://example.com/o/1#a", ObjectURI: "a:1"})
		for i := 0; i < 5; i++ {
			u, err := repo.RandomURL(ctx)
			assertNoError(t, err)
			assertEqual(t, "https://example.com/o/1#a", u)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		repo := newTestRepo(t)
		_, err := repo.RandomURL(ctx)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestBodyLookups(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t,
		sqlitetest.Row{URL: "https://example.com/o/1_b.jpg", ObjectURI: "obj:1"},
		sqlitetest.Row{URL: "https://example.com/o/2_b.jpg", ObjectURI: "obj:2", NullBody: true},
	)

	t.Run("by url", func(t *testing.T) {
		body, err := repo.BodyByURL(ctx, "https://example.com/o/1_b.jpg")
		assertNoError(t, err)
		assertEqual(t, sqlitetest.Body("https://example.com/o/1_b.jpg", "obj:1"), string(body))
	})

	t.Run("by object uri", func(t *testing.T) {
		body, err := repo.BodyByObjectURI(ctx, "obj:1")
		assertNoError(t, err)
		assertEqual(t, sqlitetest.Body("https://example.com/o/1_b.jpg", "obj:1"), string(body))
	})

	t.Run("no match", func(t *testing.T) {
		_, err := repo.BodyByURL(ctx, "https://example.com/o/404")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("null body", func(t *testing.T) {
		_, err := repo.BodyByObjectURI(ctx, "obj:2")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("parameters are bound", func(t *testing.T) {
		_, err := repo.BodyByURL(ctx, "' OR 1=1 --")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestQueriesCounter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, sqlitetest.Row{URL: "https://example.com/1", ObjectURI: "o:1"})

	assertEqual(t, int64(0), repo.Queries())
	repo.RandomURL(ctx)
	repo.BodyByURL(ctx, "https://example.com/1")
	repo.BodyByObjectURI(ctx, "o:1")
	assertEqual(t, int64(3), repo.Queries())
}

func TestSummaries(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t,
		sqlitetest.Row{URL: "https://example.com/1", HasThumbnail: true},
		sqlitetest.Row{URL: "https://example.com/2", HasDataURL: true, HasThumbnailDataURL: true},
	)

	cursor, err := repo.Summaries(ctx)
	assertNoError(t, err)
	defer cursor.Close()

	got := map[string]domain.Summary{}
	for cursor.Next() {
		s, err := cursor.Summary()
		assertNoError(t, err)
		got[s.URL] = s
	}
	assertNoError(t, cursor.Err())

	assertEqual(t, map[string]domain.Summary{
		"https://example.com/1": {URL: "https://example.com/1", HasThumbnail: true},
		"https://example.com/2": {URL: "https://example.com/2", HasDataURL: true, HasThumbnailDataURL: true},
	}, got)
}
