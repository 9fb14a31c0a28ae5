// Package sqlitetest builds unit database fixtures for tests.
package sqlitetest

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"wunderkammer/internal/repository/sqlite"
)

// Row is one oembed row. An empty Body is filled with a valid payload
// derived from URL and ObjectURI unless NullBody is set.
type Row struct {
	URL                 string
	ObjectURI           string
	Body                string
	NullBody            bool
	HasThumbnail        bool
	HasDataURL          bool
	HasThumbnailDataURL bool
}

// Body returns a minimal valid oEmbed payload
func Body(url, objectURI string) string {
	payload := map[string]any{
		"version":       "1.0",
		"type":          "photo",
		"provider_name": "Test Museum",
		"title":         "Object " + objectURI,
		"url":           url,
		"height":        480,
		"width":         640,
	}
	if objectURI != "" {
		payload["object_uri"] = objectURI
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

// WriteDatabase creates dir/name with the oembed schema and rows
func WriteDatabase(t testing.TB, dir, name string, rows ...Row) string {
	t.Helper()

	path := filepath.Join(dir, name)
	db, err := sql.Open(sqlite.DriverName, path)
	if err != nil {
		t.Fatalf("failed to create fixture %s: %v", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(sqlite.Schema); err != nil {
		t.Fatalf("failed to create schema in %s: %v", path, err)
	}

	for _, row := range rows {
		var body sql.NullString
		if !row.NullBody {
			body = sql.NullString{String: row.Body, Valid: true}
			if row.Body == "" {
				body.String = Body(row.URL, row.ObjectURI)
			}
		}

		var objectURI sql.NullString
		if row.ObjectURI != "" {
			objectURI = sql.NullString{String: row.ObjectURI, Valid: true}
		}

		_, err := db.Exec(`
			INSERT INTO oembed (url, object_uri, body, has_thumbnail, has_data_url, has_thumbnail_data_url)
			VALUES (?, ?, ?, ?, ?, ?)
		`, row.URL, objectURI, body, row.HasThumbnail, row.HasDataURL, row.HasThumbnailDataURL)
		if err != nil {
			t.Fatalf("failed to insert %s into %s: %v", row.URL, path, err)
		}
	}

	return path
}
