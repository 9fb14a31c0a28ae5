package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wunderkammer/internal/collection"
	"wunderkammer/internal/domain"
	"wunderkammer/internal/registry"
	"wunderkammer/internal/repository/sqlite/sqlitetest"
	"wunderkammer/internal/resolver"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	base := t.TempDir()
	root := filepath.Join(base, "collection")
	if err := os.Mkdir(root, 0755); err != nil {
		t.Fatal(err)
	}
	sqlitetest.WriteDatabase(t, root, "alpha.db",
		sqlitetest.Row{URL: "https://example.com/o/1#alpha", ObjectURI: "https://example.com/obj/1#alpha"},
		sqlitetest.Row{URL: "https://example.com/o/2#alpha", ObjectURI: "https://example.com/obj/2#alpha", HasThumbnail: true},
	)
	sqlitetest.WriteDatabase(t, root, "beta.db",
		sqlitetest.Row{URL: "https://example.com/o/3#beta", ObjectURI: "https://example.com/obj/3#beta"},
	)

	res, err := resolver.NewURI(resolver.ModeFragment)
	if err != nil {
		t.Fatal(err)
	}

	c, err := collection.New(context.Background(), collection.Options{
		Name:         "test",
		Root:         "collection",
		Paths:        registry.DataDir{Base: base},
		Resolver:     res,
		Capabilities: domain.Capabilities{NFCTags: true, RandomObject: true},
		Logger:       quiet,
	})
	if err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return NewCollectionHandler(c, quiet).Routes()
}

func oembedPath(raw string) string {
	return "/api/oembed?" + url.Values{"url": {raw}}.Encode()
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetOEmbed(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h, oembedPath("https://example.com/o/2#alpha"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var view domain.ObjectView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.Collection != "test" {
		t.Errorf("expected collection test, got %q", view.Collection)
	}
	if view.ObjectID != "https://example.com/obj/2#alpha" {
		t.Errorf("unexpected object id %q", view.ObjectID)
	}
	if view.OEmbed == nil || view.OEmbed.URL != "https://example.com/o/2#alpha" {
		t.Errorf("unexpected embedded record %+v", view.OEmbed)
	}
}

func TestGetOEmbedIndirect(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h, oembedPath("nfc:///?url="+url.QueryEscape("https://example.com/obj/3#beta")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetOEmbedErrors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing parameter", "/api/oembed", http.StatusBadRequest},
		{"unknown url", oembedPath("https://example.com/o/9#alpha"), http.StatusNotFound},
		{"unknown unit", oembedPath("https://example.com/o/1#gamma"), http.StatusNotFound},
		{"no fragment", oembedPath("https://example.com/o/1"), http.StatusNotFound},
		{"nfc without url", oembedPath("nfc:///?id=1"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.target)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}

			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if resp.Error == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestGetRandom(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h, "/api/random")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RandomResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.URL, "https://example.com/o/") {
		t.Errorf("unexpected random url %q", resp.URL)
	}
}

func TestListObjects(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h, "/api/objects")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var summaries []domain.Summary
	if err := json.NewDecoder(rec.Body).Decode(&summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}
	if summaries[0].URL != "https://example.com/o/1#alpha" {
		t.Errorf("expected alpha unit first, got %q", summaries[0].URL)
	}
}

func TestListObjectsLimit(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h, "/api/objects?limit=1")
	var summaries []domain.Summary
	if err := json.NewDecoder(rec.Body).Decode(&summaries); err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Errorf("expected 1 summary, got %d", len(summaries))
	}

	rec = serve(h, "/api/objects?limit=x")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestGetCapabilities(t *testing.T) {
	h := newTestHandler(t)

	rec := serve(h, "/api/capabilities")
	var resp CapabilitiesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Collection != "test" {
		t.Errorf("expected collection test, got %q", resp.Collection)
	}
	if !resp.Capabilities.NFCTags || resp.Capabilities.SaveObject {
		t.Errorf("unexpected capabilities %+v", resp.Capabilities)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestHandler(t)

	if rec := serve(h, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("expected 200 from healthz, got %d", rec.Code)
	}

	rec := serve(h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "wunderkammer_units_registered") {
		t.Error("expected units gauge in metrics output")
	}
}

func TestRecoverMiddleware(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	h := Chain(panicky, Recover, CORS, Logger)

	rec := serve(h, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := Chain(http.NotFoundHandler(), CORS)

	req := httptest.NewRequest(http.MethodOptions, "/api/random", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected allow-origin header")
	}
}
