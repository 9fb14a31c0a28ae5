package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"wunderkammer/internal/collection"
	"wunderkammer/internal/domain"
	"wunderkammer/internal/logger"
	"wunderkammer/internal/metrics"
	"wunderkammer/internal/resolver"
)

// Collection is the subset of *collection.Collection the handlers use
type Collection interface {
	Name() string
	GetOEmbed(ctx context.Context, u *url.URL) (*domain.Object, error)
	RandomURL(ctx context.Context) (*url.URL, error)
	Iterate(ctx context.Context) *collection.Iterator
	Capabilities() domain.Capabilities
}

// CollectionHandler handles collection API requests
type CollectionHandler struct {
	collection Collection
	logger     *slog.Logger
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(c Collection, l *slog.Logger) *CollectionHandler {
	if l == nil {
		l = logger.L()
	}
	return &CollectionHandler{collection: c, logger: l}
}

// Routes registers the handler's endpoints on a new mux
func (h *CollectionHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/random", h.GetRandom)
	mux.HandleFunc("GET /api/oembed", h.GetOEmbed)
	mux.HandleFunc("GET /api/objects", h.ListObjects)
	mux.HandleFunc("GET /api/capabilities", h.GetCapabilities)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RandomResponse carries a random object URL
type RandomResponse struct {
	URL string `json:"url"`
}

// GetRandom returns the URL of a random object
func (h *CollectionHandler) GetRandom(w http.ResponseWriter, r *http.Request) {
	u, err := h.collection.RandomURL(r.Context())
	if err != nil {
		h.logger.Error("random_failed", "err", err)
		h.writeError(w, "Failed to select random object", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, RandomResponse{URL: u.String()}, http.StatusOK)
}

// GetOEmbed returns the object for the url query parameter
func (h *CollectionHandler) GetOEmbed(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		h.writeError(w, "url parameter required", "", http.StatusBadRequest)
		return
	}

	u, err := url.Parse(raw)
	if err != nil {
		h.writeError(w, "Invalid url", err.Error(), http.StatusBadRequest)
		return
	}

	obj, err := h.collection.GetOEmbed(r.Context(), u)
	if err != nil {
		status := lookupStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("oembed_failed", "url", raw, "err", err)
		}
		h.writeError(w, "Failed to get object", err.Error(), status)
		return
	}

	h.writeJSON(w, obj.View(), http.StatusOK)
}

func lookupStatus(err error) int {
	switch {
	case errors.Is(err, collection.ErrInvalidOEmbed),
		errors.Is(err, collection.ErrMissingUnitDatabase),
		errors.Is(err, collection.ErrMissingUnitID),
		errors.Is(err, resolver.ErrMissingFragment),
		errors.Is(err, resolver.ErrMissingID):
		return http.StatusNotFound
	case errors.Is(err, collection.ErrMissingOEmbedQueryParameter),
		errors.Is(err, collection.ErrInvalidNFCURL):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ListObjects streams record summaries as a JSON array
func (h *CollectionHandler) ListObjects(w http.ResponseWriter, r *http.Request) {
	limit := -1
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, "Invalid limit", v, http.StatusBadRequest)
			return
		}
		limit = n
	}

	it := h.collection.Iterate(r.Context())
	defer it.Close()

	summaries := []domain.Summary{}
	for s := range it.All() {
		if limit >= 0 && len(summaries) >= limit {
			break
		}
		summaries = append(summaries, s)
	}

	h.writeJSON(w, summaries, http.StatusOK)
}

// CapabilitiesResponse describes the collection's features
type CapabilitiesResponse struct {
	Collection   string              `json:"collection"`
	Capabilities domain.Capabilities `json:"capabilities"`
}

// GetCapabilities returns the configured capability flags
func (h *CollectionHandler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, CapabilitiesResponse{
		Collection:   h.collection.Name(),
		Capabilities: h.collection.Capabilities(),
	}, http.StatusOK)
}

// Health answers liveness probes
func (h *CollectionHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (h *CollectionHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("encode_json_failed", "err", err)
	}
}

func (h *CollectionHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.logger.Error("encode_error_failed", "err", err)
	}
}
