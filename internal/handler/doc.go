// Package handler exposes a collection over HTTP as JSON.
//
// # Endpoints
//
//	GET /api/random         a random object URL
//	GET /api/oembed?url=    the object stored for url (direct or nfc: URL)
//	GET /api/objects        summaries of every stored record; ?limit=N
//	GET /api/capabilities   configured capability flags
//	GET /healthz            liveness
//
// # Errors
//
// Failures are returned as {"error": ..., "details": ...}. Lookups that
// resolve to no unit or no record answer 404, malformed request URLs 400,
// and everything else 500.
//
// # Middleware
//
// Chain composes Recover and Logger around the mux.
package handler
