package transport

import (
	"encoding/json"
	"mime"
	"net/http"
)

const (
	HeaderCache = "X-Cache"
	CacheHit    = "HIT"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON encodes payload without HTML escaping; links and fragments such
// as "#/checkout?booking=..." stay readable.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string, details map[string]string) {
	WriteJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// WriteCachedJSON replays an already encoded 200 response from a cache.
func WriteCachedJSON(w http.ResponseWriter, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderCache, CacheHit)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// WriteFile sends body as a download named filename.
func WriteFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
