package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expertbook-backend/internal/cache"
	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T, c cache.Cache) (http.Handler, *Handler) {
	t.Helper()
	svc, _ := seededService(t)
	h := NewHandler(svc, c, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Get("/experts", h.List)
	r.Get("/experts/{slug}", h.Get)
	r.Get("/experts/{slug}/slots", h.Slots)
	return r, h
}

func TestHandlerListUsesCache(t *testing.T) {
	mem := cache.NewMemory()
	r, h := newTestRouter(t, mem)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/experts?topic=career", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Topic string `json:"topic"`
		Count int    `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Topic != "career" || body.Count == 0 {
		t.Fatalf("unexpected body: %+v", body)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/experts?topic=career", nil))
	if rec.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("expected cached response on second request")
	}

	h.Purge(context.Background())
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/experts?topic=career", nil))
	if rec.Header().Get("X-Cache") == "HIT" {
		t.Fatalf("expected miss after purge")
	}
}

func TestHandlerGetNotFound(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/experts/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerInvalidateExpert(t *testing.T) {
	mem := cache.NewMemory()
	r, h := newTestRouter(t, mem)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/experts/demo-expert", nil))
	if _, ok, _ := mem.Get(context.Background(), expertCachePrefix+"demo-expert"); !ok {
		t.Fatalf("expected expert page cached")
	}
	h.InvalidateExpert(context.Background(), "exp_demo")
	if _, ok, _ := mem.Get(context.Background(), expertCachePrefix+"demo-expert"); ok {
		t.Fatalf("expected expert page evicted")
	}
}
