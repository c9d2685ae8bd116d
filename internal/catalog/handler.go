package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"expertbook-backend/internal/cache"
	"expertbook-backend/internal/middleware"
	"expertbook-backend/internal/transport"
	"github.com/go-chi/chi/v5"
)

const (
	cachePrefix       = "catalog:"
	listCachePrefix   = cachePrefix + "experts:"
	expertCachePrefix = cachePrefix + "expert:"
)

type Handler struct {
	service *Service
	cache   cache.Cache
	ttl     time.Duration
	log     *slog.Logger
}

func NewHandler(service *Service, c cache.Cache, ttl time.Duration, log *slog.Logger) *Handler {
	if c == nil {
		c = cache.NewNoop()
	}
	return &Handler{
		service: service,
		cache:   c,
		ttl:     ttl,
		log:     log,
	}
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": Categories(),
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		topic = TopicAll
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := listCachePrefix + topic
	if h.serveCached(ctx, w, key) {
		log.Info("catalog list: cache hit", slog.String("topic", topic))
		return
	}

	items := h.service.ListExperts(ListFilter{Topic: topic})
	payload := map[string]interface{}{
		"topic": topic,
		"items": items,
		"count": len(items),
	}
	h.store(ctx, key, payload)

	log.Info("catalog list: ok", slog.String("topic", topic), slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, payload)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	slug, ok := h.slugParam(w, r, "catalog get")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := expertCachePrefix + slug
	if h.serveCached(ctx, w, key) {
		log.Info("catalog get: cache hit", slog.String("slug", slug))
		return
	}

	detail, err := h.service.Detail(slug)
	if err != nil {
		h.writeLookupError(w, log, "catalog get", slug, err)
		return
	}
	h.store(ctx, key, detail)

	log.Info("catalog get: ok", slog.String("slug", slug))
	transport.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	slug, ok := h.slugParam(w, r, "catalog slots")
	if !ok {
		return
	}

	expert, err := h.service.GetBySlug(slug)
	if err != nil {
		h.writeLookupError(w, log, "catalog slots", slug, err)
		return
	}

	items := h.service.SlotsForExpert(expert.ID)
	log.Info("catalog slots: ok", slog.String("slug", slug), slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

func (h *Handler) Reviews(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	slug, ok := h.slugParam(w, r, "catalog reviews")
	if !ok {
		return
	}

	expert, err := h.service.GetBySlug(slug)
	if err != nil {
		h.writeLookupError(w, log, "catalog reviews", slug, err)
		return
	}

	items := h.service.ReviewsForExpert(expert.ID)
	log.Info("catalog reviews: ok", slog.String("slug", slug), slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":         items,
		"averageRating": averageOf(items),
	})
}

// InvalidateExpert drops the cached page of one expert after its slots or
// reviews change.
func (h *Handler) InvalidateExpert(ctx context.Context, expertID string) {
	for _, card := range h.service.ListExperts(ListFilter{}) {
		if card.ID != expertID {
			continue
		}
		if err := h.cache.Delete(ctx, expertCachePrefix+card.Slug); err != nil {
			h.log.Warn("catalog invalidate: cache error", slog.String("expert_id", expertID), slog.String("error", err.Error()))
		}
		return
	}
}

// Purge drops every cached catalog response.
func (h *Handler) Purge(ctx context.Context) {
	if err := h.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		h.log.Warn("catalog purge: cache error", slog.String("error", err.Error()))
	}
}

func (h *Handler) slugParam(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		h.logWithRequest(r).Warn(op + ": missing slug")
		transport.WriteError(w, http.StatusBadRequest, "missing slug", nil)
		return "", false
	}
	return slug, true
}

func (h *Handler) writeLookupError(w http.ResponseWriter, log *slog.Logger, op, slug string, err error) {
	if errors.Is(err, ErrNotFound) {
		log.Warn(op+": not found", slog.String("slug", slug))
		transport.WriteError(w, http.StatusNotFound, "expert not found", nil)
		return
	}
	log.Error(op+": store error", slog.String("error", err.Error()))
	transport.WriteError(w, http.StatusInternalServerError, "store error", nil)
}

func (h *Handler) serveCached(ctx context.Context, w http.ResponseWriter, key string) bool {
	raw, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.log.Warn("catalog cache: get failed", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if !ok {
		return false
	}
	transport.WriteCachedJSON(w, raw)
	return true
}

func (h *Handler) store(ctx context.Context, key string, payload interface{}) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, buf.Bytes(), h.ttl); err != nil {
		h.log.Warn("catalog cache: set failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
