package leads

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"expertbook-backend/internal/httpx"
	"expertbook-backend/internal/middleware"
	"expertbook-backend/internal/models"
	"expertbook-backend/internal/transport"
	"expertbook-backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
	notify  sync.WaitGroup
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("lead create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		log.Warn("lead create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lead, err := h.service.Create(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidName):
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"name": "trimmin"})
		case errors.Is(err, ErrInvalidEmail):
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"email": "emaillite"})
		case errors.Is(err, ErrInvalidTopic):
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"topic": "category"})
		default:
			log.Error("lead create: store error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "store error", nil)
		}
		return
	}

	h.notify.Add(1)
	go func(created models.Lead) {
		defer h.notify.Done()
		notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer notifyCancel()
		if err := h.service.NotifyNewLead(notifyCtx, created); err != nil {
			h.log.Warn("lead create: notification failed",
				slog.String("lead_id", created.ID),
				slog.String("error", err.Error()),
			)
		}

		if err := h.service.NotifyLeadConfirmation(notifyCtx, created); err != nil {
			h.log.Warn("lead create: user confirmation email failed",
				slog.String("lead_id", created.ID),
				slog.String("email", created.Email),
				slog.String("error", err.Error()),
			)
		}
	}(lead)

	log.Info("lead create: ok", slog.String("lead_id", lead.ID), slog.String("topic", lead.Topic))
	transport.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "lead submitted",
		"id":      lead.ID,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 20, 100)
	if err != nil {
		log.Warn("lead list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	items, total := h.service.List(r.Context(), limit, offset)

	log.Info("lead list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn("lead get: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	lead, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("lead get: not found", slog.String("lead_id", id))
			transport.WriteError(w, http.StatusNotFound, "lead not found", nil)
			return
		}
		log.Error("lead get: store error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "store error", nil)
		return
	}

	log.Info("lead get: ok", slog.String("lead_id", id))
	transport.WriteJSON(w, http.StatusOK, lead)
}

// Wait blocks until pending lead e-mails are sent.
func (h *Handler) Wait() {
	h.notify.Wait()
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
