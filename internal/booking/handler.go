package booking

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
	"expertbook-backend/internal/profile"
	"expertbook-backend/internal/transport"
	"expertbook-backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// ExpertInvalidator drops cached expert pages after slots or reviews change.
type ExpertInvalidator interface {
	InvalidateExpert(ctx context.Context, expertID string)
}

type Handler struct {
	service  *Service
	profiles *profile.Store
	cache    ExpertInvalidator
	val      *validation.Validator
	log      *slog.Logger
	notify   sync.WaitGroup
}

func NewHandler(service *Service, profiles *profile.Store, cache ExpertInvalidator, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		profiles: profiles,
		cache:    cache,
		val:      val,
		log:      log,
	}
}

func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req SelectRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("booking select: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("booking select: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sel, err := h.service.SelectSlot(ctx, req.ExpertID, req.SlotID)
	if err != nil {
		h.writeFlowError(w, log, "booking select", err)
		return
	}

	log.Info("booking select: ok", slog.String("expert_id", sel.ExpertID), slog.String("slot_id", sel.SlotID))
	transport.WriteJSON(w, http.StatusOK, sel)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CheckoutRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("booking checkout: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("booking checkout: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}
	req.ClientID = profile.GuestID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.service.StartCheckout(ctx, req)
	if err != nil {
		h.writeFlowError(w, log, "booking checkout", err)
		return
	}

	if h.profiles != nil {
		h.profiles.Save(ctx, req.ClientID, models.GuestProfile{Name: req.Name, Email: req.Email})
	}

	log.Info("booking checkout: ok",
		slog.String("booking_id", res.Booking.ID),
		slog.String("expert_id", res.Booking.ExpertID),
		slog.Int("price", res.Booking.PriceKZT),
	)
	transport.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, "booking get")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeFlowError(w, log, "booking get", err)
		return
	}

	log.Info("booking get: ok", slog.String("booking_id", id), slog.String("state", string(view.State)))
	transport.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, "booking pay")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.service.Pay(ctx, id)
	if err != nil {
		h.writeFlowError(w, log, "booking pay", err)
		return
	}

	if res.AlreadyPaid {
		log.Info("booking pay: already paid", slog.String("booking_id", id))
		transport.WriteJSON(w, http.StatusOK, res)
		return
	}

	if h.cache != nil {
		h.cache.InvalidateExpert(ctx, res.Booking.ExpertID)
	}

	h.notify.Add(1)
	go func(paid models.Booking) {
		defer h.notify.Done()
		notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer notifyCancel()
		if err := h.service.NotifyPaid(notifyCtx, paid); err != nil {
			h.log.Warn("booking pay: confirmation email failed",
				slog.String("booking_id", paid.ID),
				slog.String("error", err.Error()),
			)
		}
	}(res.Booking)

	log.Info("booking pay: ok", slog.String("booking_id", id), slog.Int("price", res.Booking.PriceKZT))
	transport.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, "booking review")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("booking review: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("booking review: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.service.Review(ctx, id, req)
	if err != nil {
		h.writeFlowError(w, log, "booking review", err)
		return
	}
	if h.cache != nil {
		h.cache.InvalidateExpert(ctx, res.Review.ExpertID)
	}

	log.Info("booking review: ok", slog.String("booking_id", id), slog.Int("rating", res.Review.Rating))
	transport.WriteJSON(w, http.StatusCreated, res)
}

// Calendar serves the .ics file, or its data URL when format=dataurl.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.idParam(w, r, "booking calendar")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	export, err := h.service.Calendar(ctx, id)
	if err != nil {
		h.writeFlowError(w, log, "booking calendar", err)
		return
	}

	log.Info("booking calendar: ok", slog.String("booking_id", id))
	if r.URL.Query().Get("format") == "dataurl" {
		transport.WriteJSON(w, http.StatusOK, map[string]string{
			"filename": export.Filename,
			"dataUrl":  export.DataURL(),
		})
		return
	}
	transport.WriteFile(w, export.ContentType+"; charset=utf-8", export.Filename, []byte(export.Content))
}

// Wait blocks until pending confirmation e-mails are sent.
func (h *Handler) Wait() {
	h.notify.Wait()
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		h.logWithRequest(r).Warn(op + ": missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return "", false
	}
	return id, true
}

func (h *Handler) writeFlowError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn(op + ": not found")
		transport.WriteError(w, http.StatusNotFound, "booking not found", nil)
	case errors.Is(err, ErrExpertNotFound):
		log.Warn(op + ": expert not found")
		transport.WriteError(w, http.StatusNotFound, "expert not found", nil)
	case errors.Is(err, ErrSlotNotFound):
		log.Warn(op + ": slot not found")
		transport.WriteError(w, http.StatusNotFound, "slot not found", nil)
	case errors.Is(err, ErrSlotUnavailable):
		log.Warn(op + ": slot unavailable")
		transport.WriteError(w, http.StatusConflict, "slot already booked", nil)
	case errors.Is(err, ErrNotPaid):
		log.Warn(op + ": not paid")
		transport.WriteError(w, http.StatusConflict, "booking is not paid", nil)
	case errors.Is(err, ErrNoSlot):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"slotId": "required"})
	case errors.Is(err, ErrInvalidEmail):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"email": "emaillite"})
	case errors.Is(err, ErrInvalidName):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"name": "trimmin"})
	case errors.Is(err, ErrInvalidRating):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"rating": "range"})
	default:
		log.Error(op+": store error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "store error", nil)
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
