package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expertbook-backend/internal/cache"
	"expertbook-backend/internal/profile"
	"expertbook-backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

func newTestHandler(t *testing.T) (http.Handler, fixture, *profile.Store) {
	t.Helper()
	f := newFixture(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	profiles := profile.New(cache.NewMemory(), log)
	h := NewHandler(f.svc, profiles, nil, validation.New(), log)
	t.Cleanup(h.Wait)

	r := chi.NewRouter()
	r.Post("/bookings/select", h.Select)
	r.Post("/bookings", h.Checkout)
	r.Get("/bookings/{id}", h.Get)
	r.Post("/bookings/{id}/pay", h.Pay)
	r.Post("/bookings/{id}/reviews", h.Review)
	r.Get("/bookings/{id}/calendar.ics", h.Calendar)
	return r, f, profiles
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCheckoutValidation(t *testing.T) {
	h, f, _ := newTestHandler(t)
	slot := f.openSlot(t, "exp_demo")

	rec := doJSON(t, h, http.MethodPost, "/bookings", map[string]string{
		"expertId": "exp_demo",
		"slotId":   slot.ID,
		"name":     "A",
		"email":    "nope",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Details map[string]string `json:"details"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Details["Name"] == "" || body.Details["Email"] == "" {
		t.Fatalf("expected name and email details, got %v", body.Details)
	}
}

func TestHandlerFullFlow(t *testing.T) {
	h, f, profiles := newTestHandler(t)
	slot := f.openSlot(t, "exp_career")
	guest := map[string]string{profile.HeaderGuest: "guest_42"}

	rec := doJSON(t, h, http.MethodPost, "/bookings/select", SelectRequest{ExpertID: "exp_career", SlotID: slot.ID}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("select: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/bookings", map[string]string{
		"expertId": "exp_career",
		"slotId":   slot.ID,
		"name":     "Dana",
		"email":    "dana@example.kz",
	}, guest)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var checkout Result
	if err := json.Unmarshal(rec.Body.Bytes(), &checkout); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if checkout.Booking.ClientID != "guest_42" {
		t.Fatalf("expected guest id from header, got %s", checkout.Booking.ClientID)
	}
	if p := profiles.Load(context.Background(), "guest_42"); p.Email != "dana@example.kz" {
		t.Fatalf("expected guest profile saved, got %+v", p)
	}

	id := checkout.Booking.ID
	rec = doJSON(t, h, http.MethodPost, "/bookings/"+id+"/pay", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pay: expected 200, got %d", rec.Code)
	}
	var paid Result
	_ = json.Unmarshal(rec.Body.Bytes(), &paid)
	if paid.Next != "#/success?booking="+id {
		t.Fatalf("unexpected next: %s", paid.Next)
	}

	rec = doJSON(t, h, http.MethodPost, "/bookings/"+id+"/reviews", ReviewRequest{Rating: 9}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("review: expected 400 for rating 9, got %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, "/bookings/"+id+"/reviews", ReviewRequest{Rating: 5}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("review: expected 201, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/bookings/"+id+"/calendar.ics", nil)
	cal := httptest.NewRecorder()
	h.ServeHTTP(cal, req)
	if cal.Code != http.StatusOK || !strings.HasPrefix(cal.Header().Get("Content-Type"), "text/calendar") {
		t.Fatalf("calendar: unexpected response %d %s", cal.Code, cal.Header().Get("Content-Type"))
	}
	if !strings.Contains(cal.Header().Get("Content-Disposition"), "meeting_"+id+".ics") {
		t.Fatalf("calendar: unexpected disposition %s", cal.Header().Get("Content-Disposition"))
	}
}

func TestHandlerPayConflictAndNotFound(t *testing.T) {
	h, f, _ := newTestHandler(t)
	slot := f.openSlot(t, "exp_demo")
	first, _ := f.svc.StartCheckout(context.Background(), validCheckout(slot))
	second, _ := f.svc.StartCheckout(context.Background(), validCheckout(slot))

	if rec := doJSON(t, h, http.MethodPost, "/bookings/"+first.Booking.ID+"/pay", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/bookings/"+second.Booking.ID+"/pay", nil, nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/bookings/bk_missing/pay", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
