package leads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"expertbook-backend/internal/models"
	"expertbook-backend/internal/store"
	"expertbook-backend/internal/tracker"
	"expertbook-backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

type recordingNotifier struct {
	mu        sync.Mutex
	alerts    []string
	confirmed []string
	alertErr  error
}

func (n *recordingNotifier) SendLeadNotification(ctx context.Context, lead models.Lead) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, lead.ID)
	return "msg-alert", n.alertErr
}

func (n *recordingNotifier) SendLeadConfirmation(ctx context.Context, lead models.Lead) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, lead.Email)
	return "msg-confirm", nil
}

func newRouter(t *testing.T, notifier Notifier) (http.Handler, *Handler) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New()
	tr := tracker.New(st, log)
	h := NewHandler(NewService(st, tr, notifier), validation.New(), log)

	r := chi.NewRouter()
	r.Post("/leads", h.Create)
	r.Get("/leads", h.List)
	r.Get("/leads/{id}", h.Get)
	return r, h
}

func TestHandlerCreateSendsBothMails(t *testing.T) {
	notifier := &recordingNotifier{alertErr: errors.New("ops inbox down")}
	r, h := newRouter(t, notifier)

	body := `{"name":"Dana","email":"Dana@Example.kz","priceKZT":40000}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	h.Wait()

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.alerts) != 1 {
		t.Fatalf("expected one ops alert, got %d", len(notifier.alerts))
	}
	if len(notifier.confirmed) != 1 || notifier.confirmed[0] != "dana@example.kz" {
		t.Fatalf("confirmation must still go out after a failed alert, got %v", notifier.confirmed)
	}
}

func TestHandlerListAndGet(t *testing.T) {
	r, h := newRouter(t, nil)
	t.Cleanup(h.Wait)

	var ids []string
	for _, name := range []string{"Ann", "Bob", "Cem"} {
		body := `{"name":"` + name + `","email":"` + strings.ToLower(name) + `@example.kz"}`
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(body)))
		var created struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &created)
		ids = append(ids, created.ID)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads?limit=2", nil))
	var page struct {
		Items []models.Lead `json:"items"`
		Total int64         `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.Items[0].Name != "Cem" {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[0].Topic != DefaultTopic {
		t.Fatalf("expected default topic, got %q", page.Items[0].Topic)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/"+ids[0], nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"Ann"`) {
		t.Fatalf("unexpected get response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/lead_missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads?offset=-3", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative offset, got %d", rec.Code)
	}
}
