// Package profile remembers a guest's name and e-mail between visits so the
// booking form can be prefilled. Storage is best effort: failures are logged
// and otherwise ignored.
package profile

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"expertbook-backend/internal/cache"
	"expertbook-backend/internal/models"
)

const (
	keyPrefix   = "guestProfile:"
	HeaderGuest = "X-Guest-ID"
	CookieGuest = "guest_id"
)

var guestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Store struct {
	cache cache.Cache
	log   *slog.Logger
}

func New(c cache.Cache, log *slog.Logger) *Store {
	if c == nil {
		c = cache.NewMemory()
	}
	return &Store{cache: c, log: log}
}

func (s *Store) Load(ctx context.Context, guestID string) models.GuestProfile {
	raw, ok, err := s.cache.Get(ctx, keyPrefix+guestID)
	if err != nil {
		s.log.Warn("guest profile load: cache error", slog.String("guest_id", guestID), slog.String("error", err.Error()))
		return models.GuestProfile{}
	}
	if !ok {
		return models.GuestProfile{}
	}
	var p models.GuestProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		s.log.Warn("guest profile load: decode error", slog.String("guest_id", guestID), slog.String("error", err.Error()))
		return models.GuestProfile{}
	}
	return p
}

func (s *Store) Save(ctx context.Context, guestID string, p models.GuestProfile) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	raw, err := json.Marshal(p)
	if err != nil {
		s.log.Warn("guest profile save: encode error", slog.String("guest_id", guestID), slog.String("error", err.Error()))
		return
	}
	if err := s.cache.Set(ctx, keyPrefix+guestID, raw, 0); err != nil {
		s.log.Warn("guest profile save: cache error", slog.String("guest_id", guestID), slog.String("error", err.Error()))
	}
}

// GuestID identifies the caller by header, then cookie, falling back to the
// shared demo guest.
func GuestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(HeaderGuest)); guestIDPattern.MatchString(id) {
		return id
	}
	if c, err := r.Cookie(CookieGuest); err == nil && guestIDPattern.MatchString(c.Value) {
		return c.Value
	}
	return models.DefaultClientID
}
