package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"expertbook-backend/internal/booking"
	"expertbook-backend/internal/catalog"
	"expertbook-backend/internal/metrics"
	"expertbook-backend/internal/middleware"
	"expertbook-backend/internal/profile"
	"expertbook-backend/internal/store"
	"expertbook-backend/internal/tracker"
	"expertbook-backend/internal/validation"
)

// Server serves the cross-cutting endpoints: resolved views, the event log,
// metrics, dashboards, the guest profile and health checks.
type Server struct {
	Store    *store.Store
	Catalog  *catalog.Service
	Bookings *booking.Service
	Metrics  *metrics.Service
	Tracker  *tracker.Tracker
	Profiles *profile.Store
	Val      *validation.Validator
	Log      *slog.Logger
	Location *time.Location
	Now      func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
