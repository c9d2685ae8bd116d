package handlers

import (
	"log/slog"
	"net/http"

	"expertbook-backend/internal/profile"
	"expertbook-backend/internal/transport"
)

func (s *Server) Funnel(w http.ResponseWriter, r *http.Request) {
	f := s.Metrics.Funnel()
	s.logWithRequest(r).Info("metrics funnel: ok", slog.Int("pays", f.Pays), slog.Int("revenue", f.Revenue))
	transport.WriteJSON(w, http.StatusOK, f)
}

func (s *Server) ExpertDashboard(w http.ResponseWriter, r *http.Request) {
	items := s.Metrics.ExpertStats()
	s.logWithRequest(r).Info("dashboard experts: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

func (s *Server) ClientDashboard(w http.ResponseWriter, r *http.Request) {
	guest := profile.GuestID(r)
	items := s.Metrics.ClientBookings(guest)
	s.logWithRequest(r).Info("dashboard client: ok", slog.String("guest_id", guest), slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"clientId": guest,
		"items":    items,
	})
}
