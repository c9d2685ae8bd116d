package handlers

import (
	"log/slog"
	"net/http"

	"expertbook-backend/internal/selftest"
	"expertbook-backend/internal/transport"
)

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"seeded":  s.Store.Seeded(),
		"experts": s.Store.CountExperts(),
	})
}

func (s *Server) SelfTest(w http.ResponseWriter, r *http.Request) {
	report := selftest.Run(s.now())
	log := s.logWithRequest(r)
	if !report.OK() {
		log.Warn("qa: checks failed", slog.Int("passed", report.Passed), slog.Int("total", report.Total))
	} else {
		log.Info("qa: ok", slog.Int("total", report.Total))
	}
	transport.WriteJSON(w, http.StatusOK, report)
}
