package handlers

import (
	"log/slog"
	"net/http"

	"expertbook-backend/internal/httpx"
	"expertbook-backend/internal/metrics"
	"expertbook-backend/internal/transport"
)

type TrackRequest struct {
	Event  string                 `json:"event" validate:"required,max=64,eventname"`
	Detail map[string]interface{} `json:"detail"`
}

func (s *Server) TrackEvent(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	var req TrackRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("events track: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("events track: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	event := s.Tracker.Track(req.Event, req.Detail)
	log.Debug("events track: ok", slog.String("event", req.Event), slog.String("event_id", event.ID))
	transport.WriteJSON(w, http.StatusCreated, event)
}

func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 100, 1000)
	if err != nil {
		log.Warn("events list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	all := s.Tracker.List()
	total := int64(len(all))
	items := httpx.Page(all, limit, offset)

	log.Info("events list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (s *Server) ExportEventsCSV(w http.ResponseWriter, r *http.Request) {
	s.writeExport(w, r, "csv", s.Metrics.ExportCSV)
}

func (s *Server) ExportEventsJSON(w http.ResponseWriter, r *http.Request) {
	s.writeExport(w, r, "json", s.Metrics.ExportJSON)
}

func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, format string, build func() (metrics.Export, error)) {
	log := s.logWithRequest(r)
	export, err := build()
	if err != nil {
		log.Error("events export: encode error", slog.String("format", format), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "export error", nil)
		return
	}
	log.Info("events export: ok", slog.String("format", format), slog.String("filename", export.Filename))
	transport.WriteFile(w, export.ContentType, export.Filename, export.Body)
}
