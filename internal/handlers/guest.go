package handlers

import (
	"net/http"

	"expertbook-backend/internal/httpx"
	"expertbook-backend/internal/models"
	"expertbook-backend/internal/profile"
	"expertbook-backend/internal/transport"
)

type GuestProfileRequest struct {
	Name  string `json:"name" validate:"max=120"`
	Email string `json:"email" validate:"max=200"`
}

func (s *Server) GetGuestProfile(w http.ResponseWriter, r *http.Request) {
	guest := profile.GuestID(r)
	transport.WriteJSON(w, http.StatusOK, s.Profiles.Load(r.Context(), guest))
}

// PutGuestProfile stores whatever the form currently holds; incomplete values
// are kept as typed.
func (s *Server) PutGuestProfile(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)

	var req GuestProfileRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("guest profile save: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("guest profile save: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	guest := profile.GuestID(r)
	p := models.GuestProfile{Name: req.Name, Email: req.Email}
	s.Profiles.Save(r.Context(), guest, p)
	transport.WriteJSON(w, http.StatusOK, s.Profiles.Load(r.Context(), guest))
}
