package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"expertbook-backend/internal/booking"
	"expertbook-backend/internal/catalog"
	"expertbook-backend/internal/leads"
	"expertbook-backend/internal/metrics"
	"expertbook-backend/internal/models"
	"expertbook-backend/internal/profile"
	"expertbook-backend/internal/route"
	"expertbook-backend/internal/schedule"
	"expertbook-backend/internal/selftest"
	"expertbook-backend/internal/transport"
)

const (
	landingExperts   = 20
	defaultLeadPrice = 50000
)

var errViewNotFound = errors.New("view subject not found")

type ViewResponse struct {
	Route route.Route `json:"route"`
	Model interface{} `json:"model"`
}

type LandingModel struct {
	Categories []models.Category `json:"categories"`
	Experts    []catalog.Card    `json:"experts"`
}

type CatalogModel struct {
	Topic      string            `json:"topic"`
	Categories []models.Category `json:"categories"`
	Experts    []catalog.Card    `json:"experts"`
}

type ExpertModel struct {
	catalog.Detail
	Prefill models.GuestProfile `json:"prefill"`
}

type SuccessModel struct {
	booking.View
	// StartsDisplay is the slot start in the server's display timezone.
	StartsDisplay string        `json:"startsDisplay,omitempty"`
	Calendar      *CalendarLink `json:"calendar,omitempty"`
}

type CalendarLink struct {
	Filename string `json:"filename"`
	DataURL  string `json:"dataUrl"`
}

type LeadFormModel struct {
	Categories   []models.Category `json:"categories"`
	DefaultTopic string            `json:"defaultTopic"`
	DefaultPrice int               `json:"defaultPrice"`
}

type LogsModel struct {
	Funnel       metrics.Funnel `json:"funnel"`
	Events       []models.Event `json:"events"`
	CSVFilename  string         `json:"csvFilename"`
	JSONFilename string         `json:"jsonFilename"`
}

// View resolves ?hash=<fragment> and returns the model of the matching page.
// Page views are tracked as the front end would on render.
func (s *Server) View(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	rt := route.Resolve(r.URL.Query().Get("hash"))

	model, err := s.viewModel(r, rt)
	if err != nil {
		if errors.Is(err, errViewNotFound) {
			log.Warn("view: not found", slog.String("view", string(rt.View)), slog.String("path", rt.Path))
			transport.WriteError(w, http.StatusNotFound, "not found", map[string]string{"view": string(rt.View)})
			return
		}
		log.Error("view: build error", slog.String("view", string(rt.View)), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "view error", nil)
		return
	}

	log.Info("view: ok", slog.String("view", string(rt.View)))
	transport.WriteJSON(w, http.StatusOK, ViewResponse{Route: rt, Model: model})
}

func (s *Server) viewModel(r *http.Request, rt route.Route) (interface{}, error) {
	switch rt.View {
	case route.ViewExperts:
		topic := rt.Topic()
		items := s.Catalog.ListExperts(catalog.ListFilter{Topic: topic})
		s.Tracker.Track(models.EventViewCatalog, map[string]interface{}{
			"topicKey": topic,
			"count":    len(items),
		})
		return CatalogModel{Topic: topic, Categories: catalog.Categories(), Experts: items}, nil

	case route.ViewExpert:
		detail, err := s.Catalog.Detail(rt.Slug)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, errViewNotFound
			}
			return nil, err
		}
		s.Tracker.Track(models.EventViewExpert, map[string]interface{}{
			"expertId": detail.ID,
			"slug":     rt.Slug,
		})
		return ExpertModel{
			Detail:  detail,
			Prefill: s.Profiles.Load(r.Context(), profile.GuestID(r)),
		}, nil

	case route.ViewCheckout:
		return s.bookingView(r, rt)

	case route.ViewSuccess:
		view, err := s.bookingView(r, rt)
		if err != nil {
			return nil, err
		}
		model := SuccessModel{View: view}
		if view.Slot != nil {
			model.StartsDisplay = schedule.DisplayTime(view.Slot.StartsAt, s.Location)
		}
		if export, err := s.Bookings.Calendar(r.Context(), view.ID); err == nil {
			model.Calendar = &CalendarLink{Filename: export.Filename, DataURL: export.DataURL()}
		}
		if model.MeetURL == "" {
			model.MeetURL = s.Bookings.MeetingLink(view.ID)
		}
		return model, nil

	case route.ViewLeads:
		return LeadFormModel{
			Categories:   catalog.Categories(),
			DefaultTopic: leads.DefaultTopic,
			DefaultPrice: defaultLeadPrice,
		}, nil

	case route.ViewApply:
		return map[string]string{"message": "Expert applications open soon."}, nil

	case route.ViewExpertDashboard:
		return map[string]interface{}{"items": s.Metrics.ExpertStats()}, nil

	case route.ViewClientDashboard:
		guest := profile.GuestID(r)
		return map[string]interface{}{"clientId": guest, "items": s.Metrics.ClientBookings(guest)}, nil

	case route.ViewLogs:
		now := s.now()
		return LogsModel{
			Funnel:       s.Metrics.Funnel(),
			Events:       s.Tracker.List(),
			CSVFilename:  metrics.ExportFilename(now, "csv"),
			JSONFilename: metrics.ExportFilename(now, "json"),
		}, nil

	case route.ViewQA:
		return selftest.Run(s.now()), nil

	default:
		s.Tracker.Track(models.EventViewLanding, map[string]interface{}{})
		return LandingModel{
			Categories: catalog.Categories(),
			Experts:    s.Catalog.Featured(landingExperts),
		}, nil
	}
}

func (s *Server) bookingView(r *http.Request, rt route.Route) (booking.View, error) {
	view, err := s.Bookings.Get(r.Context(), rt.BookingID())
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return booking.View{}, errViewNotFound
		}
		return booking.View{}, err
	}
	return view, nil
}
