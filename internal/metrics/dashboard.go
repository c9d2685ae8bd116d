package metrics

import (
	"time"

	"expertbook-backend/internal/models"
	"expertbook-backend/internal/store"
)

const unknownExpertName = "Expert"

type ExpertStats struct {
	ExpertID     string `json:"expertId"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	PaidCount    int    `json:"paidCount"`
	Revenue      int    `json:"revenue"`
	PendingCount int    `json:"pendingCount"`
}

type ClientBooking struct {
	ID         string     `json:"id"`
	ExpertID   string     `json:"expertId"`
	ExpertName string     `json:"expertName"`
	ExpertSlug string     `json:"expertSlug,omitempty"`
	StartsAt   *time.Time `json:"startsAt,omitempty"`
	Status     string     `json:"status"`
	PriceKZT   int        `json:"priceKZT"`
	MeetURL    string     `json:"meetUrl,omitempty"`
}

type Service struct {
	store *store.Store
	now   func() time.Time
}

func NewService(st *store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

func (s *Service) Funnel() Funnel {
	return ComputeFunnel(s.store.ListEvents(), s.store.ListBookings(nil))
}

func (s *Service) ExportCSV() (Export, error) {
	return ExportCSV(s.store.ListEvents(), s.now())
}

func (s *Service) ExportJSON() (Export, error) {
	return ExportJSON(s.store.ListEvents(), s.now())
}

// ExpertStats lists every expert with paid meetings and revenue, in catalog
// order.
func (s *Service) ExpertStats() []ExpertStats {
	experts := s.store.ListExperts()
	byExpert := make(map[string]*ExpertStats, len(experts))
	out := make([]ExpertStats, len(experts))
	for i, e := range experts {
		out[i] = ExpertStats{ExpertID: e.ID, Name: e.Name, Slug: e.Slug}
		byExpert[e.ID] = &out[i]
	}
	for _, b := range s.store.ListBookings(nil) {
		st, ok := byExpert[b.ExpertID]
		if !ok {
			continue
		}
		if b.IsPaid() {
			st.PaidCount++
			st.Revenue += b.PriceKZT
		} else {
			st.PendingCount++
		}
	}
	return out
}

// ClientBookings lists the client's bookings. Meeting links are only shown
// once paid.
func (s *Service) ClientBookings(clientID string) []ClientBooking {
	bookings := s.store.ListBookings(func(b models.Booking) bool { return b.ClientID == clientID })
	out := make([]ClientBooking, 0, len(bookings))
	for _, b := range bookings {
		item := ClientBooking{
			ID:         b.ID,
			ExpertID:   b.ExpertID,
			ExpertName: unknownExpertName,
			Status:     b.Status,
			PriceKZT:   b.PriceKZT,
		}
		if e, err := s.store.GetExpert(b.ExpertID); err == nil {
			item.ExpertName = e.Name
			item.ExpertSlug = e.Slug
		}
		if slot, err := s.store.GetSlot(b.SlotID); err == nil {
			start := slot.StartsAt
			item.StartsAt = &start
		}
		if b.IsPaid() {
			item.MeetURL = b.MeetURL
		}
		out = append(out, item)
	}
	return out
}
