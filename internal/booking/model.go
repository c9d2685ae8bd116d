package booking

import (
	"time"

	"expertbook-backend/internal/models"
)

// State is a stage of the booking lifecycle.
type State string

const (
	StateBrowsing        State = "browsing"
	StateSlotSelected    State = "slot_selected"
	StateCheckoutPending State = "checkout_pending"
	StatePaid            State = "paid"
	StateReviewed        State = "reviewed"
)

type SelectRequest struct {
	ExpertID string `json:"expertId" validate:"required,max=64"`
	SlotID   string `json:"slotId" validate:"required,max=64"`
}

type CheckoutRequest struct {
	ExpertID string `json:"expertId" validate:"required,max=64"`
	SlotID   string `json:"slotId" validate:"required,max=64"`
	Name     string `json:"name" validate:"trimmin=2,max=120"`
	Email    string `json:"email" validate:"emaillite,max=200"`
	ClientID string `json:"-"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Selection is the result of picking a slot. Nothing is stored yet.
type Selection struct {
	State    State     `json:"state"`
	ExpertID string    `json:"expertId"`
	SlotID   string    `json:"slotId"`
	StartsAt time.Time `json:"startsAt"`
	Minutes  int       `json:"minutes"`
	PriceKZT int       `json:"priceKZT"`
}

// Result carries the booking after a transition and the fragment the client
// should navigate to next.
type Result struct {
	Booking     models.Booking `json:"booking"`
	State       State          `json:"state"`
	Next        string         `json:"next"`
	AlreadyPaid bool           `json:"alreadyPaid,omitempty"`
}

type ReviewResult struct {
	Review models.Review `json:"review"`
	State  State         `json:"state"`
}

// View is a booking with the context the checkout and success pages show.
type View struct {
	models.Booking
	State        State        `json:"state"`
	Slot         *models.Slot `json:"slot,omitempty"`
	ExpertName   string       `json:"expertName"`
	ExpertSlug   string       `json:"expertSlug"`
	PriceDisplay string       `json:"priceDisplay"`
	CalendarURL  string       `json:"calendarUrl,omitempty"`
}
