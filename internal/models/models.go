package models

import "time"

const (
	BookingStatusPending = "pending"
	BookingStatusPaid    = "paid"

	DefaultClientID = "guest_demo"
	Currency        = "KZT"
)

// Funnel event names recorded by the tracker.
const (
	EventViewLanding   = "view_landing"
	EventViewCatalog   = "view_catalog"
	EventViewExpert    = "view_expert"
	EventSelectSlot    = "select_slot"
	EventStartCheckout = "start_checkout"
	EventPaySuccess    = "pay_success"
	EventLeadSubmit    = "lead_submit"
	EventReviewSubmit  = "review_submit"
)

type PriceOption struct {
	Minutes int `json:"minutes"`
	Amount  int `json:"amount"`
}

type Expert struct {
	ID              string        `json:"id"`
	Slug            string        `json:"slug"`
	Name            string        `json:"name"`
	Bio             string        `json:"bio"`
	City            string        `json:"city"`
	Langs           []string      `json:"langs"`
	Topics          []string      `json:"topics"`
	Prices          []PriceOption `json:"price"`
	Rating          float64       `json:"rating"`
	DonationPercent *int          `json:"donationPercent,omitempty"`
	CharityFund     string        `json:"charityFund,omitempty"`
}

// FirstPrice is the amount of the first price entry, 0 when the expert has none.
func (e Expert) FirstPrice() int {
	if len(e.Prices) == 0 {
		return 0
	}
	return e.Prices[0].Amount
}

type Slot struct {
	ID       string    `json:"id"`
	ExpertID string    `json:"expertId"`
	StartsAt time.Time `json:"startsAt"`
	Minutes  int       `json:"minutes"`
	IsBooked bool      `json:"isBooked"`
}

type Booking struct {
	ID          string     `json:"id"`
	SlotID      string     `json:"slotId"`
	ExpertID    string     `json:"expertId"`
	ClientID    string     `json:"clientId"`
	ClientName  string     `json:"clientName"`
	ClientEmail string     `json:"clientEmail"`
	PriceKZT    int        `json:"priceKZT"`
	Status      string     `json:"status"`
	MeetURL     string     `json:"meetUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
}

func (b Booking) IsPaid() bool {
	return b.Status == BookingStatusPaid
}

type Review struct {
	ID        string    `json:"id"`
	BookingID string    `json:"bookingId"`
	ExpertID  string    `json:"expertId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Topic     string    `json:"topic"`
	PriceKZT  int       `json:"priceKZT"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Event struct {
	ID        string                 `json:"id" bson:"_id"`
	Event     string                 `json:"event" bson:"event"`
	Detail    map[string]interface{} `json:"detail" bson:"detail"`
	CreatedAt time.Time              `json:"createdAt" bson:"createdAt"`
}

type GuestProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Category struct {
	Key    string   `json:"key"`
	Name   string   `json:"name"`
	Topics []string `json:"topics"`
}

// Categories is the fixed catalog taxonomy; order is the display order.
var Categories = []Category{
	{Key: "startups", Name: "Startups", Topics: []string{"Startups", "Fundraising", "GTM"}},
	{Key: "career", Name: "Career", Topics: []string{"Career", "HR", "Interviews"}},
	{Key: "religion", Name: "Religion", Topics: []string{"Religion", "Personal"}},
	{Key: "beauty", Name: "Beauty", Topics: []string{"Beauty", "Wellness"}},
	{Key: "business", Name: "Business/Marketing", Topics: []string{"Business", "Marketing", "Sales"}},
}

func CategoryByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
