// Package metrics derives funnel figures, dashboards and log exports from the
// event log and the booking table.
package metrics

import (
	"math"
	"strings"

	"expertbook-backend/internal/models"
)

type Funnel struct {
	ViewsLanding         int     `json:"viewsLanding"`
	ViewsCatalog         int     `json:"viewsCatalog"`
	ViewsExpert          int     `json:"viewsExpert"`
	Selects              int     `json:"selects"`
	Checkouts            int     `json:"checkouts"`
	Pays                 int     `json:"pays"`
	Revenue              int     `json:"revenue"`
	UniqueBuyers         int     `json:"uniqueBuyers"`
	RepeatBuyers         int     `json:"repeatBuyers"`
	RateViewToSelect     float64 `json:"rate_view_to_select"`
	RateSelectToCheckout float64 `json:"rate_select_to_checkout"`
	RateCheckoutToPay    float64 `json:"rate_checkout_to_pay"`
	RateViewToPay        float64 `json:"rate_view_to_pay"`
	ARPU                 int     `json:"arpu"`
}

// ComputeFunnel counts funnel events and sums paid bookings. The view stage
// is whichever of catalog and expert views is larger.
func ComputeFunnel(events []models.Event, bookings []models.Booking) Funnel {
	var f Funnel
	for _, e := range events {
		switch e.Event {
		case models.EventViewLanding:
			f.ViewsLanding++
		case models.EventViewCatalog:
			f.ViewsCatalog++
		case models.EventViewExpert:
			f.ViewsExpert++
		case models.EventSelectSlot:
			f.Selects++
		case models.EventStartCheckout:
			f.Checkouts++
		case models.EventPaySuccess:
			f.Pays++
		}
	}

	paidByEmail := map[string]int{}
	for _, b := range bookings {
		if !b.IsPaid() {
			continue
		}
		f.Revenue += b.PriceKZT
		if email := strings.ToLower(strings.TrimSpace(b.ClientEmail)); email != "" {
			paidByEmail[email]++
		}
	}
	f.UniqueBuyers = len(paidByEmail)
	for _, n := range paidByEmail {
		if n >= 2 {
			f.RepeatBuyers++
		}
	}

	views := max(f.ViewsExpert, f.ViewsCatalog)
	f.RateViewToSelect = Percent(f.Selects, views)
	f.RateSelectToCheckout = Percent(f.Checkouts, f.Selects)
	f.RateCheckoutToPay = Percent(f.Pays, f.Checkouts)
	f.RateViewToPay = Percent(f.Pays, views)
	if f.UniqueBuyers > 0 {
		f.ARPU = int(math.Round(float64(f.Revenue) / float64(f.UniqueBuyers)))
	}
	return f
}

// Percent is part/whole as a percentage with one decimal, 0 for an empty
// whole.
func Percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
