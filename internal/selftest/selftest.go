// Package selftest runs the runtime smoke checks shown on the QA page. Each
// run seeds its own store, so it never touches live data.
package selftest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"

	"expertbook-backend/internal/booking"
	"expertbook-backend/internal/catalog"
	"expertbook-backend/internal/metrics"
	"expertbook-backend/internal/models"
	"expertbook-backend/internal/route"
	"expertbook-backend/internal/store"
	"expertbook-backend/internal/tracker"
	"expertbook-backend/internal/validation"
)

const minSeededExperts = 20

var meetLinkPattern = regexp.MustCompile(`^https://meet\.google\.com/[a-z0-9]{3}-[a-z0-9]{3}-[a-z0-9]{3}$`)

type Result struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

type Report struct {
	Passed  int      `json:"passed"`
	Total   int      `json:"total"`
	Results []Result `json:"results"`
}

func (r Report) OK() bool {
	return r.Passed == r.Total
}

type runner struct {
	results []Result
}

func (r *runner) check(name string, ok bool, detail string) {
	r.results = append(r.results, Result{Name: name, OK: ok, Detail: detail})
}

// Run executes every check. A panic inside a check is reported as a failed
// "unexpected error" result.
func Run(now time.Time) (report Report) {
	r := &runner{}
	defer func() {
		if p := recover(); p != nil {
			r.check("unexpected error", false, fmt.Sprint(p))
		}
		report = summarize(r.results)
	}()

	st := store.New()
	st.EnsureSeeded(now)
	experts := st.ListExperts()

	r.check("seed executed", st.Seeded() && len(experts) >= minSeededExperts, fmt.Sprintf("experts=%d", len(experts)))

	for _, id := range []string{"bk__", ""} {
		link := booking.MeetingLink(id, "")
		name := "meeting link"
		if id == "" {
			name = "meeting link (empty id)"
		}
		r.check(name, meetLinkPattern.MatchString(link), link)
	}

	for _, cat := range models.Categories {
		found := 0
		for _, e := range experts {
			if catalog.MatchesCategory(e, cat.Key) {
				found++
			}
		}
		r.check("category has experts: "+cat.Key, found > 0, fmt.Sprintf("count=%d", found))
	}

	r.check("email rule", validation.IsEmail("qa@example.com") && !validation.IsEmail("qa@example") && !validation.IsEmail("qa.example.com"), "")

	slug := experts[0].Slug
	resolved := route.Resolve(route.ExpertHref(slug))
	r.check("router resolves expert page", resolved.View == route.ViewExpert && resolved.Slug == slug, string(resolved.View))
	listing := route.Resolve(route.ExpertsHref(models.Categories[0].Key))
	r.check("router resolves catalog topic", listing.View == route.ViewExperts && listing.Topic() == models.Categories[0].Key, string(listing.View))

	r.checkFlow(st, experts[0], now)

	return report
}

// checkFlow books, pays and exports a calendar entry for one seeded slot.
func (r *runner) checkFlow(st *store.Store, expert models.Expert, now time.Time) {
	ctx := context.Background()
	tr := tracker.New(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := booking.NewService(st, tr, nil, "")

	slots := catalog.NewService(st).SlotsForExpert(expert.ID)
	if len(slots) == 0 {
		r.check("booking flow", false, "no open slots")
		return
	}

	res, err := svc.StartCheckout(ctx, booking.CheckoutRequest{
		ExpertID: expert.ID,
		SlotID:   slots[0].ID,
		Name:     "QA",
		Email:    "qa@example.com",
		ClientID: "qa",
	})
	if err != nil {
		r.check("booking flow", false, err.Error())
		return
	}
	paid, err := svc.Pay(ctx, res.Booking.ID)
	if err != nil {
		r.check("booking flow", false, err.Error())
		return
	}
	r.check("booking flow", paid.Booking.IsPaid() && meetLinkPattern.MatchString(paid.Booking.MeetURL), paid.Booking.ID)

	export, err := svc.Calendar(ctx, paid.Booking.ID)
	if err != nil {
		r.check(".ics generated", false, err.Error())
	} else {
		r.check(".ics generated", export.Content != "" && export.DataURL() != "", export.Filename)
	}

	funnel := metrics.ComputeFunnel(st.ListEvents(), st.ListBookings(nil))
	r.check("funnel counts payment", funnel.Pays == 1 && funnel.Revenue == paid.Booking.PriceKZT, fmt.Sprintf("pays=%d revenue=%d", funnel.Pays, funnel.Revenue))
}

func summarize(results []Result) Report {
	passed := 0
	for _, res := range results {
		if res.OK {
			passed++
		}
	}
	return Report{Passed: passed, Total: len(results), Results: results}
}
