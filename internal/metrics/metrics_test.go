package metrics

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"expertbook-backend/internal/models"
	"expertbook-backend/internal/store"
)

func events(names ...string) []models.Event {
	out := make([]models.Event, 0, len(names))
	for i, n := range names {
		out = append(out, models.Event{ID: "log_" + string(rune('a'+i)), Event: n})
	}
	return out
}

func repeat(name string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name
	}
	return out
}

func TestPercent(t *testing.T) {
	cases := []struct {
		part, whole int
		want        float64
	}{
		{2, 10, 20},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{5, 0, 0},
		{0, 0, 0},
		{3, 3, 100},
	}
	for _, tc := range cases {
		if got := Percent(tc.part, tc.whole); got != tc.want {
			t.Fatalf("Percent(%d,%d): expected %v, got %v", tc.part, tc.whole, tc.want, got)
		}
	}
}

func TestComputeFunnel(t *testing.T) {
	names := repeat(models.EventViewExpert, 10)
	names = append(names, repeat(models.EventViewCatalog, 4)...)
	names = append(names, repeat(models.EventSelectSlot, 5)...)
	names = append(names, repeat(models.EventStartCheckout, 4)...)
	names = append(names, repeat(models.EventPaySuccess, 2)...)
	names = append(names, models.EventViewLanding, models.EventLeadSubmit)

	bookings := []models.Booking{
		{ID: "bk_1", ClientEmail: "A@x.io", PriceKZT: 25000, Status: models.BookingStatusPaid},
		{ID: "bk_2", ClientEmail: "a@x.io ", PriceKZT: 40000, Status: models.BookingStatusPaid},
		{ID: "bk_3", ClientEmail: "b@x.io", PriceKZT: 30000, Status: models.BookingStatusPaid},
		{ID: "bk_4", ClientEmail: "c@x.io", PriceKZT: 99999, Status: models.BookingStatusPending},
	}

	f := ComputeFunnel(events(names...), bookings)

	if f.ViewsExpert != 10 || f.ViewsCatalog != 4 || f.ViewsLanding != 1 {
		t.Fatalf("unexpected view counts: %+v", f)
	}
	if f.Selects != 5 || f.Checkouts != 4 || f.Pays != 2 {
		t.Fatalf("unexpected stage counts: %+v", f)
	}
	if f.RateViewToPay != 20 {
		t.Fatalf("expected view to pay 20.0, got %v", f.RateViewToPay)
	}
	if f.RateViewToSelect != 50 || f.RateSelectToCheckout != 80 || f.RateCheckoutToPay != 50 {
		t.Fatalf("unexpected rates: %+v", f)
	}
	if f.Revenue != 95000 || f.UniqueBuyers != 2 || f.RepeatBuyers != 1 {
		t.Fatalf("unexpected buyers: %+v", f)
	}
	if f.ARPU != 47500 {
		t.Fatalf("expected arpu 47500, got %d", f.ARPU)
	}
}

func TestComputeFunnelEmpty(t *testing.T) {
	f := ComputeFunnel(nil, nil)
	if f != (Funnel{}) {
		t.Fatalf("expected zero funnel, got %+v", f)
	}
}

func TestFunnelJSONNames(t *testing.T) {
	raw, err := json.Marshal(Funnel{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{"viewsLanding", "uniqueBuyers", "rate_view_to_select", "rate_view_to_pay", "arpu"} {
		if !strings.Contains(string(raw), `"`+key+`"`) {
			t.Fatalf("expected key %s in %s", key, raw)
		}
	}
}

func TestExportCSV(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	evs := []models.Event{
		{ID: "log_1", Event: "view_catalog", Detail: map[string]interface{}{"topicKey": "all", "count": 24}, CreatedAt: created},
		{ID: "log_2", Event: "view_landing", CreatedAt: created},
	}
	now := time.Date(2025, 3, 1, 12, 5, 9, 0, time.UTC)

	exp, err := ExportCSV(evs, now)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exp.Filename != "logs_2025-03-01-12-05-09.csv" {
		t.Fatalf("unexpected filename: %s", exp.Filename)
	}
	want := "id,createdAt,event,detail\n" +
		`log_1,2025-03-01T10:30:00.000Z,view_catalog,"{""count"":24,""topicKey"":""all""}"` + "\n" +
		`log_2,2025-03-01T10:30:00.000Z,view_landing,"{}"`
	if string(exp.Body) != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", exp.Body, want)
	}
}

func TestExportJSON(t *testing.T) {
	evs := []models.Event{{ID: "log_1", Event: "pay_success", Detail: map[string]interface{}{"bookingId": "bk_1"}}}
	exp, err := ExportJSON(evs, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasSuffix(exp.Filename, ".json") {
		t.Fatalf("unexpected filename: %s", exp.Filename)
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(exp.Body, &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0]["event"] != "pay_success" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if !strings.Contains(string(exp.Body), "\n  {") {
		t.Fatalf("expected indented output:\n%s", exp.Body)
	}
}

func TestDashboards(t *testing.T) {
	st := store.New()
	st.EnsureSeeded(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	slots := st.ListSlots(func(s models.Slot) bool { return s.ExpertID == "exp_demo" })
	paidAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	seed := []models.Booking{
		{ID: "bk_1", SlotID: slots[0].ID, ExpertID: "exp_demo", ClientID: models.DefaultClientID, PriceKZT: 25000, Status: models.BookingStatusPaid, MeetURL: "https://meet.google.com/bk1-xxx-xxx", PaidAt: &paidAt},
		{ID: "bk_2", SlotID: slots[1].ID, ExpertID: "exp_demo", ClientID: models.DefaultClientID, PriceKZT: 25000, Status: models.BookingStatusPending, MeetURL: "https://meet.google.com/leak"},
		{ID: "bk_3", SlotID: slots[2].ID, ExpertID: "exp_demo", ClientID: "guest_other", PriceKZT: 25000, Status: models.BookingStatusPaid},
	}
	for _, b := range seed {
		if err := st.CreateBooking(b); err != nil {
			t.Fatalf("create booking: %v", err)
		}
	}

	svc := NewService(st)
	stats := svc.ExpertStats()
	if len(stats) != st.CountExperts() {
		t.Fatalf("expected a row per expert")
	}
	var demo ExpertStats
	for _, s := range stats {
		if s.ExpertID == "exp_demo" {
			demo = s
		}
	}
	if demo.PaidCount != 2 || demo.Revenue != 50000 || demo.PendingCount != 1 {
		t.Fatalf("unexpected demo stats: %+v", demo)
	}

	mine := svc.ClientBookings(models.DefaultClientID)
	if len(mine) != 2 {
		t.Fatalf("expected 2 client bookings, got %d", len(mine))
	}
	if mine[0].MeetURL == "" || mine[1].MeetURL != "" {
		t.Fatalf("expected meet link only on paid booking: %+v", mine)
	}
	if mine[0].ExpertName != "Demo Expert" || mine[0].StartsAt == nil {
		t.Fatalf("unexpected client booking: %+v", mine[0])
	}
}
