package store

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"expertbook-backend/internal/models"
)

var idPattern = regexp.MustCompile(`^slot_[a-z0-9]{1,7}$`)

func TestNewIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := NewID("slot")
		if !idPattern.MatchString(id) {
			t.Fatalf("unexpected id format: %s", id)
		}
		seen[id] = true
	}
	if len(seen) < 190 {
		t.Fatalf("expected mostly unique ids, got %d distinct", len(seen))
	}
}

func TestEnsureSeededIsIdempotent(t *testing.T) {
	s := New()
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)

	if !s.EnsureSeeded(now) {
		t.Fatalf("expected first call to seed")
	}
	experts := s.CountExperts()
	slots := len(s.ListSlots(nil))
	if experts < 20 {
		t.Fatalf("expected at least 20 experts, got %d", experts)
	}
	if slots != experts*3 {
		t.Fatalf("expected 3 slots per expert, got %d slots for %d experts", slots, experts)
	}

	if s.EnsureSeeded(now.Add(time.Hour)) {
		t.Fatalf("expected second call to be a no-op")
	}
	if got := len(s.ListSlots(nil)); got != slots {
		t.Fatalf("expected %d slots after second call, got %d", slots, got)
	}

	s.Clear()
	if s.EnsureSeeded(now) {
		t.Fatalf("expected cleared store to stay empty")
	}
	if s.CountExperts() != 0 {
		t.Fatalf("expected no experts after clear")
	}
}

func TestSeedSlotOffsets(t *testing.T) {
	s := New()
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)
	s.EnsureSeeded(now)

	slots := s.ListSlots(func(sl models.Slot) bool { return sl.ExpertID == "exp_demo" })
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	want := map[time.Duration]bool{6 * time.Hour: true, 12 * time.Hour: true, 24 * time.Hour: true}
	for _, sl := range slots {
		if !want[sl.StartsAt.Sub(now)] {
			t.Fatalf("unexpected slot offset: %s", sl.StartsAt.Sub(now))
		}
		if sl.IsBooked {
			t.Fatalf("seeded slot must be free")
		}
		if sl.Minutes != 30 {
			t.Fatalf("expected 30 minute slots, got %d", sl.Minutes)
		}
	}
}

func TestSeedSlugsAreUnique(t *testing.T) {
	s := New()
	s.EnsureSeeded(time.Now())
	seen := make(map[string]bool)
	for _, e := range s.ListExperts() {
		if seen[e.Slug] {
			t.Fatalf("duplicate slug %s", e.Slug)
		}
		seen[e.Slug] = true
	}
	if _, err := s.GetExpertBySlug("career-2"); err != nil {
		t.Fatalf("expected generated slug career-2: %v", err)
	}
}

func TestCreateExpertRejectsDuplicateSlug(t *testing.T) {
	s := New()
	if err := s.CreateExpert(models.Expert{ID: "exp_a", Slug: "same"}); err != nil {
		t.Fatalf("CreateExpert error: %v", err)
	}
	err := s.CreateExpert(models.Expert{ID: "exp_b", Slug: "same"})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
	err = s.CreateExpert(models.Expert{ID: "exp_a", Slug: "other"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if err := s.UpdateExpert(models.Expert{ID: "exp_missing", Slug: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReturnedExpertsDoNotAliasStore(t *testing.T) {
	s := New()
	_ = s.CreateExpert(models.Expert{ID: "exp_a", Slug: "a", Topics: []string{"Career"}})

	list := s.ListExperts()
	list[0].Topics[0] = "mutated"
	list[0].Name = "mutated"

	e, err := s.GetExpert("exp_a")
	if err != nil {
		t.Fatalf("GetExpert error: %v", err)
	}
	if e.Topics[0] != "Career" || e.Name != "" {
		t.Fatalf("store state changed through returned value: %+v", e)
	}
}

func TestBookingCRUD(t *testing.T) {
	s := New()
	b := models.Booking{ID: "bk_1", SlotID: "slot_1", Status: models.BookingStatusPending}
	if err := s.CreateBooking(b); err != nil {
		t.Fatalf("CreateBooking error: %v", err)
	}
	if err := s.CreateBooking(models.Booking{}); !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}

	b.Status = models.BookingStatusPaid
	if err := s.UpdateBooking(b); err != nil {
		t.Fatalf("UpdateBooking error: %v", err)
	}
	got, err := s.GetBooking("bk_1")
	if err != nil {
		t.Fatalf("GetBooking error: %v", err)
	}
	if got.Status != models.BookingStatusPaid {
		t.Fatalf("expected paid, got %s", got.Status)
	}

	if err := s.DeleteBooking("bk_1"); err != nil {
		t.Fatalf("DeleteBooking error: %v", err)
	}
	if _, err := s.GetBooking("bk_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListKeepsInsertionOrder(t *testing.T) {
	s := New()
	for _, id := range []string{"lead_c", "lead_a", "lead_b"} {
		if err := s.CreateLead(models.Lead{ID: id}); err != nil {
			t.Fatalf("CreateLead error: %v", err)
		}
	}
	leads := s.ListLeads()
	if leads[0].ID != "lead_c" || leads[1].ID != "lead_a" || leads[2].ID != "lead_b" {
		t.Fatalf("unexpected order: %+v", leads)
	}
}

func TestListEventsNewestFirst(t *testing.T) {
	s := New()
	base := time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ID: "log_1", Event: "a", CreatedAt: base},
		{ID: "log_2", Event: "b", CreatedAt: base.Add(2 * time.Second)},
		{ID: "log_3", Event: "c", CreatedAt: base.Add(time.Second)},
		{ID: "log_4", Event: "d", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range events {
		if err := s.AppendEvent(e); err != nil {
			t.Fatalf("AppendEvent error: %v", err)
		}
	}

	got := s.ListEvents()
	order := []string{"log_4", "log_2", "log_3", "log_1"}
	for i, id := range order {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestTxReturnsCallbackError(t *testing.T) {
	s := New()
	_ = s.CreateSlot(models.Slot{ID: "slot_1"})

	errBoom := errors.New("boom")
	err := s.Tx(func(tx *Tx) error {
		slot, ok := tx.Slot("slot_1")
		if !ok {
			t.Fatalf("slot missing inside tx")
		}
		slot.IsBooked = true
		if err := tx.UpdateSlot(slot); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected tx error to propagate, got %v", err)
	}
	slot, _ := s.GetSlot("slot_1")
	if !slot.IsBooked {
		t.Fatalf("expected write made before the error to be visible")
	}
}
