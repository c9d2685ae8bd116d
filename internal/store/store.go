// Package store is the in-memory record store: one keyed table per entity
// kind plus the append-only event log. It has no foreign-key enforcement;
// callers validate references before mutating.
package store

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"expertbook-backend/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateID   = errors.New("id already exists")
	ErrDuplicateSlug = errors.New("slug already exists")
	ErrMissingID     = errors.New("missing id")
)

type Store struct {
	mu  sync.RWMutex
	seq uint64

	experts  *table[models.Expert]
	slots    *table[models.Slot]
	bookings *table[models.Booking]
	reviews  *table[models.Review]
	leads    *table[models.Lead]
	events   *table[models.Event]

	seeded bool
}

func New() *Store {
	return &Store{
		experts:  newTable[models.Expert](),
		slots:    newTable[models.Slot](),
		bookings: newTable[models.Booking](),
		reviews:  newTable[models.Review](),
		leads:    newTable[models.Lead](),
		events:   newTable[models.Event](),
	}
}

// Tx runs fn with exclusive access to the store. Reads and writes made
// through tx are atomic with respect to every other store call. There is no
// rollback: validate before the first write.
func (s *Store) Tx(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s})
}

func (s *Store) view(fn func(tx *Tx)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&Tx{s: s})
}

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// Clear drops every record. The seeded marker is kept, so a cleared store is
// not reseeded by EnsureSeeded.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.experts.clear()
	s.slots.clear()
	s.bookings.clear()
	s.reviews.clear()
	s.leads.clear()
	s.events.clear()
}

// Experts

func (s *Store) CreateExpert(e models.Expert) error {
	return s.Tx(func(tx *Tx) error { return tx.InsertExpert(e) })
}

func (s *Store) GetExpert(id string) (models.Expert, error) {
	var (
		e  models.Expert
		ok bool
	)
	s.view(func(tx *Tx) { e, ok = tx.Expert(id) })
	if !ok {
		return models.Expert{}, ErrNotFound
	}
	return cloneExpert(e), nil
}

func (s *Store) GetExpertBySlug(slug string) (models.Expert, error) {
	var (
		e  models.Expert
		ok bool
	)
	s.view(func(tx *Tx) { e, ok = tx.ExpertBySlug(slug) })
	if !ok {
		return models.Expert{}, ErrNotFound
	}
	return cloneExpert(e), nil
}

func (s *Store) ListExperts() []models.Expert {
	var out []models.Expert
	s.view(func(tx *Tx) { out = tx.s.experts.list(nil) })
	for i := range out {
		out[i] = cloneExpert(out[i])
	}
	return out
}

func (s *Store) UpdateExpert(e models.Expert) error {
	return s.Tx(func(tx *Tx) error {
		current, ok := tx.Expert(e.ID)
		if !ok {
			return ErrNotFound
		}
		if current.Slug != e.Slug {
			if other, taken := tx.ExpertBySlug(e.Slug); taken && other.ID != e.ID {
				return ErrDuplicateSlug
			}
		}
		tx.s.experts.put(e.ID, e, 0)
		return nil
	})
}

func (s *Store) DeleteExpert(id string) error {
	return s.Tx(func(tx *Tx) error {
		if !tx.s.experts.remove(id) {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) CountExperts() int {
	var n int
	s.view(func(tx *Tx) { n = tx.s.experts.len() })
	return n
}

// Slots

func (s *Store) CreateSlot(slot models.Slot) error {
	return s.Tx(func(tx *Tx) error { return tx.InsertSlot(slot) })
}

func (s *Store) GetSlot(id string) (models.Slot, error) {
	var (
		slot models.Slot
		ok   bool
	)
	s.view(func(tx *Tx) { slot, ok = tx.Slot(id) })
	if !ok {
		return models.Slot{}, ErrNotFound
	}
	return slot, nil
}

func (s *Store) ListSlots(keep func(models.Slot) bool) []models.Slot {
	var out []models.Slot
	s.view(func(tx *Tx) { out = tx.s.slots.list(keep) })
	return out
}

func (s *Store) UpdateSlot(slot models.Slot) error {
	return s.Tx(func(tx *Tx) error { return tx.UpdateSlot(slot) })
}

func (s *Store) DeleteSlot(id string) error {
	return s.Tx(func(tx *Tx) error {
		if !tx.s.slots.remove(id) {
			return ErrNotFound
		}
		return nil
	})
}

// Bookings

func (s *Store) CreateBooking(b models.Booking) error {
	return s.Tx(func(tx *Tx) error { return tx.InsertBooking(b) })
}

func (s *Store) GetBooking(id string) (models.Booking, error) {
	var (
		b  models.Booking
		ok bool
	)
	s.view(func(tx *Tx) { b, ok = tx.Booking(id) })
	if !ok {
		return models.Booking{}, ErrNotFound
	}
	return b, nil
}

func (s *Store) ListBookings(keep func(models.Booking) bool) []models.Booking {
	var out []models.Booking
	s.view(func(tx *Tx) { out = tx.s.bookings.list(keep) })
	return out
}

func (s *Store) UpdateBooking(b models.Booking) error {
	return s.Tx(func(tx *Tx) error { return tx.UpdateBooking(b) })
}

func (s *Store) DeleteBooking(id string) error {
	return s.Tx(func(tx *Tx) error {
		if !tx.s.bookings.remove(id) {
			return ErrNotFound
		}
		return nil
	})
}

// Reviews

func (s *Store) CreateReview(r models.Review) error {
	return s.Tx(func(tx *Tx) error { return tx.InsertReview(r) })
}

func (s *Store) GetReview(id string) (models.Review, error) {
	var (
		r  models.Review
		ok bool
	)
	s.view(func(tx *Tx) { r, ok = tx.s.reviews.get(id) })
	if !ok {
		return models.Review{}, ErrNotFound
	}
	return r, nil
}

func (s *Store) ListReviews(keep func(models.Review) bool) []models.Review {
	var out []models.Review
	s.view(func(tx *Tx) { out = tx.s.reviews.list(keep) })
	return out
}

func (s *Store) DeleteReview(id string) error {
	return s.Tx(func(tx *Tx) error {
		if !tx.s.reviews.remove(id) {
			return ErrNotFound
		}
		return nil
	})
}

// Leads

func (s *Store) CreateLead(l models.Lead) error {
	return s.Tx(func(tx *Tx) error {
		if strings.TrimSpace(l.ID) == "" {
			return ErrMissingID
		}
		if tx.s.leads.has(l.ID) {
			return ErrDuplicateID
		}
		tx.s.leads.put(l.ID, l, tx.s.nextSeq())
		return nil
	})
}

func (s *Store) GetLead(id string) (models.Lead, error) {
	var (
		l  models.Lead
		ok bool
	)
	s.view(func(tx *Tx) { l, ok = tx.s.leads.get(id) })
	if !ok {
		return models.Lead{}, ErrNotFound
	}
	return l, nil
}

func (s *Store) ListLeads() []models.Lead {
	var out []models.Lead
	s.view(func(tx *Tx) { out = tx.s.leads.list(nil) })
	return out
}

func (s *Store) DeleteLead(id string) error {
	return s.Tx(func(tx *Tx) error {
		if !tx.s.leads.remove(id) {
			return ErrNotFound
		}
		return nil
	})
}

// Events

func (s *Store) AppendEvent(e models.Event) error {
	return s.Tx(func(tx *Tx) error {
		if strings.TrimSpace(e.ID) == "" {
			return ErrMissingID
		}
		if tx.s.events.has(e.ID) {
			return ErrDuplicateID
		}
		tx.s.events.put(e.ID, e, tx.s.nextSeq())
		return nil
	})
}

// ListEvents returns the log newest first. Events sharing a timestamp keep
// reverse insertion order.
func (s *Store) ListEvents() []models.Event {
	var out []models.Event
	s.view(func(tx *Tx) { out = tx.s.events.list(nil) })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
