package store

import (
	"strings"

	"expertbook-backend/internal/models"
)

// Tx exposes unlocked access to the tables. It is only valid inside the
// callback passed to Store.Tx.
type Tx struct {
	s *Store
}

func (tx *Tx) Expert(id string) (models.Expert, bool) {
	return tx.s.experts.get(id)
}

func (tx *Tx) ExpertBySlug(slug string) (models.Expert, bool) {
	for _, e := range tx.s.experts.list(nil) {
		if e.Slug == slug {
			return e, true
		}
	}
	return models.Expert{}, false
}

func (tx *Tx) InsertExpert(e models.Expert) error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrMissingID
	}
	if tx.s.experts.has(e.ID) {
		return ErrDuplicateID
	}
	if _, taken := tx.ExpertBySlug(e.Slug); taken {
		return ErrDuplicateSlug
	}
	tx.s.experts.put(e.ID, e, tx.s.nextSeq())
	return nil
}

func (tx *Tx) Slot(id string) (models.Slot, bool) {
	return tx.s.slots.get(id)
}

func (tx *Tx) InsertSlot(slot models.Slot) error {
	if strings.TrimSpace(slot.ID) == "" {
		return ErrMissingID
	}
	if tx.s.slots.has(slot.ID) {
		return ErrDuplicateID
	}
	tx.s.slots.put(slot.ID, slot, tx.s.nextSeq())
	return nil
}

func (tx *Tx) UpdateSlot(slot models.Slot) error {
	if !tx.s.slots.has(slot.ID) {
		return ErrNotFound
	}
	tx.s.slots.put(slot.ID, slot, 0)
	return nil
}

func (tx *Tx) Booking(id string) (models.Booking, bool) {
	return tx.s.bookings.get(id)
}

func (tx *Tx) InsertBooking(b models.Booking) error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrMissingID
	}
	if tx.s.bookings.has(b.ID) {
		return ErrDuplicateID
	}
	tx.s.bookings.put(b.ID, b, tx.s.nextSeq())
	return nil
}

func (tx *Tx) UpdateBooking(b models.Booking) error {
	if !tx.s.bookings.has(b.ID) {
		return ErrNotFound
	}
	tx.s.bookings.put(b.ID, b, 0)
	return nil
}

func (tx *Tx) InsertReview(r models.Review) error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrMissingID
	}
	if tx.s.reviews.has(r.ID) {
		return ErrDuplicateID
	}
	tx.s.reviews.put(r.ID, r, tx.s.nextSeq())
	return nil
}
