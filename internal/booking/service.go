package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"expertbook-backend/internal/models"
	"expertbook-backend/internal/route"
	"expertbook-backend/internal/schedule"
	"expertbook-backend/internal/store"
	"expertbook-backend/internal/utils"
	"expertbook-backend/internal/validation"
)

var (
	ErrNotFound        = errors.New("booking not found")
	ErrExpertNotFound  = errors.New("expert not found")
	ErrSlotNotFound    = errors.New("slot not found")
	ErrNoSlot          = errors.New("no slot selected")
	ErrSlotUnavailable = errors.New("slot already booked")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrNotPaid         = errors.New("booking is not paid")
)

const (
	minNameLength = 2
	minRating     = 1
	maxRating     = 5
)

// Tracker records funnel events; it must not fail the caller.
type Tracker interface {
	Track(name string, detail map[string]interface{}) models.Event
}

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, b models.Booking, expert models.Expert, slot models.Slot) (string, error)
}

type Service struct {
	store       *store.Store
	tracker     Tracker
	notifier    Notifier
	meetBaseURL string
	now         func() time.Time
}

func NewService(st *store.Store, tracker Tracker, notifier Notifier, meetBaseURL string) *Service {
	return &Service{
		store:       st,
		tracker:     tracker,
		notifier:    notifier,
		meetBaseURL: meetBaseURL,
		now:         time.Now,
	}
}

// SelectSlot moves Browsing to SlotSelected. It only checks the slot is open
// and records the choice.
func (s *Service) SelectSlot(ctx context.Context, expertID, slotID string) (Selection, error) {
	expert, slot, err := s.openSlot(strings.TrimSpace(expertID), strings.TrimSpace(slotID))
	if err != nil {
		return Selection{}, err
	}

	s.tracker.Track(models.EventSelectSlot, map[string]interface{}{
		"expertId": expert.ID,
		"slotId":   slot.ID,
		"startsAt": schedule.ISOTimestamp(slot.StartsAt),
	})

	return Selection{
		State:    StateSlotSelected,
		ExpertID: expert.ID,
		SlotID:   slot.ID,
		StartsAt: slot.StartsAt,
		Minutes:  slot.Minutes,
		PriceKZT: expert.FirstPrice(),
	}, nil
}

// StartCheckout moves SlotSelected to CheckoutPending by creating a pending
// booking at the expert's first listed price.
func (s *Service) StartCheckout(ctx context.Context, req CheckoutRequest) (Result, error) {
	slotID := strings.TrimSpace(req.SlotID)
	if slotID == "" {
		return Result{}, ErrNoSlot
	}
	if !validation.IsEmail(req.Email) {
		return Result{}, ErrInvalidEmail
	}
	if !validation.HasMinTrimmed(req.Name, minNameLength) {
		return Result{}, ErrInvalidName
	}
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		clientID = models.DefaultClientID
	}

	var created models.Booking
	err := s.store.Tx(func(tx *store.Tx) error {
		expert, ok := tx.Expert(strings.TrimSpace(req.ExpertID))
		if !ok {
			return ErrExpertNotFound
		}
		slot, ok := tx.Slot(slotID)
		if !ok || slot.ExpertID != expert.ID {
			return ErrSlotNotFound
		}
		if slot.IsBooked {
			return ErrSlotUnavailable
		}

		created = models.Booking{
			ID:          store.NewID("bk"),
			SlotID:      slot.ID,
			ExpertID:    expert.ID,
			ClientID:    clientID,
			ClientName:  strings.TrimSpace(req.Name),
			ClientEmail: strings.TrimSpace(req.Email),
			PriceKZT:    expert.FirstPrice(),
			Status:      models.BookingStatusPending,
			CreatedAt:   s.now().UTC(),
		}
		return tx.InsertBooking(created)
	})
	if err != nil {
		return Result{}, err
	}

	s.tracker.Track(models.EventStartCheckout, map[string]interface{}{
		"bookingId": created.ID,
		"expertId":  created.ExpertID,
		"slotId":    created.SlotID,
		"priceKZT":  created.PriceKZT,
	})

	return Result{
		Booking: created,
		State:   StateCheckoutPending,
		Next:    route.CheckoutHref(created.ID),
	}, nil
}

// Pay moves CheckoutPending to Paid. The slot flag is checked and set in the
// same transaction as the booking status. Paying a paid booking changes
// nothing and reports AlreadyPaid.
func (s *Service) Pay(ctx context.Context, bookingID string) (Result, error) {
	bookingID = strings.TrimSpace(bookingID)
	var (
		paid        models.Booking
		alreadyPaid bool
	)
	err := s.store.Tx(func(tx *store.Tx) error {
		b, ok := tx.Booking(bookingID)
		if !ok {
			return ErrNotFound
		}
		if b.IsPaid() {
			paid, alreadyPaid = b, true
			return nil
		}

		slot, ok := tx.Slot(b.SlotID)
		if ok {
			if slot.IsBooked {
				return ErrSlotUnavailable
			}
			slot.IsBooked = true
			if err := tx.UpdateSlot(slot); err != nil {
				return err
			}
		}

		now := s.now().UTC()
		b.Status = models.BookingStatusPaid
		b.PaidAt = &now
		if b.MeetURL == "" {
			b.MeetURL = MeetingLink(b.ID, s.meetBaseURL)
		}
		if err := tx.UpdateBooking(b); err != nil {
			return err
		}
		paid = b
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if !alreadyPaid {
		s.tracker.Track(models.EventPaySuccess, map[string]interface{}{
			"bookingId": paid.ID,
			"expertId":  paid.ExpertID,
			"priceKZT":  paid.PriceKZT,
		})
	}

	return Result{
		Booking:     paid,
		State:       s.stateOf(paid),
		Next:        route.SuccessHref(paid.ID),
		AlreadyPaid: alreadyPaid,
	}, nil
}

// Review moves Paid to Reviewed. More than one review per booking is allowed.
func (s *Service) Review(ctx context.Context, bookingID string, req ReviewRequest) (ReviewResult, error) {
	if req.Rating < minRating || req.Rating > maxRating {
		return ReviewResult{}, ErrInvalidRating
	}

	var created models.Review
	err := s.store.Tx(func(tx *store.Tx) error {
		b, ok := tx.Booking(strings.TrimSpace(bookingID))
		if !ok {
			return ErrNotFound
		}
		if !b.IsPaid() {
			return ErrNotPaid
		}
		created = models.Review{
			ID:        store.NewID("rev"),
			BookingID: b.ID,
			ExpertID:  b.ExpertID,
			Rating:    req.Rating,
			Comment:   strings.TrimSpace(req.Comment),
			CreatedAt: s.now().UTC(),
		}
		return tx.InsertReview(created)
	})
	if err != nil {
		return ReviewResult{}, err
	}

	s.tracker.Track(models.EventReviewSubmit, map[string]interface{}{
		"reviewId":  created.ID,
		"bookingId": created.BookingID,
		"expertId":  created.ExpertID,
		"rating":    created.Rating,
	})

	return ReviewResult{Review: created, State: StateReviewed}, nil
}

func (s *Service) Get(ctx context.Context, bookingID string) (View, error) {
	b, err := s.store.GetBooking(strings.TrimSpace(bookingID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return View{}, ErrNotFound
		}
		return View{}, err
	}

	view := View{
		Booking:      b,
		State:        s.stateOf(b),
		PriceDisplay: utils.FormatAmount(b.PriceKZT) + " " + models.Currency,
		CalendarURL:  "/api/v1/bookings/" + b.ID + "/calendar.ics",
	}
	if slot, err := s.store.GetSlot(b.SlotID); err == nil {
		view.Slot = &slot
	}
	if expert, err := s.store.GetExpert(b.ExpertID); err == nil {
		view.ExpertName = expert.Name
		view.ExpertSlug = expert.Slug
	}
	if !b.IsPaid() {
		view.MeetURL = ""
		view.CalendarURL = ""
	}
	return view, nil
}

func (s *Service) StateOf(ctx context.Context, bookingID string) (State, error) {
	b, err := s.store.GetBooking(strings.TrimSpace(bookingID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return s.stateOf(b), nil
}

// Calendar builds the .ics export. The booking and its slot must exist.
func (s *Service) Calendar(ctx context.Context, bookingID string) (CalendarExport, error) {
	b, err := s.store.GetBooking(strings.TrimSpace(bookingID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return CalendarExport{}, ErrNotFound
		}
		return CalendarExport{}, err
	}
	slot, err := s.store.GetSlot(b.SlotID)
	if err != nil {
		return CalendarExport{}, ErrSlotNotFound
	}
	name := ""
	if expert, err := s.store.GetExpert(b.ExpertID); err == nil {
		name = expert.Name
	}
	return BuildCalendar(b, slot, name, s.meetBaseURL, s.now()), nil
}

// MeetingLink is the placeholder link a booking gets once paid.
func (s *Service) MeetingLink(bookingID string) string {
	return MeetingLink(bookingID, s.meetBaseURL)
}

func (s *Service) NotifyPaid(ctx context.Context, b models.Booking) error {
	if s.notifier == nil {
		return nil
	}
	expert, err := s.store.GetExpert(b.ExpertID)
	if err != nil {
		return err
	}
	slot, err := s.store.GetSlot(b.SlotID)
	if err != nil {
		return err
	}
	_, err = s.notifier.SendBookingConfirmation(ctx, b, expert, slot)
	return err
}

func (s *Service) stateOf(b models.Booking) State {
	if !b.IsPaid() {
		return StateCheckoutPending
	}
	reviews := s.store.ListReviews(func(r models.Review) bool { return r.BookingID == b.ID })
	if len(reviews) > 0 {
		return StateReviewed
	}
	return StatePaid
}

func (s *Service) openSlot(expertID, slotID string) (models.Expert, models.Slot, error) {
	if slotID == "" {
		return models.Expert{}, models.Slot{}, ErrNoSlot
	}
	expert, err := s.store.GetExpert(expertID)
	if err != nil {
		return models.Expert{}, models.Slot{}, ErrExpertNotFound
	}
	slot, err := s.store.GetSlot(slotID)
	if err != nil || slot.ExpertID != expert.ID {
		return models.Expert{}, models.Slot{}, ErrSlotNotFound
	}
	if slot.IsBooked {
		return models.Expert{}, models.Slot{}, ErrSlotUnavailable
	}
	return expert, slot, nil
}
