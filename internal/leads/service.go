package leads

import (
	"context"
	"errors"
	"strings"
	"time"

	"expertbook-backend/internal/httpx"
	"expertbook-backend/internal/models"
	"expertbook-backend/internal/store"
	"expertbook-backend/internal/validation"
)

var (
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidTopic = errors.New("invalid topic")
	ErrNotFound     = errors.New("lead not found")
)

type Tracker interface {
	Track(name string, detail map[string]interface{}) models.Event
}

type Notifier interface {
	SendLeadNotification(ctx context.Context, lead models.Lead) (string, error)
	SendLeadConfirmation(ctx context.Context, lead models.Lead) (string, error)
}

type Service struct {
	repo     Repository
	tracker  Tracker
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, tracker Tracker, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		tracker:  tracker,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (models.Lead, error) {
	if !validation.HasMinTrimmed(req.Name, 2) {
		return models.Lead{}, ErrInvalidName
	}
	if !validation.IsEmail(req.Email) {
		return models.Lead{}, ErrInvalidEmail
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = DefaultTopic
	}
	if _, ok := models.CategoryByKey(topic); !ok {
		return models.Lead{}, ErrInvalidTopic
	}

	lead := models.Lead{
		ID:        store.NewID("lead"),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Topic:     topic,
		PriceKZT:  int(req.Price),
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateLead(lead); err != nil {
		return models.Lead{}, err
	}

	s.tracker.Track(models.EventLeadSubmit, map[string]interface{}{
		"id":       lead.ID,
		"topic":    lead.Topic,
		"priceKZT": lead.PriceKZT,
	})
	return lead, nil
}

// List pages leads newest first.
func (s *Service) List(ctx context.Context, limit, offset int64) ([]models.Lead, int64) {
	all := s.repo.ListLeads()
	total := int64(len(all))
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return httpx.Page(all, limit, offset), total
}

func (s *Service) Get(ctx context.Context, id string) (models.Lead, error) {
	lead, err := s.repo.GetLead(strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Lead{}, ErrNotFound
		}
		return models.Lead{}, err
	}
	return lead, nil
}

func (s *Service) NotifyNewLead(ctx context.Context, lead models.Lead) error {
	if s.notifier == nil {
		return nil
	}
	_, err := s.notifier.SendLeadNotification(ctx, lead)
	return err
}

func (s *Service) NotifyLeadConfirmation(ctx context.Context, lead models.Lead) error {
	if s.notifier == nil {
		return nil
	}
	if strings.TrimSpace(lead.Email) == "" {
		return nil
	}
	_, err := s.notifier.SendLeadConfirmation(ctx, lead)
	return err
}
