package catalog

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"expertbook-backend/internal/models"
	"expertbook-backend/internal/store"
	"expertbook-backend/internal/utils"
)

var ErrNotFound = errors.New("expert not found")

const latestReviewsLimit = 3

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListExperts returns the experts matching the filter, highest charity
// percent first. Ties keep store order.
func (s *Service) ListExperts(filter ListFilter) []Card {
	topic := strings.TrimSpace(filter.Topic)
	experts := s.repo.ListExperts()
	cards := make([]Card, 0, len(experts))
	for _, e := range experts {
		if topic != "" && topic != TopicAll && !MatchesCategory(e, topic) {
			continue
		}
		cards = append(cards, NewCard(e))
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Charity.Percent > cards[j].Charity.Percent
	})
	return cards
}

// Featured lists up to limit experts with fully donating experts first.
func (s *Service) Featured(limit int) []Card {
	experts := s.repo.ListExperts()
	cards := make([]Card, 0, len(experts))
	for _, e := range experts {
		cards = append(cards, NewCard(e))
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Charity.Percent == 100 && cards[j].Charity.Percent != 100
	})
	if limit > 0 && len(cards) > limit {
		cards = cards[:limit]
	}
	return cards
}

func (s *Service) GetBySlug(slug string) (models.Expert, error) {
	e, err := s.repo.GetExpertBySlug(strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Expert{}, ErrNotFound
		}
		return models.Expert{}, err
	}
	return e, nil
}

func (s *Service) Detail(slug string) (Detail, error) {
	e, err := s.GetBySlug(slug)
	if err != nil {
		return Detail{}, err
	}
	reviews := s.ReviewsForExpert(e.ID)
	return Detail{
		Card:          NewCard(e),
		AverageRating: averageOf(reviews),
		ReviewCount:   len(reviews),
		LatestReviews: latest(reviews, latestReviewsLimit),
		Slots:         s.SlotsForExpert(e.ID),
	}, nil
}

// SlotsForExpert returns the expert's slots that are still open.
func (s *Service) SlotsForExpert(expertID string) []models.Slot {
	slots := s.repo.ListSlots(func(sl models.Slot) bool {
		return sl.ExpertID == expertID && !sl.IsBooked
	})
	if slots == nil {
		slots = []models.Slot{}
	}
	return slots
}

func (s *Service) ReviewsForExpert(expertID string) []models.Review {
	reviews := s.repo.ListReviews(func(r models.Review) bool {
		return r.ExpertID == expertID
	})
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews
}

// AverageRating is nil when the expert has no reviews yet.
func (s *Service) AverageRating(expertID string) *float64 {
	return averageOf(s.ReviewsForExpert(expertID))
}

func averageOf(reviews []models.Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return &avg
}

// latest returns up to n reviews, newest first.
func latest(reviews []models.Review, n int) []models.Review {
	out := append([]models.Review(nil), reviews...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// MatchesCategory reports whether any of the expert's topics belongs to the
// category. Unknown keys match nothing.
func MatchesCategory(e models.Expert, key string) bool {
	cat, ok := models.CategoryByKey(key)
	if !ok {
		return false
	}
	for _, topic := range e.Topics {
		for _, t := range cat.Topics {
			if topic == t {
				return true
			}
		}
	}
	return false
}

func Categories() []models.Category {
	return append([]models.Category(nil), models.Categories...)
}

// CharityMeta prefers the expert's own donation fields and otherwise falls
// back to defaultCharity.
func CharityMeta(e models.Expert) Charity {
	if e.DonationPercent != nil {
		p := *e.DonationPercent
		p = int(math.Max(0, math.Min(100, float64(p))))
		return Charity{Percent: p, Fund: e.CharityFund}
	}
	return defaultCharity(e.Slug)
}

var (
	fullDonorSlug = regexp.MustCompile(`startups?-1$|startup-mentor`)
	halfDonorSlug = regexp.MustCompile(`career-2$|career-coach`)
)

// defaultCharity is a placeholder for demo profiles that carry no donation
// fields. Replace once experts declare their charity terms explicitly.
func defaultCharity(slug string) Charity {
	switch {
	case fullDonorSlug.MatchString(slug):
		return Charity{Percent: 100, Fund: "Dar"}
	case halfDonorSlug.MatchString(slug):
		return Charity{Percent: 50, Fund: "Ayala"}
	default:
		return Charity{}
	}
}

func NewCard(e models.Expert) Card {
	price := e.FirstPrice()
	return Card{
		Expert:       e,
		Charity:      CharityMeta(e),
		FirstPrice:   price,
		PriceDisplay: utils.FormatAmount(price) + " " + models.Currency,
	}
}
