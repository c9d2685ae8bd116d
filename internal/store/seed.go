package store

import (
	"fmt"
	"math"
	"time"

	"expertbook-backend/internal/models"
	"expertbook-backend/internal/schedule"
	"expertbook-backend/internal/utils"
)

type seedGroup struct {
	Key   string
	Count int
	City  string
	Langs []string
	Price int
	Bio   string
}

var seedBase = []models.Expert{
	{ID: "exp_demo", Slug: "demo-expert", Name: "Demo Expert", Bio: "7+ years in marketing and product. Helps shape the pitch and find growth levers.", City: "Almaty", Langs: []string{"RU", "EN"}, Topics: []string{"Pitch", "Marketing"}, Prices: []models.PriceOption{{Minutes: 30, Amount: 25000}}, Rating: 4.9},
	{ID: "exp_startup", Slug: "startup-mentor", Name: "Startup Mentor", Bio: "Founder of two startups, ex-VC. GTM and unit economics.", City: "Astana", Langs: []string{"RU", "KZ", "EN"}, Topics: []string{"Startups", "Fundraising", "GTM"}, Prices: []models.PriceOption{{Minutes: 30, Amount: 50000}}, Rating: 4.8},
	{ID: "exp_career", Slug: "career-coach", Name: "Career & Resume", Bio: "HRD for 10+ years. Career moves, resumes, interview prep.", City: "Almaty", Langs: []string{"RU"}, Topics: []string{"Career", "HR", "Interviews"}, Prices: []models.PriceOption{{Minutes: 30, Amount: 40000}}, Rating: 4.7},
	{ID: "exp_relig", Slug: "faith-mentor", Name: "Spiritual Mentor", Bio: "Conversations about faith, meaning and choosing a path. Confidential.", City: "Shymkent", Langs: []string{"RU", "KZ"}, Topics: []string{"Religion", "Personal"}, Prices: []models.PriceOption{{Minutes: 30, Amount: 30000}}, Rating: 4.95},
	{ID: "exp_beauty", Slug: "beauty-expert", Name: "Beauty Expert", Bio: "Skin routines, care, product choice. Experience, not advertising.", City: "Almaty", Langs: []string{"RU"}, Topics: []string{"Beauty", "Wellness"}, Prices: []models.PriceOption{{Minutes: 30, Amount: 35000}}, Rating: 4.6},
}

var seedGroups = []seedGroup{
	{Key: "startups", Count: 4, City: "Astana", Langs: []string{"RU", "EN"}, Price: 50000, Bio: "Startups, fundraising, GTM."},
	{Key: "career", Count: 4, City: "Almaty", Langs: []string{"RU"}, Price: 40000, Bio: "Career, resumes, interviews."},
	{Key: "religion", Count: 3, City: "Shymkent", Langs: []string{"RU", "KZ"}, Price: 30000, Bio: "Spiritual conversations. Confidential."},
	{Key: "beauty", Count: 4, City: "Almaty", Langs: []string{"RU"}, Price: 35000, Bio: "Beauty and wellness without advertising."},
	{Key: "business", Count: 4, City: "Almaty", Langs: []string{"RU"}, Price: 45000, Bio: "Marketing, sales, business processes."},
}

// EnsureSeeded fills an empty store with the demo catalog and reports whether
// it did. Only the first successful call on a store seeds it.
func (s *Store) EnsureSeeded(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return false
	}
	if s.experts.len() == 0 {
		seed(&Tx{s: s}, now)
	}
	s.seeded = true
	return true
}

func (s *Store) Seeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeded
}

func seed(tx *Tx, now time.Time) {
	for _, e := range seedBase {
		_ = tx.InsertExpert(cloneExpert(e))
	}

	for _, g := range seedGroups {
		category, _ := models.CategoryByKey(g.Key)
		for i := 1; i <= g.Count; i++ {
			e := models.Expert{
				ID:     fmt.Sprintf("exp_%s_%d", g.Key, i),
				Slug:   utils.IndexedSlug(g.Key, i),
				Name:   fmt.Sprintf("Expert %d · %s", i, category.Name),
				Bio:    g.Bio,
				City:   g.City,
				Langs:  append([]string(nil), g.Langs...),
				Topics: append([]string(nil), category.Topics...),
				Prices: []models.PriceOption{{Minutes: schedule.SlotMinutes, Amount: g.Price}},
				Rating: math.Round((4.6+float64(i%4)*0.1)*10) / 10,
			}
			_ = tx.InsertExpert(e)
		}
	}

	for _, e := range tx.s.experts.list(nil) {
		for _, start := range schedule.UpcomingStarts(now) {
			slot := models.Slot{
				ID:       NewID("slot"),
				ExpertID: e.ID,
				StartsAt: start,
				Minutes:  schedule.SlotMinutes,
			}
			for tx.InsertSlot(slot) == ErrDuplicateID {
				slot.ID = NewID("slot")
			}
		}
	}
}

func cloneExpert(e models.Expert) models.Expert {
	e.Langs = append([]string(nil), e.Langs...)
	e.Topics = append([]string(nil), e.Topics...)
	e.Prices = append([]models.PriceOption(nil), e.Prices...)
	return e
}
