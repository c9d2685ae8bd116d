package catalog

import "expertbook-backend/internal/models"

// Repository is the read side of the record store the catalog needs.
type Repository interface {
	ListExperts() []models.Expert
	GetExpertBySlug(slug string) (models.Expert, error)
	ListSlots(keep func(models.Slot) bool) []models.Slot
	ListReviews(keep func(models.Review) bool) []models.Review
}
