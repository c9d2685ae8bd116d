package leads

import "expertbook-backend/internal/models"

type Repository interface {
	CreateLead(l models.Lead) error
	GetLead(id string) (models.Lead, error)
	ListLeads() []models.Lead
}
