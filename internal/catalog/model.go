package catalog

import "expertbook-backend/internal/models"

// TopicAll disables the category filter.
const TopicAll = "all"

type Charity struct {
	Percent int    `json:"percent"`
	Fund    string `json:"fund,omitempty"`
}

// Card is the expert as shown in lists.
type Card struct {
	models.Expert
	Charity      Charity `json:"charity"`
	FirstPrice   int     `json:"firstPrice"`
	PriceDisplay string  `json:"priceDisplay"`
}

// Detail is the expert page model.
type Detail struct {
	Card
	AverageRating *float64        `json:"averageRating"`
	ReviewCount   int             `json:"reviewCount"`
	LatestReviews []models.Review `json:"latestReviews"`
	Slots         []models.Slot   `json:"slots"`
}

type ListFilter struct {
	Topic string
}
