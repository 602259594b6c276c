package domain

import (
	"github.com/google/uuid"
)

const (
	MinRating     = 0.0
	MaxRating     = 5.0
	DefaultRating = MaxRating
)

// Seller is the public identity of an account as shown on listings.
type Seller struct {
	ID         uuid.UUID `json:"id"`
	Nickname   string    `json:"nickname"`
	Rating     float64   `json:"rating"`
	DealsCount int       `json:"deals_count"`
}

// NewSeller returns a seller with rating clamped into [MinRating, MaxRating].
func NewSeller(id uuid.UUID, nickname string, rating float64, deals int) Seller {
	return Seller{
		ID:         id,
		Nickname:   nickname,
		Rating:     ClampRating(rating),
		DealsCount: max(deals, 0),
	}
}

func ClampRating(r float64) float64 {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}
