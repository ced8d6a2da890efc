package domain

import (
	"context"
	"time"
)

// Offer scopes.
const (
	OfferTypeProduct  = "product"
	OfferTypeCategory = "category"
)

// Offer is a percentage discount over a set of products or categories.
// Activating, editing or deleting an offer triggers a full recompute of
// variant discount prices (newest active offer wins).
type Offer struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	OfferType          string    `json:"offerType"`
	DiscountPercentage int       `json:"discountPercentage"`
	Items              []string  `json:"items"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ActiveNow reports whether the offer applies at t.
func (o *Offer) ActiveNow(t time.Time) bool {
	return o.IsActive && !t.Before(o.StartDate) && !t.After(o.EndDate)
}

type OfferRepository interface {
	CreateOffer(ctx context.Context, o *Offer) error
	UpdateOffer(ctx context.Context, o *Offer) error
	DeleteOffer(ctx context.Context, id string) error
	GetOfferByID(ctx context.Context, id string) (*Offer, error)
	ListOffers(ctx context.Context, page, limit int) ([]Offer, int64, error)
	ListActiveOffers(ctx context.Context, now time.Time) ([]Offer, error)
}
