package domain

import (
	"context"
	"time"
)

type ContextKey string

const UserContextKey ContextKey = "user"

// --- User & Address ---
// Account management lives in a separate service; this subsystem only
// reads users for admin listings and addresses for order snapshots.

type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsBlocked bool      `json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt"`
}

// Address is both the address-book row and the snapshot embedded in
// ShippingInfo.
type Address struct {
	ID         string `json:"id,omitempty"`
	UserID     string `json:"-"`
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetAddressByID(ctx context.Context, id, userID string) (*Address, error)
	ListAddresses(ctx context.Context, userID string) ([]Address, error)
}
