package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// NewID returns a random UUID string for entity primary keys.
func NewID() string {
	return uuid.NewString()
}

// GenerateOrderID builds the human-facing order reference, e.g.
// ORD-20260901-4821. Uniqueness is enforced by the orders table; the
// random suffix only keeps same-day references unguessable.
func GenerateOrderID(now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), suffix)
}

// GenerateTransactionID returns a reference for wallet/payment records.
func GenerateTransactionID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
