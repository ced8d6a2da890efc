package domain

import "context"

// TransactionManager runs fn inside a single database transaction. The
// transaction travels in the context; repositories pick it up and fall
// back to the pool when none is present. Returning an error rolls
// everything back.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
