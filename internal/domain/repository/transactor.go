package repository

import (
	"context"
)

// Transactor runs fn inside a single database transaction. The transaction travels in ctx,
// so repository calls made with that ctx join it. Nested calls reuse the outer transaction.
// Returning an error from fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
