package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/pkg/pagination"
)

// BillRepository defines the interface for bill data operations
type BillRepository interface {
	// Create inserts the bill together with its items
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Bill, error)
	LockByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Bill, error)
	// LockForCustomer locks the named bills of one customer in id order.
	// Bills that do not exist or belong elsewhere are simply absent from the result.
	LockForCustomer(ctx context.Context, vendorID, customerID uuid.UUID, ids []uuid.UUID) ([]entity.Bill, error)
	// Update saves the bill header
	Update(ctx context.Context, bill *entity.Bill) error
	Delete(ctx context.Context, vendorID, id uuid.UUID) error
	List(ctx context.Context, filter BillFilter, params *pagination.PaginationParams) ([]entity.Bill, int64, error)
	// ListForCustomer returns every non-cancelled bill of a customer, oldest first
	ListForCustomer(ctx context.Context, vendorID, customerID uuid.UUID) ([]entity.Bill, error)
}
