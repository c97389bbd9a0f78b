package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/pkg/pagination"
)

// ChallanRepository defines the interface for challan data operations
type ChallanRepository interface {
	// Create inserts the challan together with its items
	Create(ctx context.Context, challan *entity.Challan) error
	GetByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Challan, error)
	LockByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Challan, error)
	// LastNumberWithPrefix returns the highest challan number starting with prefix,
	// soft-deleted rows included, or "" when there is none
	LastNumberWithPrefix(ctx context.Context, vendorID uuid.UUID, prefix string) (string, error)
	// LockForBilling locks the named challans of a customer, with items, in id order
	LockForBilling(ctx context.Context, vendorID, customerID uuid.UUID, ids []uuid.UUID) ([]entity.Challan, error)
	// Update saves the challan header; items are immutable
	Update(ctx context.Context, challan *entity.Challan) error
	SetStatus(ctx context.Context, vendorID uuid.UUID, ids []uuid.UUID, status enum.ChallanStatus, billID *uuid.UUID) error
	Delete(ctx context.Context, vendorID, id uuid.UUID) error
	List(ctx context.Context, filter ChallanFilter, params *pagination.PaginationParams) ([]entity.Challan, int64, error)
}
