package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/pkg/pagination"
)

// CustomerRepository defines the interface for customer data operations.
// Every lookup is scoped to a vendor.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	// CreateBatch inserts customers, skipping mobiles the vendor already has, and reports how many were inserted
	CreateBatch(ctx context.Context, customers []entity.Customer) (int64, error)
	GetByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Customer, error)
	GetByMobile(ctx context.Context, vendorID uuid.UUID, mobile string) (*entity.Customer, error)
	// GetOwnerVendorID returns the vendor a customer belongs to, or nil if the customer does not exist
	GetOwnerVendorID(ctx context.Context, customerID uuid.UUID) (*uuid.UUID, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, vendorID, id uuid.UUID) error
	List(ctx context.Context, vendorID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
}
