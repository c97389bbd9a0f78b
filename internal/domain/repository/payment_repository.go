package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/pkg/pagination"
)

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Payment, error)
	LockByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
	Delete(ctx context.Context, vendorID, id uuid.UUID) error
	List(ctx context.Context, filter PaymentFilter, params *pagination.PaginationParams) ([]entity.Payment, int64, error)
	// ListForCustomer returns every completed payment of a customer, oldest first
	ListForCustomer(ctx context.Context, vendorID, customerID uuid.UUID) ([]entity.Payment, error)
	ExistsOpeningBalance(ctx context.Context, vendorID uuid.UUID, method enum.PaymentMethod, financialYear string) (bool, error)
}
