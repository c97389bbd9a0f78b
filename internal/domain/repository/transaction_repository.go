package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// TransactionRepository defines the interface for ledger entries
type TransactionRepository interface {
	Create(ctx context.Context, txn *entity.Transaction) error
	// SumPaymentsByChallan adds up every payment-type entry recorded against a challan number
	SumPaymentsByChallan(ctx context.Context, vendorID uuid.UUID, challanNumber string) (decimal.Decimal, error)
	UpdateAmountByPayment(ctx context.Context, vendorID, paymentID uuid.UUID, amount decimal.Decimal) error
	DeleteByPayment(ctx context.Context, vendorID, paymentID uuid.UUID) error
	List(ctx context.Context, filter TransactionFilter, params *pagination.PaginationParams) ([]entity.Transaction, int64, error)
}
