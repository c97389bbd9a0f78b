package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new ledger entry repository
func NewTransactionRepository(db *gorm.DB) domainRepo.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *entity.Transaction) error {
	return conn(ctx, r.db).Create(txn).Error
}

func (r *transactionRepository) SumPaymentsByChallan(ctx context.Context, vendorID uuid.UUID, challanNumber string) (decimal.Decimal, error) {
	var out sumResult
	err := conn(ctx, r.db).Model(&entity.Transaction{}).
		Scopes(VendorScope(vendorID)).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("challan_number = ? AND type = ?", challanNumber, enum.TransactionTypePayment).
		Scan(&out).Error
	return out.Total, err
}

func (r *transactionRepository) UpdateAmountByPayment(ctx context.Context, vendorID, paymentID uuid.UUID, amount decimal.Decimal) error {
	return conn(ctx, r.db).Model(&entity.Transaction{}).
		Scopes(VendorScope(vendorID)).
		Where("payment_id = ?", paymentID).
		Update("amount", amount).Error
}

func (r *transactionRepository) DeleteByPayment(ctx context.Context, vendorID, paymentID uuid.UUID) error {
	return conn(ctx, r.db).Scopes(VendorScope(vendorID)).
		Where("payment_id = ?", paymentID).
		Delete(&entity.Transaction{}).Error
}

func (r *transactionRepository) List(ctx context.Context, filter domainRepo.TransactionFilter, params *pagination.PaginationParams) ([]entity.Transaction, int64, error) {
	var txns []entity.Transaction
	var total int64

	query := conn(ctx, r.db).Model(&entity.Transaction{}).
		Scopes(VendorScope(filter.VendorID), dateScope("transaction_date", filter.DateRange))
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("transaction_date DESC").
		Find(&txns).Error

	return txns, total, err
}
