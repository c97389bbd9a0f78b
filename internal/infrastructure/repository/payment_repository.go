package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/pagination"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return mapError(conn(ctx, r.db).Omit("Customer").Create(payment).Error)
}

func (r *paymentRepository) GetByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).Preload("Customer").First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &payment, err
}

func (r *paymentRepository) LockByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).Clauses(clauseUpdateLock()).First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &payment, err
}

func (r *paymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	return mapError(conn(ctx, r.db).Omit("Customer").Save(payment).Error)
}

func (r *paymentRepository) Delete(ctx context.Context, vendorID, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(VendorScope(vendorID)).Delete(&entity.Payment{}, "id = ?", id).Error
}

func (r *paymentRepository) List(ctx context.Context, filter domainRepo.PaymentFilter, params *pagination.PaginationParams) ([]entity.Payment, int64, error) {
	var payments []entity.Payment
	var total int64

	query := conn(ctx, r.db).Model(&entity.Payment{}).
		Scopes(VendorScope(filter.VendorID), dateScope("payment_date", filter.DateRange))
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.SubType != nil {
		query = query.Where("sub_type = ?", *filter.SubType)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Customer").
		Order("payment_date DESC, created_at DESC").
		Find(&payments).Error

	return payments, total, err
}

func (r *paymentRepository) ListForCustomer(ctx context.Context, vendorID, customerID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).
		Where("customer_id = ? AND status = ?", customerID, enum.PaymentStatusCompleted).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) ExistsOpeningBalance(ctx context.Context, vendorID uuid.UUID, method enum.PaymentMethod, financialYear string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Payment{}).
		Scopes(VendorScope(vendorID)).
		Where("is_opening_balance = ? AND method = ? AND financial_year = ?", true, method, financialYear).
		Count(&count).Error
	return count > 0, err
}
