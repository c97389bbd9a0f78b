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

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	return mapError(conn(ctx, r.db).Omit("Customer").Create(bill).Error)
}

func (r *billRepository) GetByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Customer").
		First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

// LockByID locks the bill row and then loads its items without a lock
func (r *billRepository) LockByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).
		Clauses(clauseUpdateLock()).
		First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	err = conn(ctx, r.db).Where("bill_id = ?", bill.ID).Order("position ASC").Find(&bill.Items).Error
	return &bill, err
}

func (r *billRepository) LockForCustomer(ctx context.Context, vendorID, customerID uuid.UUID, ids []uuid.UUID) ([]entity.Bill, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var bills []entity.Bill
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).
		Clauses(clauseUpdateLock()).
		Where("customer_id = ? AND id IN ?", customerID, ids).
		Order("id ASC").
		Find(&bills).Error
	return bills, err
}

func (r *billRepository) Update(ctx context.Context, bill *entity.Bill) error {
	return mapError(conn(ctx, r.db).Omit("Customer", "Items").Save(bill).Error)
}

func (r *billRepository) Delete(ctx context.Context, vendorID, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(VendorScope(vendorID)).Delete(&entity.Bill{}, "id = ?", id).Error
}

func (r *billRepository) List(ctx context.Context, filter domainRepo.BillFilter, params *pagination.PaginationParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := conn(ctx, r.db).Model(&entity.Bill{}).
		Scopes(VendorScope(filter.VendorID), dateScope("bill_date", filter.DateRange))
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
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
		Order("bill_date DESC, numeric_part DESC").
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) ListForCustomer(ctx context.Context, vendorID, customerID uuid.UUID) ([]entity.Bill, error) {
	var bills []entity.Bill
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).
		Where("customer_id = ? AND status <> ?", customerID, enum.BillStatusCancelled).
		Order("bill_date ASC, created_at ASC").
		Find(&bills).Error
	return bills, err
}
