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

type challanRepository struct {
	db *gorm.DB
}

// NewChallanRepository creates a new challan repository
func NewChallanRepository(db *gorm.DB) domainRepo.ChallanRepository {
	return &challanRepository{db: db}
}

func (r *challanRepository) Create(ctx context.Context, challan *entity.Challan) error {
	return mapError(conn(ctx, r.db).Omit("Customer").Create(challan).Error)
}

func (r *challanRepository) GetByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Challan, error) {
	var challan entity.Challan
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Customer").
		First(&challan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &challan, err
}

func (r *challanRepository) LockByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Challan, error) {
	var challan entity.Challan
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).
		Clauses(clauseUpdateLock()).
		First(&challan, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &challan, err
}

func (r *challanRepository) LastNumberWithPrefix(ctx context.Context, vendorID uuid.UUID, prefix string) (string, error) {
	var numbers []string
	err := conn(ctx, r.db).Unscoped().Model(&entity.Challan{}).
		Scopes(VendorScope(vendorID)).
		Where("challan_number LIKE ?", prefix+"%").
		Order("LENGTH(challan_number) DESC, challan_number DESC").
		Limit(1).
		Pluck("challan_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

func (r *challanRepository) LockForBilling(ctx context.Context, vendorID, customerID uuid.UUID, ids []uuid.UUID) ([]entity.Challan, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var challans []entity.Challan
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).
		Clauses(clauseUpdateLock()).
		Where("customer_id = ? AND id IN ?", customerID, ids).
		Order("id ASC").
		Find(&challans).Error
	if err != nil || len(challans) == 0 {
		return challans, err
	}

	challanIDs := make([]uuid.UUID, len(challans))
	for i := range challans {
		challanIDs[i] = challans[i].ID
	}
	var items []entity.ChallanItem
	if err := conn(ctx, r.db).Where("challan_id IN ?", challanIDs).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	for i := range challans {
		for _, item := range items {
			if item.ChallanID == challans[i].ID {
				challans[i].Items = append(challans[i].Items, item)
			}
		}
	}
	return challans, nil
}

func (r *challanRepository) Update(ctx context.Context, challan *entity.Challan) error {
	return conn(ctx, r.db).Omit("Customer", "Items").Save(challan).Error
}

func (r *challanRepository) SetStatus(ctx context.Context, vendorID uuid.UUID, ids []uuid.UUID, status enum.ChallanStatus, billID *uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(ctx, r.db).Model(&entity.Challan{}).
		Scopes(VendorScope(vendorID)).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"status": status, "bill_id": billID}).Error
}

func (r *challanRepository) Delete(ctx context.Context, vendorID, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(VendorScope(vendorID)).Delete(&entity.Challan{}, "id = ?", id).Error
}

func (r *challanRepository) List(ctx context.Context, filter domainRepo.ChallanFilter, params *pagination.PaginationParams) ([]entity.Challan, int64, error) {
	var challans []entity.Challan
	var total int64

	query := conn(ctx, r.db).Model(&entity.Challan{}).
		Scopes(VendorScope(filter.VendorID), dateScope("challan_date", filter.DateRange))
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
		Order("challan_date DESC, challan_number DESC").
		Find(&challans).Error

	return challans, total, err
}
