package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
	"gorm.io/gorm"
)

type gstSlabRepository struct {
	db *gorm.DB
}

// NewGstSlabRepository creates a new GST slab repository
func NewGstSlabRepository(db *gorm.DB) domainRepo.GstSlabRepository {
	return &gstSlabRepository{db: db}
}

func (r *gstSlabRepository) Create(ctx context.Context, slab *entity.GstSlab) error {
	return mapError(conn(ctx, r.db).Create(slab).Error)
}

func (r *gstSlabRepository) GetByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.GstSlab, error) {
	var slab entity.GstSlab
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).First(&slab, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &slab, err
}

func (r *gstSlabRepository) GetDefault(ctx context.Context, vendorID uuid.UUID) (*entity.GstSlab, error) {
	var slab entity.GstSlab
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).First(&slab, "is_default = ?", true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &slab, err
}

func (r *gstSlabRepository) ClearDefault(ctx context.Context, vendorID uuid.UUID) error {
	return conn(ctx, r.db).Model(&entity.GstSlab{}).
		Scopes(VendorScope(vendorID)).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}

func (r *gstSlabRepository) Update(ctx context.Context, slab *entity.GstSlab) error {
	return conn(ctx, r.db).Save(slab).Error
}

func (r *gstSlabRepository) Delete(ctx context.Context, vendorID, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(VendorScope(vendorID)).Delete(&entity.GstSlab{}, "id = ?", id).Error
}

func (r *gstSlabRepository) List(ctx context.Context, vendorID uuid.UUID) ([]entity.GstSlab, error) {
	var slabs []entity.GstSlab
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).Order("rate ASC").Find(&slabs).Error
	return slabs, err
}
