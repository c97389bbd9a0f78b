package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
)

// GstSlabRepository defines the interface for vendor GST rates
type GstSlabRepository interface {
	Create(ctx context.Context, slab *entity.GstSlab) error
	GetByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.GstSlab, error)
	GetDefault(ctx context.Context, vendorID uuid.UUID) (*entity.GstSlab, error)
	// ClearDefault unsets the default flag on every slab of the vendor
	ClearDefault(ctx context.Context, vendorID uuid.UUID) error
	Update(ctx context.Context, slab *entity.GstSlab) error
	Delete(ctx context.Context, vendorID, id uuid.UUID) error
	List(ctx context.Context, vendorID uuid.UUID) ([]entity.GstSlab, error)
}
