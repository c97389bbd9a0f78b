package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// GstSlabService manages a vendor's GST rates
type GstSlabService struct {
	tx          repository.Transactor
	gstSlabRepo repository.GstSlabRepository
}

// NewGstSlabService creates a new GST slab service
func NewGstSlabService(tx repository.Transactor, gstSlabRepo repository.GstSlabRepository) *GstSlabService {
	return &GstSlabService{tx: tx, gstSlabRepo: gstSlabRepo}
}

// GstSlabInput represents the create or update GST slab input
type GstSlabInput struct {
	Name      *string
	Rate      *decimal.Decimal
	IsDefault *bool
}

// CreateGstSlab creates a slab. Making it the default clears the previous default.
func (s *GstSlabService) CreateGstSlab(ctx context.Context, vendorID uuid.UUID, input *GstSlabInput) (*entity.GstSlab, error) {
	if input.Name == nil || *input.Name == "" {
		return nil, apperror.NewFieldError("name", "name is required")
	}
	if input.Rate == nil {
		return nil, apperror.NewFieldError("rate", "rate is required")
	}
	if fe := validatePercent("rate", *input.Rate); fe != nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{*fe})
	}

	slab := &entity.GstSlab{
		VendorID:  vendorID,
		Name:      *input.Name,
		Rate:      *input.Rate,
		IsDefault: input.IsDefault != nil && *input.IsDefault,
	}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if slab.IsDefault {
			if err := s.gstSlabRepo.ClearDefault(ctx, vendorID); err != nil {
				return err
			}
		}
		return s.gstSlabRepo.Create(ctx, slab)
	})
	if err != nil {
		return nil, err
	}
	return slab, nil
}

// ListGstSlabs lists the vendor's slabs
func (s *GstSlabService) ListGstSlabs(ctx context.Context, vendorID uuid.UUID) ([]entity.GstSlab, error) {
	slabs, err := s.gstSlabRepo.List(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if slabs == nil {
		slabs = []entity.GstSlab{}
	}
	return slabs, nil
}

// UpdateGstSlab updates a slab
func (s *GstSlabService) UpdateGstSlab(ctx context.Context, vendorID, id uuid.UUID, input *GstSlabInput) (*entity.GstSlab, error) {
	if input.Rate != nil {
		if fe := validatePercent("rate", *input.Rate); fe != nil {
			return nil, apperror.NewValidationError([]apperror.FieldError{*fe})
		}
	}

	var slab *entity.GstSlab
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		slab, err = s.gstSlabRepo.GetByID(ctx, vendorID, id)
		if err != nil {
			return err
		}
		if slab == nil {
			return apperror.NewNotFoundError("GST slab")
		}

		if input.Name != nil && *input.Name != "" {
			slab.Name = *input.Name
		}
		if input.Rate != nil {
			slab.Rate = *input.Rate
		}
		if input.IsDefault != nil {
			if *input.IsDefault && !slab.IsDefault {
				if err := s.gstSlabRepo.ClearDefault(ctx, vendorID); err != nil {
					return err
				}
			}
			slab.IsDefault = *input.IsDefault
		}
		return s.gstSlabRepo.Update(ctx, slab)
	})
	if err != nil {
		return nil, err
	}
	return slab, nil
}

// DeleteGstSlab deletes a slab. Challans already priced with it keep their rates.
func (s *GstSlabService) DeleteGstSlab(ctx context.Context, vendorID, id uuid.UUID) error {
	slab, err := s.gstSlabRepo.GetByID(ctx, vendorID, id)
	if err != nil {
		return err
	}
	if slab == nil {
		return apperror.NewNotFoundError("GST slab")
	}
	return s.gstSlabRepo.Delete(ctx, vendorID, id)
}
