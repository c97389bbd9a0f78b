package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/sangkips/billbook-api/pkg/pagination"
	"github.com/sangkips/billbook-api/pkg/phone"
)

// VendorService handles vendor profiles
type VendorService struct {
	vendorRepo repository.VendorRepository
	region     string
}

// NewVendorService creates a new vendor service
func NewVendorService(vendorRepo repository.VendorRepository, region string) *VendorService {
	return &VendorService{vendorRepo: vendorRepo, region: region}
}

// GetVendor retrieves a vendor by ID
func (s *VendorService) GetVendor(ctx context.Context, id uuid.UUID) (*entity.Vendor, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, apperror.NewNotFoundError("Vendor")
	}
	return vendor, nil
}

// UpdateVendorInput represents the update vendor input
type UpdateVendorInput struct {
	Name         *string
	BusinessName *string
	GSTIN        *string
	Mobile       *string
	Email        *string
	Address      *string
	State        *string
}

// UpdateVendor updates a vendor profile
func (s *VendorService) UpdateVendor(ctx context.Context, id uuid.UUID, input *UpdateVendorInput) (*entity.Vendor, error) {
	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		vendor.Name = *input.Name
	}
	if input.Mobile != nil {
		mobile, err := phone.Normalize(*input.Mobile, s.region)
		if err != nil {
			return nil, apperror.NewFieldError("mobile", err.Error())
		}
		if mobile != vendor.Mobile {
			existing, err := s.vendorRepo.GetByMobile(ctx, mobile)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, apperror.NewConflictError("Mobile already registered")
			}
			vendor.Mobile = mobile
		}
	}
	if input.BusinessName != nil {
		vendor.BusinessName = input.BusinessName
	}
	if input.GSTIN != nil {
		vendor.GSTIN = input.GSTIN
	}
	if input.Email != nil {
		vendor.Email = input.Email
	}
	if input.Address != nil {
		vendor.Address = input.Address
	}
	if input.State != nil {
		vendor.State = input.State
	}

	if err := s.vendorRepo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// ListVendors lists every vendor
func (s *VendorService) ListVendors(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Vendor], error) {
	vendors, total, err := s.vendorRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(vendors, pag), nil
}
