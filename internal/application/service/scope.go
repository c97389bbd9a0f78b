package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/apperror"
)

// Identity is the authenticated caller as decoded from the access token
type Identity struct {
	UserID     uuid.UUID
	Role       enum.Role
	VendorID   *uuid.UUID
	CustomerID *uuid.UUID
}

// ScopeResolver decides which vendor's books a request operates on
type ScopeResolver struct {
	vendorRepo   repository.VendorRepository
	customerRepo repository.CustomerRepository
}

// NewScopeResolver creates a new scope resolver
func NewScopeResolver(vendorRepo repository.VendorRepository, customerRepo repository.CustomerRepository) *ScopeResolver {
	return &ScopeResolver{vendorRepo: vendorRepo, customerRepo: customerRepo}
}

// ResolveVendorScope returns the vendor id for the caller. Vendors get their own vendor,
// customers the vendor that owns their record, and admins the vendor they asked for.
func (r *ScopeResolver) ResolveVendorScope(ctx context.Context, identity Identity, requested *uuid.UUID) (uuid.UUID, error) {
	switch identity.Role {
	case enum.RoleVendor:
		if identity.VendorID == nil {
			return uuid.Nil, apperror.ErrForbidden
		}
		return *identity.VendorID, nil

	case enum.RoleCustomer:
		if identity.CustomerID == nil {
			return uuid.Nil, apperror.ErrForbidden
		}
		vendorID, err := r.customerRepo.GetOwnerVendorID(ctx, *identity.CustomerID)
		if err != nil {
			return uuid.Nil, err
		}
		if vendorID == nil {
			return uuid.Nil, apperror.NewNotFoundError("Customer")
		}
		return *vendorID, nil

	case enum.RoleAdmin:
		if requested == nil || *requested == uuid.Nil {
			return uuid.Nil, apperror.NewFieldError("vendor_id", "vendor_id is required for admin requests")
		}
		vendor, err := r.vendorRepo.GetByID(ctx, *requested)
		if err != nil {
			return uuid.Nil, err
		}
		if vendor == nil {
			return uuid.Nil, apperror.NewNotFoundError("Vendor")
		}
		return vendor.ID, nil
	}

	return uuid.Nil, apperror.ErrForbidden
}
