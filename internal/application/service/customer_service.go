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

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	region       string
}

// NewCustomerService creates a new customer service. Mobiles without a country code are read in region.
func NewCustomerService(customerRepo repository.CustomerRepository, region string) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, region: region}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name    string
	Mobile  string
	Email   *string
	GSTIN   *string
	Address *string
}

func (s *CustomerService) normalizeMobile(mobile string) (string, error) {
	normalized, err := phone.Normalize(mobile, s.region)
	if err != nil {
		return "", apperror.NewFieldError("mobile", err.Error())
	}
	return normalized, nil
}

// CreateCustomer creates a new customer for the vendor
func (s *CustomerService) CreateCustomer(ctx context.Context, vendorID uuid.UUID, input *CreateCustomerInput) (*entity.Customer, error) {
	mobile, err := s.normalizeMobile(input.Mobile)
	if err != nil {
		return nil, err
	}

	existing, err := s.customerRepo.GetByMobile(ctx, vendorID, mobile)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("A customer with this mobile already exists")
	}

	customer := &entity.Customer{
		VendorID: vendorID,
		Name:     input.Name,
		Mobile:   mobile,
		Email:    input.Email,
		GSTIN:    input.GSTIN,
		Address:  input.Address,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, vendorID, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, vendorID, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists the vendor's customers
func (s *CustomerService) ListCustomers(ctx context.Context, vendorID uuid.UUID, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, vendorID, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	Name    *string
	Mobile  *string
	Email   *string
	GSTIN   *string
	Address *string
}

// UpdateCustomer updates a customer
func (s *CustomerService) UpdateCustomer(ctx context.Context, vendorID, id uuid.UUID, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, vendorID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Mobile != nil {
		mobile, err := s.normalizeMobile(*input.Mobile)
		if err != nil {
			return nil, err
		}
		if mobile != customer.Mobile {
			existing, err := s.customerRepo.GetByMobile(ctx, vendorID, mobile)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, apperror.NewConflictError("A customer with this mobile already exists")
			}
			customer.Mobile = mobile
		}
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.GSTIN != nil {
		customer.GSTIN = input.GSTIN
	}
	if input.Address != nil {
		customer.Address = input.Address
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// DeleteCustomer deletes a customer
func (s *CustomerService) DeleteCustomer(ctx context.Context, vendorID, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, vendorID, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, vendorID, id)
}
