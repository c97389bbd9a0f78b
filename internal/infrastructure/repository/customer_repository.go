package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const customerBatchSize = 200

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return mapError(conn(ctx, r.db).Omit("Vendor").Create(customer).Error)
}

// CreateBatch inserts customers, skipping any whose mobile the vendor already has
func (r *customerRepository) CreateBatch(ctx context.Context, customers []entity.Customer) (int64, error) {
	if len(customers) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).Omit("Vendor").
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&customers, customerBatchSize)
	return result.RowsAffected, result.Error
}

func (r *customerRepository) GetByID(ctx context.Context, vendorID, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) GetByMobile(ctx context.Context, vendorID uuid.UUID, mobile string) (*entity.Customer, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).Scopes(VendorScope(vendorID)).First(&customer, "mobile = ?", mobile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) GetOwnerVendorID(ctx context.Context, customerID uuid.UUID) (*uuid.UUID, error) {
	var customer entity.Customer
	err := conn(ctx, r.db).Select("id", "vendor_id").First(&customer, "id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer.VendorID, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return mapError(conn(ctx, r.db).Omit("Vendor").Save(customer).Error)
}

func (r *customerRepository) Delete(ctx context.Context, vendorID, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(VendorScope(vendorID)).Delete(&entity.Customer{}, "id = ?", id).Error
}

func (r *customerRepository) List(ctx context.Context, vendorID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := conn(ctx, r.db).Model(&entity.Customer{}).Scopes(VendorScope(vendorID))
	if search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ? OR mobile ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&customers).Error

	return customers, total, err
}
