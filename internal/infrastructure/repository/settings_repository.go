package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceSettingsRepository struct {
	db *gorm.DB
}

// NewInvoiceSettingsRepository creates a new invoice settings repository
func NewInvoiceSettingsRepository(db *gorm.DB) domainRepo.InvoiceSettingsRepository {
	return &invoiceSettingsRepository{db: db}
}

// GetByVendor retrieves settings by vendor ID
func (r *invoiceSettingsRepository) GetByVendor(ctx context.Context, vendorID uuid.UUID) (*entity.InvoiceSettings, error) {
	var settings entity.InvoiceSettings
	err := conn(ctx, r.db).Where("vendor_id = ?", vendorID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &settings, err
}

// LockByVendor retrieves settings by vendor ID with a row lock
func (r *invoiceSettingsRepository) LockByVendor(ctx context.Context, vendorID uuid.UUID) (*entity.InvoiceSettings, error) {
	var settings entity.InvoiceSettings
	err := conn(ctx, r.db).Clauses(clauseUpdateLock()).Where("vendor_id = ?", vendorID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &settings, err
}

// CreateIfAbsent inserts settings; a concurrent insert for the same vendor wins silently
func (r *invoiceSettingsRepository) CreateIfAbsent(ctx context.Context, settings *entity.InvoiceSettings) error {
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "vendor_id"}}, DoNothing: true}).
		Create(settings).Error
}

// Update updates existing invoice settings
func (r *invoiceSettingsRepository) Update(ctx context.Context, settings *entity.InvoiceSettings) error {
	return conn(ctx, r.db).Save(settings).Error
}
