package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
)

// InvoiceSettingsRepository defines the interface for per-vendor invoice numbering state
type InvoiceSettingsRepository interface {
	GetByVendor(ctx context.Context, vendorID uuid.UUID) (*entity.InvoiceSettings, error)
	// LockByVendor reads the settings row FOR UPDATE inside the current transaction
	LockByVendor(ctx context.Context, vendorID uuid.UUID) (*entity.InvoiceSettings, error)
	// CreateIfAbsent inserts settings unless the vendor already has a row
	CreateIfAbsent(ctx context.Context, settings *entity.InvoiceSettings) error
	Update(ctx context.Context, settings *entity.InvoiceSettings) error
}
