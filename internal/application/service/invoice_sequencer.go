package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/config"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/apperror"
)

// InvoiceNumber is a number handed out by the sequencer but not yet reserved
type InvoiceNumber struct {
	FullNumber  string
	NumericPart int64
	Prefix      string
	Template    string
	width       int
}

// WithPrefix formats the numeric part under another prefix, keeping the padding
func (n *InvoiceNumber) WithPrefix(prefix string) string {
	return fmt.Sprintf("%s%0*d", prefix, n.width, n.NumericPart)
}

// InvoiceSequencer issues gap-free invoice numbers per vendor
type InvoiceSequencer struct {
	tx           repository.Transactor
	settingsRepo repository.InvoiceSettingsRepository
	defaults     config.BillingConfig
}

// NewInvoiceSequencer creates a new invoice sequencer
func NewInvoiceSequencer(tx repository.Transactor, settingsRepo repository.InvoiceSettingsRepository, defaults config.BillingConfig) *InvoiceSequencer {
	return &InvoiceSequencer{tx: tx, settingsRepo: settingsRepo, defaults: defaults}
}

// load returns the vendor's settings, creating the defaults on first access
func (s *InvoiceSequencer) load(ctx context.Context, vendorID uuid.UUID, lock bool) (*entity.InvoiceSettings, error) {
	get := s.settingsRepo.GetByVendor
	if lock {
		get = s.settingsRepo.LockByVendor
	}

	settings, err := get(ctx, vendorID)
	if err != nil || settings != nil {
		return settings, err
	}

	if err := s.settingsRepo.CreateIfAbsent(ctx, &entity.InvoiceSettings{
		VendorID:        vendorID,
		Prefix:          s.defaults.InvoicePrefix,
		StartCount:      s.defaults.InvoiceStartCount,
		CurrentCount:    s.defaults.InvoiceStartCount,
		InvoiceTemplate: s.defaults.InvoiceTemplate,
	}); err != nil {
		return nil, err
	}

	settings, err = get(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, fmt.Errorf("invoice settings missing for vendor %s after create", vendorID)
	}
	return settings, nil
}

// Next returns the number the next bill should carry. The settings row is locked,
// so inside a transaction it stays reserved for the caller until commit.
func (s *InvoiceSequencer) Next(ctx context.Context, vendorID uuid.UUID, requested *int64) (*InvoiceNumber, error) {
	settings, err := s.load(ctx, vendorID, true)
	if err != nil {
		return nil, err
	}

	expected := settings.NextNumber()
	n := expected
	if requested != nil {
		switch {
		case *requested <= 0:
			return nil, apperror.ErrInvalidInvoiceNumber
		case settings.IsUsed(*requested):
			return nil, apperror.ErrInvoiceNumberAlreadyUsed
		case *requested != expected:
			return nil, apperror.NonSequentialInvoiceNumber(expected)
		}
		n = *requested
	}

	full := settings.Format(settings.Prefix, n)
	return &InvoiceNumber{
		FullNumber:  full,
		NumericPart: n,
		Prefix:      settings.Prefix,
		Template:    settings.InvoiceTemplate,
		width:       len(full) - len(settings.Prefix),
	}, nil
}

// Reserve marks n as issued. It joins the caller's transaction when there is one.
func (s *InvoiceSequencer) Reserve(ctx context.Context, vendorID uuid.UUID, n int64) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		settings, err := s.load(ctx, vendorID, true)
		if err != nil {
			return err
		}
		if settings.IsUsed(n) {
			return apperror.ErrInvoiceNumberAlreadyUsed
		}
		settings.MarkUsed(n)
		return s.settingsRepo.Update(ctx, settings)
	})
}

// GetSettings returns the vendor's invoice settings
func (s *InvoiceSequencer) GetSettings(ctx context.Context, vendorID uuid.UUID) (*entity.InvoiceSettings, error) {
	return s.load(ctx, vendorID, false)
}

// UpdateSettingsInput represents the invoice settings update input
type UpdateSettingsInput struct {
	Prefix          *string
	StartCount      *int64
	InvoiceTemplate *string
}

// UpdateSettings changes the vendor's numbering. A new start count restarts
// numbering from that value and forgets every issued number.
func (s *InvoiceSequencer) UpdateSettings(ctx context.Context, vendorID uuid.UUID, input *UpdateSettingsInput) (*entity.InvoiceSettings, error) {
	if input.StartCount != nil && *input.StartCount <= 0 {
		return nil, apperror.NewFieldError("start_count", "start_count must be a positive integer")
	}
	if input.Prefix != nil && *input.Prefix == "" {
		return nil, apperror.NewFieldError("prefix", "prefix cannot be empty")
	}

	var settings *entity.InvoiceSettings
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		settings, err = s.load(ctx, vendorID, true)
		if err != nil {
			return err
		}

		if input.Prefix != nil {
			settings.Prefix = *input.Prefix
		}
		if input.InvoiceTemplate != nil {
			settings.InvoiceTemplate = *input.InvoiceTemplate
		}
		if input.StartCount != nil && *input.StartCount != settings.StartCount {
			settings.ResetStart(*input.StartCount)
		}
		return s.settingsRepo.Update(ctx, settings)
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}
