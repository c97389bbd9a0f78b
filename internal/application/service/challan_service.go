package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/sangkips/billbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ChallanService handles delivery challans and their payments
type ChallanService struct {
	tx           repository.Transactor
	vendorRepo   repository.VendorRepository
	customerRepo repository.CustomerRepository
	challanRepo  repository.ChallanRepository
	txnRepo      repository.TransactionRepository
	gstSlabRepo  repository.GstSlabRepository
	prefix       string
}

// NewChallanService creates a new challan service
func NewChallanService(
	tx repository.Transactor,
	vendorRepo repository.VendorRepository,
	customerRepo repository.CustomerRepository,
	challanRepo repository.ChallanRepository,
	txnRepo repository.TransactionRepository,
	gstSlabRepo repository.GstSlabRepository,
	prefix string,
) *ChallanService {
	return &ChallanService{
		tx:           tx,
		vendorRepo:   vendorRepo,
		customerRepo: customerRepo,
		challanRepo:  challanRepo,
		txnRepo:      txnRepo,
		gstSlabRepo:  gstSlabRepo,
		prefix:       prefix,
	}
}

// ChallanItemInput is one line of a new challan. GstSlabID is used when GstPercent is absent.
type ChallanItemInput struct {
	ProductName  string
	Qty          decimal.Decimal
	PricePerUnit decimal.Decimal
	GstPercent   *decimal.Decimal
	GstSlabID    *uuid.UUID
}

// CreateChallanInput represents the create challan input
type CreateChallanInput struct {
	CustomerID  uuid.UUID
	ChallanDate *time.Time
	Items       []ChallanItemInput
	Note        *string
}

// CreateChallan numbers, prices and stores a new challan
func (s *ChallanService) CreateChallan(ctx context.Context, vendorID uuid.UUID, input *CreateChallanInput) (*entity.Challan, error) {
	if err := validateChallanItems(input.Items); err != nil {
		return nil, err
	}

	date := dateOnly(time.Now())
	if input.ChallanDate != nil {
		date = dateOnly(*input.ChallanDate)
	}

	var challan *entity.Challan
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// The vendor row lock serializes numbering for this vendor
		vendor, err := s.vendorRepo.LockByID(ctx, vendorID)
		if err != nil {
			return err
		}
		if vendor == nil {
			return apperror.NewNotFoundError("Vendor")
		}

		customer, err := s.customerRepo.GetByID(ctx, vendorID, input.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return apperror.NewNotFoundError("Customer")
		}

		items, err := s.priceItems(ctx, vendorID, input.Items)
		if err != nil {
			return err
		}

		dayPrefix := entity.ChallanNumberPrefix(s.prefix, date)
		last, err := s.challanRepo.LastNumberWithPrefix(ctx, vendorID, dayPrefix)
		if err != nil {
			return err
		}

		challan = &entity.Challan{
			VendorID:      vendorID,
			CustomerID:    customer.ID,
			ChallanNumber: entity.NextChallanNumber(dayPrefix, last),
			ChallanDate:   date,
			Status:        enum.ChallanStatusUnpaid,
			Note:          input.Note,
			Items:         items,
		}
		challan.ComputeTotals()

		if err := s.challanRepo.Create(ctx, challan); err != nil {
			return err
		}
		challan.Customer = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return challan, nil
}

func validateChallanItems(items []ChallanItemInput) error {
	if len(items) == 0 {
		return apperror.NewFieldError("items", "at least one item is required")
	}
	var fieldErrors []apperror.FieldError
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ProductName == "" {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".product_name", Message: "product_name is required"})
		}
		if !item.Qty.IsPositive() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".qty", Message: "qty must be greater than zero"})
		}
		if item.PricePerUnit.IsNegative() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".price_per_unit", Message: "price_per_unit cannot be negative"})
		}
		if item.GstPercent != nil && (item.GstPercent.IsNegative() || item.GstPercent.GreaterThan(decimal.NewFromInt(100))) {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".gst_percent", Message: "gst_percent must be between 0 and 100"})
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// priceItems resolves each line's GST rate and computes its amounts
func (s *ChallanService) priceItems(ctx context.Context, vendorID uuid.UUID, inputs []ChallanItemInput) ([]entity.ChallanItem, error) {
	var defaultRate *decimal.Decimal
	items := make([]entity.ChallanItem, 0, len(inputs))

	for i, in := range inputs {
		var rate decimal.Decimal
		switch {
		case in.GstPercent != nil:
			rate = *in.GstPercent
		case in.GstSlabID != nil:
			slab, err := s.gstSlabRepo.GetByID(ctx, vendorID, *in.GstSlabID)
			if err != nil {
				return nil, err
			}
			if slab == nil {
				return nil, apperror.NewNotFoundError("GST slab")
			}
			rate = slab.Rate
		default:
			if defaultRate == nil {
				slab, err := s.gstSlabRepo.GetDefault(ctx, vendorID)
				if err != nil {
					return nil, err
				}
				r := decimal.Zero
				if slab != nil {
					r = slab.Rate
				}
				defaultRate = &r
			}
			rate = *defaultRate
		}
		items = append(items, entity.NewChallanItem(i, in.ProductName, in.Qty, in.PricePerUnit, rate))
	}
	return items, nil
}

// MarkChallanPaidInput represents a payment recorded against a challan
type MarkChallanPaidInput struct {
	Amount          decimal.Decimal
	Note            *string
	TransactionDate *time.Time
}

// MarkChallanPaid records a payment and re-derives paid, due and status from the full payment history
func (s *ChallanService) MarkChallanPaid(ctx context.Context, vendorID, challanID uuid.UUID, input *MarkChallanPaidInput) (*entity.Challan, error) {
	if !input.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount
	}
	txnDate := time.Now()
	if input.TransactionDate != nil {
		txnDate = *input.TransactionDate
	}

	var challan *entity.Challan
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		challan, err = s.challanRepo.LockByID(ctx, vendorID, challanID)
		if err != nil {
			return err
		}
		if challan == nil {
			return apperror.NewNotFoundError("Challan")
		}
		if challan.Status == enum.ChallanStatusCancelled {
			return apperror.NewStateError("Cannot record a payment against a cancelled challan")
		}

		customerID := challan.CustomerID
		number := challan.ChallanNumber
		if err := s.txnRepo.Create(ctx, &entity.Transaction{
			VendorID:        vendorID,
			CustomerID:      &customerID,
			Amount:          input.Amount,
			Type:            enum.TransactionTypePayment,
			TransactionDate: txnDate,
			ChallanNumber:   &number,
			Note:            input.Note,
		}); err != nil {
			return err
		}

		return s.reconcileLocked(ctx, challan)
	})
	if err != nil {
		return nil, err
	}
	return challan, nil
}

// reconcileLocked recomputes paid-to-date for a challan the caller holds locked
func (s *ChallanService) reconcileLocked(ctx context.Context, challan *entity.Challan) error {
	paid, err := s.txnRepo.SumPaymentsByChallan(ctx, challan.VendorID, challan.ChallanNumber)
	if err != nil {
		return err
	}
	challan.ApplyPaidToDate(paid)
	return s.challanRepo.Update(ctx, challan)
}

// GetChallan retrieves a challan without touching it
func (s *ChallanService) GetChallan(ctx context.Context, vendorID, id uuid.UUID) (*entity.Challan, error) {
	challan, err := s.challanRepo.GetByID(ctx, vendorID, id)
	if err != nil {
		return nil, err
	}
	if challan == nil {
		return nil, apperror.NewNotFoundError("Challan")
	}
	return challan, nil
}

// ReconcileChallan re-derives paid, due and status from the ledger, persists them and
// returns the challan. Running it again without new payments changes nothing.
func (s *ChallanService) ReconcileChallan(ctx context.Context, vendorID, id uuid.UUID) (*entity.Challan, error) {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		challan, err := s.challanRepo.LockByID(ctx, vendorID, id)
		if err != nil {
			return err
		}
		if challan == nil {
			return apperror.NewNotFoundError("Challan")
		}
		return s.reconcileLocked(ctx, challan)
	})
	if err != nil {
		return nil, err
	}
	return s.GetChallan(ctx, vendorID, id)
}

// ListChallans lists challans matching the filter
func (s *ChallanService) ListChallans(ctx context.Context, filter repository.ChallanFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Challan], error) {
	challans, total, err := s.challanRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(challans, pag), nil
}

// CancelChallan cancels a challan that has not been billed
func (s *ChallanService) CancelChallan(ctx context.Context, vendorID, id uuid.UUID) (*entity.Challan, error) {
	var challan *entity.Challan
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		challan, err = s.challanRepo.LockByID(ctx, vendorID, id)
		if err != nil {
			return err
		}
		if challan == nil {
			return apperror.NewNotFoundError("Challan")
		}
		switch challan.Status {
		case enum.ChallanStatusCancelled:
			return nil
		case enum.ChallanStatusBilled:
			return apperror.NewStateError("Challan %s is billed and cannot be cancelled", challan.ChallanNumber)
		}
		challan.Status = enum.ChallanStatusCancelled
		return s.challanRepo.Update(ctx, challan)
	})
	if err != nil {
		return nil, err
	}
	return challan, nil
}

// DeleteChallan soft-deletes a challan that has not been billed
func (s *ChallanService) DeleteChallan(ctx context.Context, vendorID, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		challan, err := s.challanRepo.LockByID(ctx, vendorID, id)
		if err != nil {
			return err
		}
		if challan == nil {
			return apperror.NewNotFoundError("Challan")
		}
		if challan.Status == enum.ChallanStatusBilled {
			return apperror.NewStateError("Challan %s is billed and cannot be deleted", challan.ChallanNumber)
		}
		return s.challanRepo.Delete(ctx, vendorID, id)
	})
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
