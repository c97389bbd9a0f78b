package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/sangkips/billbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var hundred = decimal.NewFromInt(100)

// BillService handles invoices built from challans or ad-hoc items
type BillService struct {
	tx           repository.Transactor
	sequencer    *InvoiceSequencer
	customerRepo repository.CustomerRepository
	challanRepo  repository.ChallanRepository
	billRepo     repository.BillRepository
	txnRepo      repository.TransactionRepository
}

// NewBillService creates a new bill service
func NewBillService(
	tx repository.Transactor,
	sequencer *InvoiceSequencer,
	customerRepo repository.CustomerRepository,
	challanRepo repository.ChallanRepository,
	billRepo repository.BillRepository,
	txnRepo repository.TransactionRepository,
) *BillService {
	return &BillService{
		tx:           tx,
		sequencer:    sequencer,
		customerRepo: customerRepo,
		challanRepo:  challanRepo,
		billRepo:     billRepo,
		txnRepo:      txnRepo,
	}
}

// BillItemInput is an ad-hoc bill line
type BillItemInput struct {
	Description string
	Qty         decimal.Decimal
	Rate        decimal.Decimal
}

// CreateBillInput represents the create bill input
type CreateBillInput struct {
	CustomerID          uuid.UUID
	ChallanIDs          []uuid.UUID
	Items               []BillItemInput
	BillDate            *time.Time
	DiscountPercent     decimal.Decimal
	GstPercent          decimal.Decimal
	CustomInvoicePrefix *string
	InvoiceNumber       *int64
	InvoiceTemplate     *string
	Note                *string
}

func validatePercent(field string, p decimal.Decimal) *apperror.FieldError {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return &apperror.FieldError{Field: field, Message: field + " must be between 0 and 100"}
	}
	return nil
}

func validateBillPercents(discount, gst *decimal.Decimal) error {
	var fieldErrors []apperror.FieldError
	if discount != nil {
		if fe := validatePercent("discount_percent", *discount); fe != nil {
			fieldErrors = append(fieldErrors, *fe)
		}
	}
	if gst != nil {
		if fe := validatePercent("gst_percent", *gst); fe != nil {
			fieldErrors = append(fieldErrors, *fe)
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// CreateBill builds a bill, marks its challans billed and reserves its number, all in one transaction
func (s *BillService) CreateBill(ctx context.Context, vendorID uuid.UUID, input *CreateBillInput) (*entity.Bill, error) {
	if err := validateBillPercents(&input.DiscountPercent, &input.GstPercent); err != nil {
		return nil, err
	}
	if len(input.ChallanIDs) == 0 && len(input.Items) == 0 {
		return nil, apperror.ErrNoValidChallans
	}

	billDate := dateOnly(time.Now())
	if input.BillDate != nil {
		billDate = dateOnly(*input.BillDate)
	}

	var bill *entity.Bill
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.customerRepo.GetByID(ctx, vendorID, input.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return apperror.NewNotFoundError("Customer")
		}

		number, err := s.sequencer.Next(ctx, vendorID, input.InvoiceNumber)
		if err != nil {
			return err
		}

		var items []entity.BillItem
		var challanIDs []uuid.UUID
		if len(input.ChallanIDs) > 0 {
			items, challanIDs, err = s.itemsFromChallans(ctx, vendorID, customer.ID, input.ChallanIDs)
			if err != nil {
				return err
			}
		} else {
			items, err = adHocItems(input.Items, input.GstPercent)
			if err != nil {
				return err
			}
		}

		prefix := lo.FromPtrOr(input.CustomInvoicePrefix, number.Prefix)
		bill = &entity.Bill{
			VendorID:        vendorID,
			CustomerID:      customer.ID,
			BillNumber:      number.WithPrefix(prefix),
			InvoicePrefix:   prefix,
			NumericPart:     number.NumericPart,
			BillDate:        billDate,
			DiscountPercent: input.DiscountPercent,
			GstPercent:      input.GstPercent,
			PaidAmount:      decimal.Zero,
			Status:          enum.BillStatusPending,
			ChallanIDs:      datatypes.JSONSlice[uuid.UUID](challanIDs),
			InvoiceTemplate: lo.FromPtrOr(input.InvoiceTemplate, number.Template),
			Note:            input.Note,
			Items:           items,
		}
		bill.Recalculate()

		if err := s.billRepo.Create(ctx, bill); err != nil {
			return err
		}
		billID := bill.ID
		if err := s.challanRepo.SetStatus(ctx, vendorID, challanIDs, enum.ChallanStatusBilled, &billID); err != nil {
			return err
		}
		if err := s.sequencer.Reserve(ctx, vendorID, number.NumericPart); err != nil {
			return err
		}
		bill.Customer = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// itemsFromChallans copies the lines of every billable challan among ids
func (s *BillService) itemsFromChallans(ctx context.Context, vendorID, customerID uuid.UUID, ids []uuid.UUID) ([]entity.BillItem, []uuid.UUID, error) {
	challans, err := s.challanRepo.LockForBilling(ctx, vendorID, customerID, lo.Uniq(ids))
	if err != nil {
		return nil, nil, err
	}

	billable := lo.Filter(challans, func(c entity.Challan, _ int) bool {
		return c.Status.Billable()
	})
	if len(billable) == 0 {
		return nil, nil, apperror.ErrNoValidChallans
	}

	var items []entity.BillItem
	for _, c := range billable {
		for _, ci := range c.Items {
			items = append(items, entity.BillItemFromChallan(len(items), ci))
		}
	}
	ids = lo.Map(billable, func(c entity.Challan, _ int) uuid.UUID { return c.ID })
	return items, ids, nil
}

func adHocItems(inputs []BillItemInput, gstPercent decimal.Decimal) ([]entity.BillItem, error) {
	var fieldErrors []apperror.FieldError
	items := make([]entity.BillItem, 0, len(inputs))
	for i, in := range inputs {
		if in.Description == "" || !in.Qty.IsPositive() || in.Rate.IsNegative() {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d]", i),
				Message: "description, positive qty and non-negative rate are required",
			})
			continue
		}
		items = append(items, entity.NewBillItem(i, in.Description, in.Qty, in.Rate, gstPercent))
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}
	return items, nil
}

// EditBillInput represents the edit bill input. Nil fields are left unchanged.
type EditBillInput struct {
	DiscountPercent     *decimal.Decimal
	GstPercent          *decimal.Decimal
	CustomInvoicePrefix *string
	BillDate            *time.Time
	InvoiceTemplate     *string
	Note                *string
}

// EditBill updates a bill. Totals are recomputed from the stored items and the paid amount is kept.
func (s *BillService) EditBill(ctx context.Context, vendorID, id uuid.UUID, input *EditBillInput) (*entity.Bill, error) {
	if err := validateBillPercents(input.DiscountPercent, input.GstPercent); err != nil {
		return nil, err
	}
	if input.CustomInvoicePrefix != nil && *input.CustomInvoicePrefix == "" {
		return nil, apperror.NewFieldError("custom_invoice_prefix", "custom_invoice_prefix cannot be empty")
	}

	var bill *entity.Bill
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.lockBill(ctx, vendorID, id)
		if err != nil {
			return err
		}
		if bill.Status == enum.BillStatusCancelled {
			return apperror.NewStateError("Bill %s is cancelled and cannot be edited", bill.BillNumber)
		}

		if input.DiscountPercent != nil || input.GstPercent != nil {
			bill.DiscountPercent = lo.FromPtrOr(input.DiscountPercent, bill.DiscountPercent)
			bill.GstPercent = lo.FromPtrOr(input.GstPercent, bill.GstPercent)
			bill.Recalculate()
		}
		if input.CustomInvoicePrefix != nil && *input.CustomInvoicePrefix != bill.InvoicePrefix {
			bill.Renumber(*input.CustomInvoicePrefix)
		}
		if input.BillDate != nil {
			bill.BillDate = dateOnly(*input.BillDate)
		}
		if input.InvoiceTemplate != nil {
			bill.InvoiceTemplate = *input.InvoiceTemplate
		}
		if input.Note != nil {
			bill.Note = input.Note
		}
		return s.billRepo.Update(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// MarkBillPaid adds amount to the paid total, or settles the whole pending amount when amount is nil
func (s *BillService) MarkBillPaid(ctx context.Context, vendorID, id uuid.UUID, amount *decimal.Decimal) (*entity.Bill, error) {
	if amount != nil && !amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount
	}

	var bill *entity.Bill
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.lockBill(ctx, vendorID, id)
		if err != nil {
			return err
		}
		if bill.Status == enum.BillStatusCancelled {
			return apperror.NewStateError("Bill %s is cancelled", bill.BillNumber)
		}

		pay := lo.FromPtrOr(amount, bill.PendingAmount)
		if !pay.IsPositive() {
			return apperror.ErrInvalidAmount
		}
		bill.ApplyPayment(pay)
		if err := s.billRepo.Update(ctx, bill); err != nil {
			return err
		}

		billID := bill.ID
		customerID := bill.CustomerID
		return s.txnRepo.Create(ctx, &entity.Transaction{
			VendorID:        vendorID,
			CustomerID:      &customerID,
			Amount:          pay,
			Type:            enum.TransactionTypePayment,
			TransactionDate: time.Now(),
			BillID:          &billID,
		})
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// DeleteBill returns the bill's challans to unpaid and soft-deletes the bill.
// Bills with payments applied must have those payments deleted first.
func (s *BillService) DeleteBill(ctx context.Context, vendorID, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.lockBill(ctx, vendorID, id)
		if err != nil {
			return err
		}
		if bill.PaidAmount.IsPositive() {
			return apperror.NewStateError("Bill %s has payments and cannot be deleted", bill.BillNumber)
		}
		if err := s.challanRepo.SetStatus(ctx, vendorID, bill.ChallanIDs, enum.ChallanStatusUnpaid, nil); err != nil {
			return err
		}
		return s.billRepo.Delete(ctx, vendorID, id)
	})
}

// CancelBill cancels an unpaid bill and releases its challans
func (s *BillService) CancelBill(ctx context.Context, vendorID, id uuid.UUID) (*entity.Bill, error) {
	var bill *entity.Bill
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.lockBill(ctx, vendorID, id)
		if err != nil {
			return err
		}
		if bill.Status == enum.BillStatusCancelled {
			return nil
		}
		if bill.PaidAmount.IsPositive() {
			return apperror.NewStateError("Bill %s has payments and cannot be cancelled", bill.BillNumber)
		}

		bill.Status = enum.BillStatusCancelled
		bill.Settle()
		if err := s.billRepo.Update(ctx, bill); err != nil {
			return err
		}
		return s.challanRepo.SetStatus(ctx, vendorID, bill.ChallanIDs, enum.ChallanStatusUnpaid, nil)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// GetBill retrieves a bill by ID
func (s *BillService) GetBill(ctx context.Context, vendorID, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, vendorID, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBills lists bills matching the filter
func (s *BillService) ListBills(ctx context.Context, filter repository.BillFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Bill], error) {
	bills, total, err := s.billRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(bills, pag), nil
}

func (s *BillService) lockBill(ctx context.Context, vendorID, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.LockByID(ctx, vendorID, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}
