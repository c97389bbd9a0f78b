package service

import (
	"context"
	"errors"
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

// PaymentService records money movement and applies credits against bills
type PaymentService struct {
	tx           repository.Transactor
	customerRepo repository.CustomerRepository
	billRepo     repository.BillRepository
	paymentRepo  repository.PaymentRepository
	txnRepo      repository.TransactionRepository
	outstanding  *OutstandingService
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	tx repository.Transactor,
	customerRepo repository.CustomerRepository,
	billRepo repository.BillRepository,
	paymentRepo repository.PaymentRepository,
	txnRepo repository.TransactionRepository,
	outstanding *OutstandingService,
) *PaymentService {
	return &PaymentService{
		tx:           tx,
		customerRepo: customerRepo,
		billRepo:     billRepo,
		paymentRepo:  paymentRepo,
		txnRepo:      txnRepo,
		outstanding:  outstanding,
	}
}

// CreatePaymentInput represents the create payment input.
// AdjustedInvoices must already sum to Amount.
type CreatePaymentInput struct {
	CustomerID       *uuid.UUID
	Type             enum.PaymentType
	SubType          enum.PaymentSubType
	Amount           decimal.Decimal
	Method           enum.PaymentMethod
	Status           enum.PaymentStatus
	BillID           *uuid.UUID
	ChallanID        *uuid.UUID
	AdjustedInvoices []entity.AdjustedInvoice
	PaymentDate      *time.Time
	Reference        *string
	Note             *string
}

func validatePaymentInput(input *CreatePaymentInput) error {
	var fieldErrors []apperror.FieldError
	add := func(field, msg string) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: field, Message: msg})
	}

	if !input.Type.IsValid() {
		add("type", "type must be credit or debit")
	}
	if !input.SubType.IsValid() {
		add("sub_type", "unknown payment sub type")
	}
	if input.Method != "" && !input.Method.IsValid() {
		add("method", "unknown payment method")
	}
	if input.Status != "" && !input.Status.IsValid() {
		add("status", "unknown payment status")
	}
	if input.SubType == enum.PaymentSubTypeCustomer && input.CustomerID == nil {
		add("customer_id", "customer_id is required for customer payments")
	}
	if input.SubType != enum.PaymentSubTypeCustomer && input.CustomerID != nil {
		add("customer_id", "customer_id is only allowed for customer payments")
	}
	if len(input.AdjustedInvoices) > 0 && (input.Type != enum.PaymentTypeCredit || input.SubType != enum.PaymentSubTypeCustomer) {
		add("adjusted_invoices", "only customer credits can be adjusted against bills")
	}
	if len(input.AdjustedInvoices) > 0 && input.Status != "" && input.Status != enum.PaymentStatusCompleted {
		add("status", "payments adjusted against bills must be completed")
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	if !input.Amount.IsPositive() {
		return apperror.ErrInvalidAmount
	}
	return nil
}

// CreatePayment snapshots the customer's outstanding, stores the payment with its ledger mirror
// and applies any bill allocations, all in one transaction
func (s *PaymentService) CreatePayment(ctx context.Context, vendorID uuid.UUID, input *CreatePaymentInput) (*entity.Payment, error) {
	if err := validatePaymentInput(input); err != nil {
		return nil, err
	}

	date := time.Now()
	if input.PaymentDate != nil {
		date = *input.PaymentDate
	}
	payment := &entity.Payment{
		VendorID:         vendorID,
		CustomerID:       input.CustomerID,
		Type:             input.Type,
		SubType:          input.SubType,
		Amount:           input.Amount,
		Method:           lo.Ternary(input.Method == "", enum.PaymentMethodCash, input.Method),
		Status:           lo.Ternary(input.Status == "", enum.PaymentStatusCompleted, input.Status),
		BillID:           input.BillID,
		ChallanID:        input.ChallanID,
		AdjustedInvoices: datatypes.JSONSlice[entity.AdjustedInvoice](input.AdjustedInvoices),
		FinancialYear:    entity.FinancialYearOf(date),
		PaymentDate:      dateOnly(date),
		Reference:        input.Reference,
		Note:             input.Note,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if payment.IsCustomerPayment() {
			customer, err := s.customerRepo.GetByID(ctx, vendorID, *payment.CustomerID)
			if err != nil {
				return err
			}
			if customer == nil {
				return apperror.NewNotFoundError("Customer")
			}

			total, err := s.outstanding.CustomerOutstanding(ctx, vendorID, customer.ID)
			if err != nil {
				return err
			}
			payment.TotalOutstanding = total
			payment.OutstandingAfterPayment = total.Add(payment.OutstandingEffect(payment.Amount))
		}

		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		if payment.IsCustomerPayment() {
			if err := s.mirror(ctx, payment); err != nil {
				return err
			}
		}
		if payment.HasAllocations() {
			return s.applyAllocations(ctx, payment, false)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) mirror(ctx context.Context, payment *entity.Payment) error {
	paymentID := payment.ID
	return s.txnRepo.Create(ctx, &entity.Transaction{
		VendorID:        payment.VendorID,
		CustomerID:      payment.CustomerID,
		Amount:          payment.Amount,
		Type:            enum.TransactionType(payment.Type),
		TransactionDate: payment.PaymentDate,
		BillID:          payment.BillID,
		PaymentID:       &paymentID,
		Note:            payment.Note,
	})
}

// applyAllocations moves each allocated amount onto its bill, or back off it when reverse is set.
// Bills are locked in id order so concurrent payments touching the same bills cannot deadlock.
func (s *PaymentService) applyAllocations(ctx context.Context, payment *entity.Payment, reverse bool) error {
	perBill := make(map[uuid.UUID]decimal.Decimal)
	for _, alloc := range payment.AdjustedInvoices {
		perBill[alloc.BillID] = perBill[alloc.BillID].Add(alloc.PayAmount)
	}

	bills, err := s.billRepo.LockForCustomer(ctx, payment.VendorID, *payment.CustomerID, lo.Keys(perBill))
	if err != nil {
		return err
	}
	if len(bills) != len(perBill) {
		return apperror.NewNotFoundError("Bill")
	}

	for i := range bills {
		bill := &bills[i]
		amount := perBill[bill.ID]
		if reverse {
			bill.ReversePayment(amount)
		} else {
			if bill.Status == enum.BillStatusCancelled {
				return apperror.NewStateError("Bill %s is cancelled", bill.BillNumber)
			}
			bill.ApplyPayment(amount)
		}
		if err := s.billRepo.Update(ctx, bill); err != nil {
			return err
		}
	}
	return nil
}

// DeletePayment reverses the payment's bill allocations and soft-deletes it with its ledger mirror
func (s *PaymentService) DeletePayment(ctx context.Context, vendorID, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		payment, err := s.lockPayment(ctx, vendorID, id)
		if err != nil {
			return err
		}
		if payment.HasAllocations() {
			if err := s.applyAllocations(ctx, payment, true); err != nil {
				return err
			}
		}
		if err := s.paymentRepo.Delete(ctx, vendorID, id); err != nil {
			return err
		}
		return s.txnRepo.DeleteByPayment(ctx, vendorID, id)
	})
}

// UpdatePaymentInput represents the update payment input. Nil fields are left unchanged.
type UpdatePaymentInput struct {
	Amount      *decimal.Decimal
	Method      *enum.PaymentMethod
	Status      *enum.PaymentStatus
	PaymentDate *time.Time
	Reference   *string
	Note        *string
}

// UpdatePayment edits a payment. An amount change shifts the outstanding snapshot by the
// difference only; RefreshOutstanding recomputes it from live balances.
func (s *PaymentService) UpdatePayment(ctx context.Context, vendorID, id uuid.UUID, input *UpdatePaymentInput) (*entity.Payment, error) {
	if input.Amount != nil && !input.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount
	}
	if input.Method != nil && !input.Method.IsValid() {
		return nil, apperror.NewFieldError("method", "unknown payment method")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, apperror.NewFieldError("status", "unknown payment status")
	}

	var payment *entity.Payment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.lockPayment(ctx, vendorID, id)
		if err != nil {
			return err
		}
		if payment.IsOpeningBalance {
			return apperror.NewStateError("Opening balance payments cannot be edited")
		}

		amountChanged := input.Amount != nil && !input.Amount.Equal(payment.Amount)
		if payment.HasAllocations() {
			if amountChanged {
				return apperror.NewStateError("Amount of a payment adjusted against bills cannot change; delete and record it again")
			}
			if input.Status != nil && *input.Status != payment.Status {
				return apperror.NewStateError("Status of a payment adjusted against bills cannot change")
			}
		}

		if amountChanged {
			delta := input.Amount.Sub(payment.Amount)
			payment.Amount = *input.Amount
			if payment.IsCustomerPayment() {
				payment.OutstandingAfterPayment = payment.OutstandingAfterPayment.Add(payment.OutstandingEffect(delta))
				if err := s.txnRepo.UpdateAmountByPayment(ctx, vendorID, payment.ID, payment.Amount); err != nil {
					return err
				}
			}
		}
		if input.Method != nil {
			payment.Method = *input.Method
		}
		if input.Status != nil {
			payment.Status = *input.Status
		}
		if input.PaymentDate != nil {
			payment.PaymentDate = dateOnly(*input.PaymentDate)
			payment.FinancialYear = entity.FinancialYearOf(*input.PaymentDate)
		}
		if input.Reference != nil {
			payment.Reference = input.Reference
		}
		if input.Note != nil {
			payment.Note = input.Note
		}
		return s.paymentRepo.Update(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// RefreshOutstanding replaces the payment's after-payment snapshot with the live customer outstanding
func (s *PaymentService) RefreshOutstanding(ctx context.Context, vendorID, id uuid.UUID) (*entity.Payment, error) {
	var payment *entity.Payment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.lockPayment(ctx, vendorID, id)
		if err != nil {
			return err
		}
		if !payment.IsCustomerPayment() || payment.CustomerID == nil {
			return nil
		}
		live, err := s.outstanding.CustomerOutstanding(ctx, vendorID, *payment.CustomerID)
		if err != nil {
			return err
		}
		payment.OutstandingAfterPayment = live
		return s.paymentRepo.Update(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// OpeningBalanceInput represents an opening balance for one payment method
type OpeningBalanceInput struct {
	Method         enum.PaymentMethod
	OpeningBalance decimal.Decimal
	Date           *time.Time
	Note           *string
}

// CreateOpeningBalance records the balance a method starts the financial year with.
// There can be one per vendor, method and financial year.
func (s *PaymentService) CreateOpeningBalance(ctx context.Context, vendorID uuid.UUID, input *OpeningBalanceInput) (*entity.Payment, error) {
	if !input.Method.IsValid() {
		return nil, apperror.NewFieldError("method", "unknown payment method")
	}
	if input.OpeningBalance.IsNegative() {
		return nil, apperror.NewFieldError("opening_balance", "opening_balance cannot be negative")
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}
	payment := &entity.Payment{
		VendorID:         vendorID,
		Type:             enum.PaymentTypeCredit,
		SubType:          enum.PaymentSubTypeCashDeposit,
		Amount:           decimal.Zero,
		Method:           input.Method,
		Status:           enum.PaymentStatusCompleted,
		IsOpeningBalance: true,
		OpeningBalance:   input.OpeningBalance,
		FinancialYear:    entity.FinancialYearOf(date),
		PaymentDate:      dateOnly(date),
		Note:             input.Note,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.paymentRepo.ExistsOpeningBalance(ctx, vendorID, payment.Method, payment.FinancialYear)
		if err != nil {
			return err
		}
		if exists {
			return apperror.ErrDuplicateOpeningBalance
		}
		return s.paymentRepo.Create(ctx, payment)
	})
	if errors.Is(err, apperror.ErrDuplicate) {
		return nil, apperror.ErrDuplicateOpeningBalance
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// GetPayment retrieves a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, vendorID, id uuid.UUID) (*entity.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, vendorID, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}
	return payment, nil
}

// ListPayments lists payments matching the filter
func (s *PaymentService) ListPayments(ctx context.Context, filter repository.PaymentFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Payment], error) {
	payments, total, err := s.paymentRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(payments, pag), nil
}

// ListTransactions lists ledger entries matching the filter
func (s *PaymentService) ListTransactions(ctx context.Context, filter repository.TransactionFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Transaction], error) {
	txns, total, err := s.txnRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(txns, pag), nil
}

func (s *PaymentService) lockPayment(ctx context.Context, vendorID, id uuid.UUID) (*entity.Payment, error) {
	payment, err := s.paymentRepo.LockByID(ctx, vendorID, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}
	return payment, nil
}
