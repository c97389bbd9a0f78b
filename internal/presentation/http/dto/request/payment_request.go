package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/sangkips/billbook-api/pkg/money"
	"github.com/shopspring/decimal"
)

// AdjustedInvoiceRequest allocates part of a payment to a bill
type AdjustedInvoiceRequest struct {
	BillID    uuid.UUID       `json:"bill_id" binding:"required"`
	PayAmount decimal.Decimal `json:"pay_amount"`
}

// CreatePaymentRequest represents a ledger payment
type CreatePaymentRequest struct {
	CustomerID       *uuid.UUID               `json:"customer_id"`
	Type             string                   `json:"type" binding:"required,oneof=credit debit"`
	SubType          string                   `json:"sub_type" binding:"required,payment_subtype"`
	Amount           decimal.Decimal          `json:"amount"`
	Method           string                   `json:"method" binding:"omitempty,payment_method"`
	Status           string                   `json:"status" binding:"omitempty,oneof=completed pending failed"`
	BillID           *uuid.UUID               `json:"bill_id"`
	ChallanID        *uuid.UUID               `json:"challan_id"`
	AdjustedInvoices []AdjustedInvoiceRequest `json:"adjusted_invoices" binding:"omitempty,dive"`
	PaymentDate      *time.Time               `json:"payment_date"`
	Reference        *string                  `json:"reference" binding:"omitempty,max=100"`
	Note             *string                  `json:"note" binding:"omitempty,max=1000"`
}

// Allocations returns the bill allocations after checking they add up to the payment amount
func (r *CreatePaymentRequest) Allocations() ([]entity.AdjustedInvoice, error) {
	if len(r.AdjustedInvoices) == 0 {
		return nil, nil
	}

	var fieldErrors []apperror.FieldError
	seen := make(map[uuid.UUID]bool, len(r.AdjustedInvoices))
	for _, a := range r.AdjustedInvoices {
		if !a.PayAmount.IsPositive() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "adjusted_invoices.pay_amount", Message: "pay_amount must be greater than zero"})
		}
		if seen[a.BillID] {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "adjusted_invoices.bill_id", Message: "a bill may appear only once"})
		}
		seen[a.BillID] = true
	}

	allocs := lo.Map(r.AdjustedInvoices, func(a AdjustedInvoiceRequest, _ int) entity.AdjustedInvoice {
		return entity.AdjustedInvoice{BillID: a.BillID, PayAmount: a.PayAmount}
	})
	total := money.Sum(lo.Map(allocs, func(a entity.AdjustedInvoice, _ int) decimal.Decimal { return a.PayAmount })...)
	if !money.Equal(total, r.Amount) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "adjusted_invoices", Message: "allocations must add up to the payment amount"})
	}

	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors).WithDetail("allocated", total.String())
	}
	return allocs, nil
}

// UpdatePaymentRequest represents a partial payment update
type UpdatePaymentRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Method      *string          `json:"method" binding:"omitempty,payment_method"`
	Status      *string          `json:"status" binding:"omitempty,oneof=completed pending failed"`
	PaymentDate *time.Time       `json:"payment_date"`
	Reference   *string          `json:"reference" binding:"omitempty,max=100"`
	Note        *string          `json:"note" binding:"omitempty,max=1000"`
}

// OpeningBalanceRequest records the opening balance of a payment method
type OpeningBalanceRequest struct {
	Method         string          `json:"method" binding:"required,payment_method"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Date           *time.Time      `json:"date"`
	Note           *string         `json:"note" binding:"omitempty,max=1000"`
}
