package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdjustedInvoice allocates part of a credit payment to one bill
type AdjustedInvoice struct {
	BillID    uuid.UUID       `json:"bill_id"`
	PayAmount decimal.Decimal `json:"pay_amount"`
}

// Payment records money moving in (credit) or out (debit) of a vendor's books.
// TotalOutstanding and OutstandingAfterPayment are point-in-time snapshots.
type Payment struct {
	ID                      uuid.UUID                            `gorm:"type:uuid;primary_key" json:"id"`
	VendorID                uuid.UUID                            `gorm:"type:uuid;not null;index;uniqueIndex:idx_payments_opening_balance,where:is_opening_balance = true AND deleted_at IS NULL" json:"vendor_id"`
	CustomerID              *uuid.UUID                           `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Type                    enum.PaymentType                     `gorm:"size:10;not null;index" json:"type"`
	SubType                 enum.PaymentSubType                  `gorm:"size:30;not null;index" json:"sub_type"`
	Amount                  decimal.Decimal                      `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`
	Method                  enum.PaymentMethod                   `gorm:"size:20;not null;default:'cash';uniqueIndex:idx_payments_opening_balance,where:is_opening_balance = true AND deleted_at IS NULL" json:"method"`
	Status                  enum.PaymentStatus                   `gorm:"size:20;not null;default:'completed';index" json:"status"`
	BillID                  *uuid.UUID                           `gorm:"type:uuid;index" json:"bill_id,omitempty"`
	ChallanID               *uuid.UUID                           `gorm:"type:uuid;index" json:"challan_id,omitempty"`
	AdjustedInvoices        datatypes.JSONSlice[AdjustedInvoice] `gorm:"type:jsonb" json:"adjusted_invoices"`
	TotalOutstanding        decimal.Decimal                      `gorm:"type:decimal(12,2);not null;default:0" json:"total_outstanding"`
	OutstandingAfterPayment decimal.Decimal                      `gorm:"type:decimal(12,2);not null;default:0" json:"outstanding_after_payment"`
	IsOpeningBalance        bool                                 `gorm:"not null;default:false" json:"is_opening_balance"`
	OpeningBalance          decimal.Decimal                      `gorm:"type:decimal(12,2);not null;default:0" json:"opening_balance"`
	FinancialYear           string                               `gorm:"size:7;not null;index;uniqueIndex:idx_payments_opening_balance,where:is_opening_balance = true AND deleted_at IS NULL" json:"financial_year"`
	PaymentDate             time.Time                            `gorm:"type:date;not null;index" json:"payment_date"`
	Reference               *string                              `gorm:"size:100" json:"reference,omitempty"`
	Note                    *string                              `gorm:"type:text" json:"note,omitempty"`
	CreatedAt               time.Time                            `json:"created_at"`
	UpdatedAt               time.Time                            `json:"updated_at"`
	DeletedAt               gorm.DeletedAt                       `gorm:"index" json:"-"`

	// Relationships
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// IsCustomerPayment reports whether the payment moves a customer's balance
func (p *Payment) IsCustomerPayment() bool {
	return p.SubType == enum.PaymentSubTypeCustomer
}

// HasAllocations reports whether a credit payment was applied against bills
func (p *Payment) HasAllocations() bool {
	return p.Type == enum.PaymentTypeCredit && len(p.AdjustedInvoices) > 0
}

// OutstandingEffect is how much the payment changes the customer's outstanding
func (p *Payment) OutstandingEffect(amount decimal.Decimal) decimal.Decimal {
	if p.Type == enum.PaymentTypeDebit {
		return amount
	}
	return amount.Neg()
}

// FinancialYearOf labels the April-to-March year containing t, e.g. "2026-27"
func FinancialYearOf(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}
