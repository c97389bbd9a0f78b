package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a ledger entry written as a side effect of payments.
// Challan paid-to-date is summed from payment-type rows linked by challan number.
type Transaction struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	VendorID        uuid.UUID            `gorm:"type:uuid;not null;index" json:"vendor_id"`
	CustomerID      *uuid.UUID           `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Amount          decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"amount"`
	Type            enum.TransactionType `gorm:"size:20;not null;index" json:"type"`
	TransactionDate time.Time            `gorm:"not null;index" json:"transaction_date"`
	ChallanNumber   *string              `gorm:"size:50;index" json:"challan_number,omitempty"`
	BillID          *uuid.UUID           `gorm:"type:uuid;index" json:"bill_id,omitempty"`
	PaymentID       *uuid.UUID           `gorm:"type:uuid;index" json:"payment_id,omitempty"`
	Note            *string              `gorm:"type:text" json:"note,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	DeletedAt       gorm.DeletedAt       `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
