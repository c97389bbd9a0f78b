package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/pkg/money"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bill is a customer invoice, built from challans or ad-hoc items.
// GST is applied once on the discounted subtotal, not per line as on challans.
type Bill struct {
	ID              uuid.UUID                      `gorm:"type:uuid;primary_key" json:"id"`
	VendorID        uuid.UUID                      `gorm:"type:uuid;not null;index;uniqueIndex:idx_bills_vendor_number" json:"vendor_id"`
	CustomerID      uuid.UUID                      `gorm:"type:uuid;not null;index" json:"customer_id"`
	BillNumber      string                         `gorm:"size:50;not null;uniqueIndex:idx_bills_vendor_number" json:"bill_number"`
	InvoicePrefix   string                         `gorm:"size:20;not null" json:"invoice_prefix"`
	NumericPart     int64                          `gorm:"not null" json:"numeric_part"`
	BillDate        time.Time                      `gorm:"type:date;not null;index" json:"bill_date"`
	Subtotal        decimal.Decimal                `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	DiscountPercent decimal.Decimal                `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	DiscountAmount  decimal.Decimal                `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	GstPercent      decimal.Decimal                `gorm:"type:decimal(5,2);not null;default:0" json:"gst_percent"`
	GstTotal        decimal.Decimal                `gorm:"type:decimal(12,2);not null;default:0" json:"gst_total"`
	TotalWithoutGST decimal.Decimal                `gorm:"type:decimal(12,2);not null;default:0;column:total_without_gst" json:"total_without_gst"`
	TotalWithGST    decimal.Decimal                `gorm:"type:decimal(12,2);not null;default:0;column:total_with_gst" json:"total_with_gst"`
	PaidAmount      decimal.Decimal                `gorm:"type:decimal(12,2);not null;default:0" json:"paid_amount"`
	PendingAmount   decimal.Decimal                `gorm:"type:decimal(12,2);not null;default:0" json:"pending_amount"`
	Status          enum.BillStatus                `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ChallanIDs      datatypes.JSONSlice[uuid.UUID] `gorm:"column:challan_ids;type:jsonb" json:"challan_ids"`
	InvoiceTemplate string                         `gorm:"size:50" json:"invoice_template"`
	Note            *string                        `gorm:"type:text" json:"note,omitempty"`
	CreatedAt       time.Time                      `json:"created_at"`
	UpdatedAt       time.Time                      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt                 `gorm:"index" json:"-"`

	// Relationships
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []BillItem `gorm:"foreignKey:BillID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// Recalculate derives every total from the bill items and the bill-level percentages,
// then re-settles against the existing paid amount.
func (b *Bill) Recalculate() {
	subtotal := decimal.Zero
	for _, item := range b.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	b.Subtotal = subtotal
	b.DiscountAmount = money.Percent(subtotal, b.DiscountPercent)
	b.TotalWithoutGST = subtotal.Sub(b.DiscountAmount)
	b.GstTotal = money.Percent(b.TotalWithoutGST, b.GstPercent)
	b.TotalWithGST = b.TotalWithoutGST.Add(b.GstTotal)
	b.Settle()
}

// Settle re-derives pending amount and status from total and paid
func (b *Bill) Settle() {
	b.PendingAmount = money.FloorZero(b.TotalWithGST.Sub(b.PaidAmount))
	if b.Status == enum.BillStatusCancelled {
		return
	}
	switch {
	case money.Settled(b.PendingAmount):
		b.Status = enum.BillStatusPaid
	case b.PaidAmount.IsPositive():
		b.Status = enum.BillStatusPartial
	default:
		b.Status = enum.BillStatusPending
	}
}

// ApplyPayment adds amount to the paid total. Paid never decreases on this path.
func (b *Bill) ApplyPayment(amount decimal.Decimal) {
	b.PaidAmount = b.PaidAmount.Add(amount)
	b.Settle()
}

// ReversePayment removes a previously applied amount, clamping paid at zero
func (b *Bill) ReversePayment(amount decimal.Decimal) {
	b.PaidAmount = money.FloorZero(b.PaidAmount.Sub(amount))
	b.Settle()
}

// Renumber rebuilds the bill number under a new prefix, keeping the issued numeric part and its padding
func (b *Bill) Renumber(prefix string) {
	width := len(b.BillNumber) - len(b.InvoicePrefix)
	b.BillNumber = fmt.Sprintf("%s%0*d", prefix, width, b.NumericPart)
	b.InvoicePrefix = prefix
}

// BillItem is one line of a bill. Amount is carried over from the source challan item when there is one.
type BillItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	ChallanItemID *uuid.UUID      `gorm:"type:uuid;index" json:"challan_item_id,omitempty"`
	Position      int             `gorm:"not null;default:0" json:"position"`
	Description   string          `gorm:"size:255;not null" json:"description"`
	Qty           decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"qty"`
	Rate          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rate"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	GstPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"gst_percent"`
	TotalWithGst  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_with_gst"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BillItemFromChallan copies a priced challan line without re-deriving its amount
func BillItemFromChallan(position int, ci ChallanItem) BillItem {
	id := ci.ID
	return BillItem{
		ChallanItemID: &id,
		Position:      position,
		Description:   ci.ProductName,
		Qty:           ci.Qty,
		Rate:          ci.PricePerUnit,
		Amount:        ci.Amount,
		GstPercent:    ci.GstPercent,
		TotalWithGst:  ci.TotalWithGst,
	}
}

// NewBillItem prices an ad-hoc line at the bill's GST rate
func NewBillItem(position int, description string, qty, rate, gstPercent decimal.Decimal) BillItem {
	amount := money.Round2(qty.Mul(rate))
	return BillItem{
		Position:     position,
		Description:  description,
		Qty:          qty,
		Rate:         rate,
		Amount:       amount,
		GstPercent:   gstPercent,
		TotalWithGst: amount.Add(money.Percent(amount, gstPercent)),
	}
}

// BeforeCreate generates a UUID before creating a new bill item
func (bi *BillItem) BeforeCreate(tx *gorm.DB) error {
	if bi.ID == uuid.Nil {
		bi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}
