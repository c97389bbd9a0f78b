package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/pkg/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ChallanSequenceWidth is the zero-padded width of the daily challan counter
const ChallanSequenceWidth = 4

// Challan is a delivery note issued to a customer. Totals are derived from its items.
type Challan struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	VendorID        uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_challans_vendor_number" json:"vendor_id"`
	CustomerID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	ChallanNumber   string             `gorm:"size:50;not null;uniqueIndex:idx_challans_vendor_number" json:"challan_number"`
	ChallanDate     time.Time          `gorm:"type:date;not null;index" json:"challan_date"`
	Subtotal        decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	GstTotal        decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"gst_total"`
	TotalWithoutGST decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0;column:total_without_gst" json:"total_without_gst"`
	TotalWithGST    decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0;column:total_with_gst" json:"total_with_gst"`
	PaidAmount      decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"paid_amount"`
	DueAmount       decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"due_amount"`
	Status          enum.ChallanStatus `gorm:"size:20;not null;default:'unpaid';index" json:"status"`
	BillID          *uuid.UUID         `gorm:"type:uuid;index" json:"bill_id,omitempty"`
	Note            *string            `gorm:"type:text" json:"note,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []ChallanItem `gorm:"foreignKey:ChallanID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new challan
func (c *Challan) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Challan model
func (Challan) TableName() string {
	return "challans"
}

// ComputeTotals sums the already-rounded item lines into the challan header
func (c *Challan) ComputeTotals() {
	subtotal, gst, total := decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.Amount)
		gst = gst.Add(item.GstAmount)
		total = total.Add(item.TotalWithGst)
	}
	c.Subtotal = subtotal
	c.GstTotal = gst
	c.TotalWithoutGST = subtotal
	c.TotalWithGST = total
	c.DueAmount = money.FloorZero(total.Sub(c.PaidAmount))
}

// ApplyPaidToDate sets the paid amount from the full payment history and re-derives due and status.
// Billed and cancelled challans keep their status; only the amounts move.
func (c *Challan) ApplyPaidToDate(paid decimal.Decimal) {
	c.PaidAmount = paid
	due := c.TotalWithGST.Sub(paid)
	c.DueAmount = money.FloorZero(due)

	if c.Status == enum.ChallanStatusBilled || c.Status == enum.ChallanStatusCancelled {
		return
	}
	switch {
	case !due.IsPositive():
		c.Status = enum.ChallanStatusPaid
	case paid.IsPositive():
		c.Status = enum.ChallanStatusPartial
	default:
		c.Status = enum.ChallanStatusUnpaid
	}
}

// ChallanItem is one priced line of a challan
type ChallanItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ChallanID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"challan_id"`
	Position     int             `gorm:"not null;default:0" json:"position"`
	ProductName  string          `gorm:"size:255;not null;index" json:"product_name"`
	Qty          decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"qty"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_per_unit"`
	GstPercent   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"gst_percent"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	GstAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"gst_amount"`
	TotalWithGst decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_with_gst"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewChallanItem prices a line. Rounding happens per line, before any summation.
func NewChallanItem(position int, productName string, qty, pricePerUnit, gstPercent decimal.Decimal) ChallanItem {
	amount := money.Round2(qty.Mul(pricePerUnit))
	gstAmount := money.Percent(amount, gstPercent)
	return ChallanItem{
		Position:     position,
		ProductName:  productName,
		Qty:          qty,
		PricePerUnit: pricePerUnit,
		GstPercent:   gstPercent,
		Amount:       amount,
		GstAmount:    gstAmount,
		TotalWithGst: amount.Add(gstAmount),
	}
}

// BeforeCreate generates a UUID before creating a new challan item
func (ci *ChallanItem) BeforeCreate(tx *gorm.DB) error {
	if ci.ID == uuid.Nil {
		ci.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ChallanItem model
func (ChallanItem) TableName() string {
	return "challan_items"
}

// ChallanNumberPrefix returns the per-day prefix, e.g. "CH-20260115-"
func ChallanNumberPrefix(prefix string, date time.Time) string {
	return fmt.Sprintf("%s-%s-", prefix, date.Format("20060102"))
}

// NextChallanNumber returns the number following last for the given day prefix.
// An empty or foreign last number starts the day at 1.
func NextChallanNumber(dayPrefix, last string) string {
	seq := 1
	if strings.HasPrefix(last, dayPrefix) {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, dayPrefix)); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%0*d", dayPrefix, ChallanSequenceWidth, seq)
}
