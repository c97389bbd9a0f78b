package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChallanItemRequest is one delivered line
type ChallanItemRequest struct {
	ProductName  string           `json:"product_name" binding:"required,max=255"`
	Qty          decimal.Decimal  `json:"qty"`
	PricePerUnit decimal.Decimal  `json:"price_per_unit"`
	GstPercent   *decimal.Decimal `json:"gst_percent"`
	GstSlabID    *uuid.UUID       `json:"gst_slab_id"`
}

// CreateChallanRequest represents a new delivery challan
type CreateChallanRequest struct {
	CustomerID  uuid.UUID            `json:"customer_id" binding:"required"`
	ChallanDate *time.Time           `json:"challan_date"`
	Items       []ChallanItemRequest `json:"items" binding:"required,min=1,dive"`
	Note        *string              `json:"note" binding:"omitempty,max=1000"`
}

// PayChallanRequest records a payment against a challan
type PayChallanRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Note            *string         `json:"note" binding:"omitempty,max=1000"`
	TransactionDate *time.Time      `json:"transaction_date"`
}

// BillItemRequest is an ad-hoc bill line
type BillItemRequest struct {
	Description string          `json:"description" binding:"required,max=255"`
	Qty         decimal.Decimal `json:"qty"`
	Rate        decimal.Decimal `json:"rate"`
}

// CreateBillRequest represents a new bill from challans or ad-hoc items
type CreateBillRequest struct {
	CustomerID          uuid.UUID         `json:"customer_id" binding:"required"`
	ChallanIDs          []uuid.UUID       `json:"challan_ids"`
	Items               []BillItemRequest `json:"items" binding:"omitempty,dive"`
	BillDate            *time.Time        `json:"bill_date"`
	DiscountPercent     decimal.Decimal   `json:"discount_percent"`
	GstPercent          decimal.Decimal   `json:"gst_percent"`
	CustomInvoicePrefix *string           `json:"custom_invoice_prefix" binding:"omitempty,max=20"`
	InvoiceNumber       *int64            `json:"invoice_number"`
	InvoiceTemplate     *string           `json:"invoice_template" binding:"omitempty,max=50"`
	Note                *string           `json:"note" binding:"omitempty,max=1000"`
}

// EditBillRequest represents a partial bill update
type EditBillRequest struct {
	DiscountPercent     *decimal.Decimal `json:"discount_percent"`
	GstPercent          *decimal.Decimal `json:"gst_percent"`
	CustomInvoicePrefix *string          `json:"custom_invoice_prefix" binding:"omitempty,max=20"`
	BillDate            *time.Time       `json:"bill_date"`
	InvoiceTemplate     *string          `json:"invoice_template" binding:"omitempty,max=50"`
	Note                *string          `json:"note" binding:"omitempty,max=1000"`
}

// PayBillRequest settles a bill, fully when Amount is omitted
type PayBillRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}
