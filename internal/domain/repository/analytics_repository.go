package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ProductPurchase is the quantity and amount of one product across challans
type ProductPurchase struct {
	ProductName string          `json:"product_name"`
	Qty         decimal.Decimal `json:"qty"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentSum selects completed payments to add up
type PaymentSum struct {
	VendorID   uuid.UUID
	CustomerID *uuid.UUID
	Type       enum.PaymentType
	SubType    *enum.PaymentSubType
	DateRange
}

// AnalyticsRepository defines aggregation queries. Every sum is null-safe and unrounded.
type AnalyticsRepository interface {
	// SumBilled adds TotalWithGST over non-cancelled bills
	SumBilled(ctx context.Context, vendorID uuid.UUID, customerID *uuid.UUID, window DateRange) (decimal.Decimal, error)
	// SumPending adds PendingAmount over non-cancelled bills
	SumPending(ctx context.Context, vendorID uuid.UUID, window DateRange) (decimal.Decimal, error)
	CountBills(ctx context.Context, vendorID uuid.UUID, window DateRange) (int64, error)
	// SumPayments adds completed payment amounts
	SumPayments(ctx context.Context, sum PaymentSum) (decimal.Decimal, error)
	CountCustomers(ctx context.Context, vendorID uuid.UUID) (int64, error)
	// PurchasesByProduct groups non-cancelled challan items by product, largest quantity first
	PurchasesByProduct(ctx context.Context, vendorID uuid.UUID, window DateRange) ([]ProductPurchase, error)
}
