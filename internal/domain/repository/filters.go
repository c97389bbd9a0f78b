package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/enum"
)

// DateRange is an optional inclusive window. Nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ChallanFilter narrows challan listings
type ChallanFilter struct {
	VendorID   uuid.UUID
	CustomerID *uuid.UUID
	Status     *enum.ChallanStatus
	DateRange
}

// BillFilter narrows bill listings
type BillFilter struct {
	VendorID   uuid.UUID
	CustomerID *uuid.UUID
	Status     *enum.BillStatus
	DateRange
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	VendorID   uuid.UUID
	CustomerID *uuid.UUID
	Type       *enum.PaymentType
	SubType    *enum.PaymentSubType
	Status     *enum.PaymentStatus
	DateRange
}

// TransactionFilter narrows ledger entry listings
type TransactionFilter struct {
	VendorID   uuid.UUID
	CustomerID *uuid.UUID
	Type       *enum.TransactionType
	DateRange
}
