package entity

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InvoiceSettings holds a vendor's invoice numbering state. There is one row per vendor.
// CurrentCount is the next number to hand out; UsedNumbers records every issued numeric part.
type InvoiceSettings struct {
	ID              uuid.UUID                  `gorm:"type:uuid;primary_key" json:"id"`
	VendorID        uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex" json:"vendor_id"`
	Prefix          string                     `gorm:"size:20;not null;default:'INV'" json:"prefix"`
	StartCount      int64                      `gorm:"not null;default:1001" json:"start_count"`
	CurrentCount    int64                      `gorm:"not null;default:1001" json:"current_count"`
	UsedNumbers     datatypes.JSONSlice[int64] `gorm:"type:jsonb" json:"used_numbers"`
	InvoiceTemplate string                     `gorm:"size:50" json:"invoice_template"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating new settings
func (s *InvoiceSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceSettings model
func (InvoiceSettings) TableName() string {
	return "invoice_settings"
}

// IsUsed reports whether n has already been issued
func (s *InvoiceSettings) IsUsed(n int64) bool {
	for _, used := range s.UsedNumbers {
		if used == n {
			return true
		}
	}
	return false
}

// NextNumber returns CurrentCount, skipping past anything already issued
func (s *InvoiceSettings) NextNumber() int64 {
	n := s.CurrentCount
	for s.IsUsed(n) {
		n++
	}
	return n
}

// MarkUsed records n as issued and moves the counter just past it
func (s *InvoiceSettings) MarkUsed(n int64) {
	s.UsedNumbers = append(s.UsedNumbers, n)
	s.CurrentCount = n + 1
}

// ResetStart restarts numbering at start and forgets every issued number
func (s *InvoiceSettings) ResetStart(start int64) {
	s.StartCount = start
	s.CurrentCount = start
	s.UsedNumbers = datatypes.JSONSlice[int64]{}
}

// Format renders prefix + n, zero-padded to the digit count of StartCount
func (s *InvoiceSettings) Format(prefix string, n int64) string {
	width := len(strconv.FormatInt(s.StartCount, 10))
	return fmt.Sprintf("%s%0*d", prefix, width, n)
}
