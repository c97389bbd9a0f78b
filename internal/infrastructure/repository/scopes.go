package repository

import (
	"github.com/google/uuid"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
	"gorm.io/gorm"
)

// VendorScope filters by vendor. A nil vendor id matches nothing,
// so a missing scope can never leak another vendor's rows.
func VendorScope(vendorID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if vendorID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("vendor_id = ?", vendorID)
	}
}

// dateScope applies an inclusive window on column
func dateScope(column string, window domainRepo.DateRange) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if window.From != nil {
			db = db.Where(column+" >= ?", *window.From)
		}
		if window.To != nil {
			db = db.Where(column+" <= ?", *window.To)
		}
		return db
	}
}
