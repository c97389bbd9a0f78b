package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer belongs to exactly one vendor. Outstanding is derived, never stored.
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	VendorID  uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_customers_vendor_mobile" json:"vendor_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Mobile    string         `gorm:"size:20;not null;uniqueIndex:idx_customers_vendor_mobile" json:"mobile"`
	Email     *string        `gorm:"size:255" json:"email,omitempty"`
	GSTIN     *string        `gorm:"size:15;column:gstin" json:"gstin,omitempty"`
	Address   *string        `gorm:"type:text" json:"address,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Vendor Vendor `gorm:"foreignKey:VendorID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
