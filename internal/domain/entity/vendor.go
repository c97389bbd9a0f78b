package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vendor is the tenant root. Every billing record belongs to exactly one vendor.
type Vendor struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	BusinessName *string        `gorm:"size:255" json:"business_name,omitempty"`
	GSTIN        *string        `gorm:"size:15;column:gstin" json:"gstin,omitempty"`
	Mobile       string         `gorm:"size:20;uniqueIndex;not null" json:"mobile"`
	Email        *string        `gorm:"size:255" json:"email,omitempty"`
	Address      *string        `gorm:"type:text" json:"address,omitempty"`
	State        *string        `gorm:"size:100" json:"state,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new vendor
func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Vendor model
func (Vendor) TableName() string {
	return "vendors"
}
