package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GstSlab is a vendor-defined GST rate that challan items can reference by id
type GstSlab struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	VendorID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Rate      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"rate"`
	IsDefault bool            `gorm:"default:false" json:"is_default"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new slab
func (g *GstSlab) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the GstSlab model
func (GstSlab) TableName() string {
	return "gst_slabs"
}
