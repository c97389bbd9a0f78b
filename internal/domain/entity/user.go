package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"gorm.io/gorm"
)

// User is a login principal. Vendors sign in with email and password,
// customers with a one-time code sent to their mobile.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Email       *string        `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	Mobile      *string        `gorm:"size:20;index" json:"mobile,omitempty"`
	Password    string         `gorm:"size:255" json:"-"`
	Role        enum.Role      `gorm:"size:20;not null;index" json:"role"`
	VendorID    *uuid.UUID     `gorm:"type:uuid;index" json:"vendor_id,omitempty"`
	CustomerID  *uuid.UUID     `gorm:"type:uuid;uniqueIndex" json:"customer_id,omitempty"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Vendor   *Vendor   `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}
