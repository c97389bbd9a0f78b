package request

import "github.com/shopspring/decimal"

// UpdateVendorRequest represents a vendor profile update
type UpdateVendorRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=2,max=255"`
	BusinessName *string `json:"business_name" binding:"omitempty,max=255"`
	GSTIN        *string `json:"gstin" binding:"omitempty,len=15,alphanum"`
	Mobile       *string `json:"mobile"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Address      *string `json:"address" binding:"omitempty,max=1000"`
	State        *string `json:"state" binding:"omitempty,max=100"`
}

// InvoiceSettingsRequest updates the invoice numbering settings
type InvoiceSettingsRequest struct {
	Prefix          *string `json:"prefix" binding:"omitempty,max=20"`
	StartCount      *int64  `json:"start_count" binding:"omitempty,gte=1"`
	InvoiceTemplate *string `json:"invoice_template" binding:"omitempty,max=50"`
}

// GstSlabRequest creates or updates a GST slab
type GstSlabRequest struct {
	Name      *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Rate      *decimal.Decimal `json:"rate"`
	IsDefault *bool            `json:"is_default"`
}

// CreateCustomerRequest represents a new customer
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required,min=1,max=255"`
	Mobile  string  `json:"mobile" binding:"required"`
	Email   *string `json:"email" binding:"omitempty,email"`
	GSTIN   *string `json:"gstin" binding:"omitempty,len=15,alphanum"`
	Address *string `json:"address" binding:"omitempty,max=1000"`
}

// UpdateCustomerRequest represents a partial customer update
type UpdateCustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
	Mobile  *string `json:"mobile"`
	Email   *string `json:"email" binding:"omitempty,email"`
	GSTIN   *string `json:"gstin" binding:"omitempty,len=15,alphanum"`
	Address *string `json:"address" binding:"omitempty,max=1000"`
}

// ImportCustomersRequest carries customer rows for a background import
type ImportCustomersRequest struct {
	Rows []CreateCustomerRequest `json:"rows" binding:"required,min=1"`
}
