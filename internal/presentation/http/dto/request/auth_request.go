package request

import "github.com/google/uuid"

// LoginRequest represents a vendor or admin login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterRequest represents a vendor sign-up
type RegisterRequest struct {
	Name            string  `json:"name" binding:"required,min=2,max=255"`
	BusinessName    *string `json:"business_name" binding:"omitempty,max=255"`
	Mobile          string  `json:"mobile" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required,min=8"`
	PasswordConfirm string  `json:"password_confirm" binding:"required,eqfield=Password"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// OTPRequest asks for a login code to be sent to a customer's mobile
type OTPRequest struct {
	VendorID uuid.UUID `json:"vendor_id" binding:"required"`
	Mobile   string    `json:"mobile" binding:"required"`
}

// OTPVerifyRequest exchanges a login code for customer tokens
type OTPVerifyRequest struct {
	VendorID uuid.UUID `json:"vendor_id" binding:"required"`
	Mobile   string    `json:"mobile" binding:"required"`
	Code     string    `json:"code" binding:"required,numeric,min=4,max=8"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}
