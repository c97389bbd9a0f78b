package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/config"
	"github.com/sangkips/billbook-api/internal/domain/entity"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/sangkips/billbook-api/pkg/logger"
	"github.com/sangkips/billbook-api/pkg/phone"
	"github.com/sangkips/billbook-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// OTPPurposeLogin is the purpose customer login codes are stored under
const OTPPurposeLogin = "login"

// AuthService handles vendor sign-up, password login, customer OTP login and tokens
type AuthService struct {
	tx           repository.Transactor
	userRepo     repository.UserRepository
	vendorRepo   repository.VendorRepository
	customerRepo repository.CustomerRepository
	otpStore     repository.OTPStore
	jwtManager   *utils.JWTManager
	otp          config.OTPConfig
	region       string
}

// NewAuthService creates a new auth service
func NewAuthService(
	tx repository.Transactor,
	userRepo repository.UserRepository,
	vendorRepo repository.VendorRepository,
	customerRepo repository.CustomerRepository,
	otpStore repository.OTPStore,
	jwtManager *utils.JWTManager,
	otp config.OTPConfig,
	region string,
) *AuthService {
	return &AuthService{
		tx:           tx,
		userRepo:     userRepo,
		vendorRepo:   vendorRepo,
		customerRepo: customerRepo,
		otpStore:     otpStore,
		jwtManager:   jwtManager,
		otp:          otp,
		region:       region,
	}
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) issueTokens(user *entity.User) (*LoginOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(utils.TokenSubject{
		UserID:     user.ID,
		Role:       user.Role.String(),
		VendorID:   user.VendorID,
		CustomerID: user.CustomerID,
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *AuthService) touchLogin(ctx context.Context, user *entity.User) {
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.LogError("auth", "touchLogin", "update last login", user.ID, err)
	}
}

// RegisterInput represents the vendor sign-up input
type RegisterInput struct {
	Name         string
	BusinessName *string
	Mobile       string
	Email        string
	Password     string
}

// Register creates a vendor together with its owner login
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	mobile, err := phone.Normalize(input.Mobile, s.region)
	if err != nil {
		return nil, apperror.NewFieldError("mobile", err.Error())
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}
	existingVendor, err := s.vendorRepo.GetByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if existingVendor != nil {
		return nil, apperror.NewConflictError("Mobile already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var user *entity.User
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		vendor := &entity.Vendor{
			Name:         input.Name,
			BusinessName: input.BusinessName,
			Mobile:       mobile,
			Email:        &email,
		}
		if err := s.vendorRepo.Create(ctx, vendor); err != nil {
			return err
		}

		vendorID := vendor.ID
		user = &entity.User{
			Name:     input.Name,
			Email:    &email,
			Mobile:   &mobile,
			Password: hashedPassword,
			Role:     enum.RoleVendor,
			VendorID: &vendorID,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		user.Vendor = vendor
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// Login authenticates a vendor or admin and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	s.touchLogin(ctx, user)
	return s.issueTokens(user)
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}

	return s.issueTokens(user)
}

// RequestOTP stores a fresh login code for a customer of the vendor.
// Delivery is out of scope, so the code is written to the log.
func (s *AuthService) RequestOTP(ctx context.Context, vendorID uuid.UUID, rawMobile string) error {
	mobile, err := phone.Normalize(rawMobile, s.region)
	if err != nil {
		return apperror.NewFieldError("mobile", err.Error())
	}

	customer, err := s.customerRepo.GetByMobile(ctx, vendorID, mobile)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewNotFoundError("Customer")
	}

	code, err := utils.GenerateNumericCode(s.otp.Length)
	if err != nil {
		return err
	}

	key := repository.OTPKey{VendorID: vendorID, Mobile: mobile, Purpose: OTPPurposeLogin}
	if err := s.otpStore.Save(ctx, key, &repository.OTPEntry{
		Code:      code,
		ExpiresAt: time.Now().Add(s.otp.TTL),
	}); err != nil {
		return err
	}

	logger.Get().WithFields(logrus.Fields{
		"vendor_id": vendorID,
		"mobile":    mobile,
		"code":      code,
	}).Info("OTP issued")
	return nil
}

// VerifyOTP checks a login code and signs the customer in, creating their login on first use
func (s *AuthService) VerifyOTP(ctx context.Context, vendorID uuid.UUID, rawMobile, code string) (*LoginOutput, error) {
	mobile, err := phone.Normalize(rawMobile, s.region)
	if err != nil {
		return nil, apperror.NewFieldError("mobile", err.Error())
	}

	key := repository.OTPKey{VendorID: vendorID, Mobile: mobile, Purpose: OTPPurposeLogin}
	entry, err := s.otpStore.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry == nil || time.Now().After(entry.ExpiresAt) {
		return nil, apperror.ErrInvalidOTP
	}
	if entry.Attempts >= s.otp.MaxAttempts {
		_ = s.otpStore.Delete(ctx, key)
		return nil, apperror.ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		entry.Attempts++
		if err := s.otpStore.Save(ctx, key, entry); err != nil {
			return nil, err
		}
		return nil, apperror.ErrInvalidOTP
	}
	if err := s.otpStore.Delete(ctx, key); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByMobile(ctx, vendorID, mobile)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	user, err := s.userRepo.GetByCustomerID(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		customerID := customer.ID
		user = &entity.User{
			Name:       customer.Name,
			Mobile:     &mobile,
			Role:       enum.RoleCustomer,
			VendorID:   &vendorID,
			CustomerID: &customerID,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	s.touchLogin(ctx, user)
	return s.issueTokens(user)
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrNotFound
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewFieldError("current_password", "current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}
