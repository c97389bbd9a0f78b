package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	domainRepo "github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPKeyIsScopedByVendorAndPurpose(t *testing.T) {
	vendor := uuid.MustParse("6f1c1d4e-0000-4000-8000-000000000001")
	key := domainRepo.OTPKey{VendorID: vendor, Mobile: "+918123456789", Purpose: "login"}

	assert.Equal(t, "otp:6f1c1d4e-0000-4000-8000-000000000001:login:+918123456789", otpKey(key))

	other := key
	other.Purpose = "verify"
	assert.NotEqual(t, otpKey(key), otpKey(other))
}

func TestMemoryOTPStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOTPStore()
	key := domainRepo.OTPKey{VendorID: uuid.New(), Mobile: "+918123456789", Purpose: "login"}

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Save(ctx, key, &domainRepo.OTPEntry{Code: "123456", ExpiresAt: time.Now().Add(time.Minute)}))
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "123456", got.Code)

	require.NoError(t, store.Delete(ctx, key))
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryOTPStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOTPStore()
	key := domainRepo.OTPKey{VendorID: uuid.New(), Mobile: "+918123456789", Purpose: "login"}

	require.NoError(t, store.Save(ctx, key, &domainRepo.OTPEntry{Code: "1", ExpiresAt: time.Now().Add(-time.Second)}))
	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}
