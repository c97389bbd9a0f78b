package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVendorScope(t *testing.T) {
	env := newTestEnv()
	resolver := NewScopeResolver(env.vendorRepo, env.customerRepo)
	ctx := context.Background()
	vendorID := env.vendor.ID
	customerID := env.customer.ID
	stranger := uuid.New()

	tests := []struct {
		name      string
		identity  Identity
		requested *uuid.UUID
		want      uuid.UUID
		wantErr   error
	}{
		{"vendor uses own books", Identity{Role: enum.RoleVendor, VendorID: &vendorID}, &stranger, vendorID, nil},
		{"vendor without vendor id", Identity{Role: enum.RoleVendor}, nil, uuid.Nil, apperror.ErrForbidden},
		{"customer resolves owner", Identity{Role: enum.RoleCustomer, CustomerID: &customerID}, &stranger, vendorID, nil},
		{"unknown customer", Identity{Role: enum.RoleCustomer, CustomerID: &stranger}, nil, uuid.Nil, apperror.ErrNotFound},
		{"admin picks vendor", Identity{Role: enum.RoleAdmin}, &vendorID, vendorID, nil},
		{"admin unknown vendor", Identity{Role: enum.RoleAdmin}, &stranger, uuid.Nil, apperror.ErrNotFound},
		{"unknown role", Identity{Role: enum.Role("auditor")}, &vendorID, uuid.Nil, apperror.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.ResolveVendorScope(ctx, tt.identity, tt.requested)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdminScopeRequiresVendor(t *testing.T) {
	env := newTestEnv()
	resolver := NewScopeResolver(env.vendorRepo, env.customerRepo)

	_, err := resolver.ResolveVendorScope(context.Background(), Identity{Role: enum.RoleAdmin}, nil)
	require.Error(t, err)
	assert.Equal(t, apperror.ReasonValidationFailed, apperror.GetAppError(err).Reason)
}
