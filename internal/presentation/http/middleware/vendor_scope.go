package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/application/service"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/billbook-api/pkg/apperror"
)

// VendorHeader lets an admin pick the vendor whose books a request works on
const VendorHeader = "X-Vendor-ID"

// VendorScope resolves the vendor a request operates on and stores it in context.
// Must run after AuthMiddleware.
func VendorScope(resolver *service.ScopeResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		requested, err := requestedVendor(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		vendorID, err := resolver.ResolveVendorScope(c.Request.Context(), identity, requested)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(vendorIDKey, vendorID)
		c.Next()
	}
}

func requestedVendor(c *gin.Context) (*uuid.UUID, error) {
	raw := c.GetHeader(VendorHeader)
	if raw == "" {
		raw = c.Query("vendor_id")
	}
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.NewFieldError("vendor_id", "vendor_id must be a valid UUID")
	}
	return &id, nil
}

// GetVendorID retrieves the resolved vendor id from gin context
func GetVendorID(c *gin.Context) uuid.UUID {
	v, exists := c.Get(vendorIDKey)
	if !exists {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
