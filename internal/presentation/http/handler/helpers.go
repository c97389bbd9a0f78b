package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/billbook-api/internal/application/service"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/billbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/billbook-api/pkg/apperror"
	"github.com/sangkips/billbook-api/pkg/pagination"
	"github.com/sangkips/billbook-api/pkg/utils"
)

const dateLayout = "2006-01-02"

// bindJSON binds the body into dst and writes the error response on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, request.BindingError(err))
		return false
	}
	return true
}

// scopedVendor returns the vendor resolved by the scope middleware
func scopedVendor(c *gin.Context) (uuid.UUID, bool) {
	id := middleware.GetVendorID(c)
	if id == uuid.Nil {
		response.Forbidden(c, "Vendor context required")
		return uuid.Nil, false
	}
	return id, true
}

func identity(c *gin.Context) (service.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return service.Identity{}, false
	}
	return id, true
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.NewFieldError("id", "id must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}

// dateRange reads ?from= and ?to= as calendar days. to covers its whole day.
func dateRange(c *gin.Context) (repository.DateRange, error) {
	var window repository.DateRange
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return window, apperror.NewFieldError("from", "from must be a date in YYYY-MM-DD format")
		}
		window.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return window, apperror.NewFieldError("to", "to must be a date in YYYY-MM-DD format")
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		window.To = &end
	}
	if window.From != nil && window.To != nil && window.To.Before(*window.From) {
		return window, apperror.NewFieldError("to", "to must not be before from")
	}
	return window, nil
}

// queryUUID parses an optional uuid query parameter
func queryUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	id, err := utils.ParseOptionalUUID(c.Query(name))
	if err != nil {
		return nil, apperror.NewFieldError(name, name+" must be a valid UUID")
	}
	return id, nil
}
