package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billbook-api/internal/application/service"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/response"
)

// DashboardHandler serves vendor totals and the customer self-service views
type DashboardHandler struct {
	outstanding    *service.OutstandingService
	billService    *service.BillService
	paymentService *service.PaymentService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(outstanding *service.OutstandingService, billService *service.BillService, paymentService *service.PaymentService) *DashboardHandler {
	return &DashboardHandler{outstanding: outstanding, billService: billService, paymentService: paymentService}
}

// GetStats handles getting dashboard statistics
// @Summary Dashboard
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}

	stats, err := h.outstanding.GetDashboard(c.Request.Context(), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}

// GetSummary returns vendor totals and purchases by product, optionally for a date window
// @Summary Vendor summary
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.APIResponse
// @Router /summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	window, err := dateRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.outstanding.GetVendorSummary(c.Request.Context(), vendorID, window)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Summary retrieved", summary)
}

// customerScope returns the identity of a logged-in customer
func customerScope(c *gin.Context) (service.Identity, bool) {
	id, ok := identity(c)
	if !ok {
		return id, false
	}
	if id.CustomerID == nil {
		response.Forbidden(c, "Customer login required")
		return id, false
	}
	return id, true
}

// MyBills lists the logged-in customer's bills
func (h *DashboardHandler) MyBills(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := customerScope(c)
	if !ok {
		return
	}

	filter, err := billFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.VendorID = vendorID
	filter.CustomerID = id.CustomerID

	result, err := h.billService.ListBills(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Bills retrieved", result)
}

// MyPayments lists the logged-in customer's payments
func (h *DashboardHandler) MyPayments(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := customerScope(c)
	if !ok {
		return
	}

	filter, err := paymentFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.VendorID = vendorID
	filter.CustomerID = id.CustomerID

	result, err := h.paymentService.ListPayments(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Payments retrieved", result)
}

// MyOutstanding returns what the logged-in customer owes
func (h *DashboardHandler) MyOutstanding(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := customerScope(c)
	if !ok {
		return
	}

	balance, err := h.outstanding.GetCustomerBalance(c.Request.Context(), vendorID, *id.CustomerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Outstanding retrieved", balance)
}

