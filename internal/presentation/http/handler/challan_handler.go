package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billbook-api/internal/application/service"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/billbook-api/pkg/apperror"
)

// ChallanHandler handles delivery challan requests
type ChallanHandler struct {
	challanService *service.ChallanService
}

// NewChallanHandler creates a new challan handler
func NewChallanHandler(challanService *service.ChallanService) *ChallanHandler {
	return &ChallanHandler{challanService: challanService}
}

// List handles listing challans
// @Summary List challans
// @Tags challans
// @Produce json
// @Security BearerAuth
// @Param customer_id query string false "Customer ID"
// @Param status query string false "unpaid, partial, paid, billed or cancelled"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.APIResponse
// @Router /challans [get]
func (h *ChallanHandler) List(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}

	filter := repository.ChallanFilter{VendorID: vendorID}
	var err error
	if filter.CustomerID, err = queryUUID(c, "customer_id"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.DateRange, err = dateRange(c); err != nil {
		response.Error(c, err)
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := enum.ChallanStatus(raw)
		if !status.IsValid() {
			response.Error(c, apperror.NewFieldError("status", "unknown challan status"))
			return
		}
		filter.Status = &status
	}

	result, err := h.challanService.ListChallans(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Challans retrieved", result)
}

// Create handles creating a challan
// @Summary Create challan
// @Tags challans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.CreateChallanRequest true "Challan"
// @Success 201 {object} response.APIResponse
// @Router /challans [post]
func (h *ChallanHandler) Create(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	var req request.CreateChallanRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]service.ChallanItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.ChallanItemInput{
			ProductName:  item.ProductName,
			Qty:          item.Qty,
			PricePerUnit: item.PricePerUnit,
			GstPercent:   item.GstPercent,
			GstSlabID:    item.GstSlabID,
		}
	}

	challan, err := h.challanService.CreateChallan(c.Request.Context(), vendorID, &service.CreateChallanInput{
		CustomerID:  req.CustomerID,
		ChallanDate: req.ChallanDate,
		Items:       items,
		Note:        req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Challan created", challan)
}

// Get returns a challan; ?reconcile=true recomputes its paid amount first
func (h *ChallanHandler) Get(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	reconcile, _ := strconv.ParseBool(c.DefaultQuery("reconcile", "false"))
	var err error
	var result any
	if reconcile {
		result, err = h.challanService.ReconcileChallan(c.Request.Context(), vendorID, id)
	} else {
		result, err = h.challanService.GetChallan(c.Request.Context(), vendorID, id)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Challan retrieved", result)
}

// Pay records a payment against a challan
// @Summary Pay challan
// @Tags challans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Challan ID"
// @Param request body request.PayChallanRequest true "Payment"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /challans/{id}/pay [post]
func (h *ChallanHandler) Pay(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req request.PayChallanRequest
	if !bindJSON(c, &req) {
		return
	}

	challan, err := h.challanService.MarkChallanPaid(c.Request.Context(), vendorID, id, &service.MarkChallanPaidInput{
		Amount:          req.Amount,
		Note:            req.Note,
		TransactionDate: req.TransactionDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Challan payment recorded", challan)
}

func (h *ChallanHandler) Reconcile(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	challan, err := h.challanService.ReconcileChallan(c.Request.Context(), vendorID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Challan reconciled", challan)
}

func (h *ChallanHandler) Cancel(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	challan, err := h.challanService.CancelChallan(c.Request.Context(), vendorID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Challan cancelled", challan)
}

func (h *ChallanHandler) Delete(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.challanService.DeleteChallan(c.Request.Context(), vendorID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Challan deleted", nil)
}
