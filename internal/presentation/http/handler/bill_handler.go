package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billbook-api/internal/application/service"
	"github.com/sangkips/billbook-api/internal/domain/enum"
	"github.com/sangkips/billbook-api/internal/domain/repository"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/billbook-api/pkg/apperror"
)

// BillHandler handles invoice requests
type BillHandler struct {
	billService *service.BillService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

// billFilter reads the common bill listing filters
func billFilter(c *gin.Context) (repository.BillFilter, error) {
	var filter repository.BillFilter
	var err error
	if filter.CustomerID, err = queryUUID(c, "customer_id"); err != nil {
		return filter, err
	}
	if filter.DateRange, err = dateRange(c); err != nil {
		return filter, err
	}
	if raw := c.Query("status"); raw != "" {
		status := enum.BillStatus(raw)
		if !status.IsValid() {
			return filter, apperror.NewFieldError("status", "unknown bill status")
		}
		filter.Status = &status
	}
	return filter, nil
}

// List handles listing bills
// @Summary List bills
// @Tags bills
// @Produce json
// @Security BearerAuth
// @Param customer_id query string false "Customer ID"
// @Param status query string false "pending, partial, paid or cancelled"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.APIResponse
// @Router /bills [get]
func (h *BillHandler) List(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}

	filter, err := billFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.VendorID = vendorID

	result, err := h.billService.ListBills(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Bills retrieved", result)
}

// Create handles creating a bill from challans or ad-hoc items
// @Summary Create bill
// @Description Assigns the next invoice number. A requested invoice_number must be the expected next one.
// @Tags bills
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.CreateBillRequest true "Bill"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /bills [post]
func (h *BillHandler) Create(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	var req request.CreateBillRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]service.BillItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.BillItemInput{Description: item.Description, Qty: item.Qty, Rate: item.Rate}
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), vendorID, &service.CreateBillInput{
		CustomerID:          req.CustomerID,
		ChallanIDs:          req.ChallanIDs,
		Items:               items,
		BillDate:            req.BillDate,
		DiscountPercent:     req.DiscountPercent,
		GstPercent:          req.GstPercent,
		CustomInvoicePrefix: req.CustomInvoicePrefix,
		InvoiceNumber:       req.InvoiceNumber,
		InvoiceTemplate:     req.InvoiceTemplate,
		Note:                req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill created", bill)
}

func (h *BillHandler) Get(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), vendorID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved", bill)
}

// Update edits discount, GST, prefix, date, template or note of a bill
func (h *BillHandler) Update(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req request.EditBillRequest
	if !bindJSON(c, &req) {
		return
	}

	bill, err := h.billService.EditBill(c.Request.Context(), vendorID, id, &service.EditBillInput{
		DiscountPercent:     req.DiscountPercent,
		GstPercent:          req.GstPercent,
		CustomInvoicePrefix: req.CustomInvoicePrefix,
		BillDate:            req.BillDate,
		InvoiceTemplate:     req.InvoiceTemplate,
		Note:                req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill updated", bill)
}

// Pay marks a bill paid, fully unless an amount is given
func (h *BillHandler) Pay(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req request.PayBillRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	bill, err := h.billService.MarkBillPaid(c.Request.Context(), vendorID, id, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill payment recorded", bill)
}

func (h *BillHandler) Cancel(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	bill, err := h.billService.CancelBill(c.Request.Context(), vendorID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill cancelled", bill)
}

func (h *BillHandler) Delete(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.billService.DeleteBill(c.Request.Context(), vendorID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill deleted", nil)
}
