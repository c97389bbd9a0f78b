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

// PaymentHandler handles ledger payment requests
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func paymentFilter(c *gin.Context) (repository.PaymentFilter, error) {
	var filter repository.PaymentFilter
	var err error
	if filter.CustomerID, err = queryUUID(c, "customer_id"); err != nil {
		return filter, err
	}
	if filter.DateRange, err = dateRange(c); err != nil {
		return filter, err
	}
	if raw := c.Query("type"); raw != "" {
		t := enum.PaymentType(raw)
		if !t.IsValid() {
			return filter, apperror.NewFieldError("type", "type must be credit or debit")
		}
		filter.Type = &t
	}
	if raw := c.Query("sub_type"); raw != "" {
		st := enum.PaymentSubType(raw)
		if !st.IsValid() {
			return filter, apperror.NewFieldError("sub_type", "unknown payment sub type")
		}
		filter.SubType = &st
	}
	if raw := c.Query("status"); raw != "" {
		s := enum.PaymentStatus(raw)
		if !s.IsValid() {
			return filter, apperror.NewFieldError("status", "unknown payment status")
		}
		filter.Status = &s
	}
	return filter, nil
}

// List handles listing payments
// @Summary List payments
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param customer_id query string false "Customer ID"
// @Param type query string false "credit or debit"
// @Param sub_type query string false "Payment sub type"
// @Param status query string false "completed, pending or failed"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.APIResponse
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}

	filter, err := paymentFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.VendorID = vendorID

	result, err := h.paymentService.ListPayments(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Payments retrieved", result)
}

// Create records a payment and applies its bill allocations
// @Summary Create payment
// @Description Customer credits may be allocated to bills with adjusted_invoices, which must add up to amount.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Replays the stored response for a retried request"
// @Param request body request.CreatePaymentRequest true "Payment"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	var req request.CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	allocs, err := req.Allocations()
	if err != nil {
		response.Error(c, err)
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), vendorID, &service.CreatePaymentInput{
		CustomerID:       req.CustomerID,
		Type:             enum.PaymentType(req.Type),
		SubType:          enum.PaymentSubType(req.SubType),
		Amount:           req.Amount,
		Method:           enum.PaymentMethod(req.Method),
		Status:           enum.PaymentStatus(req.Status),
		BillID:           req.BillID,
		ChallanID:        req.ChallanID,
		AdjustedInvoices: allocs,
		PaymentDate:      req.PaymentDate,
		Reference:        req.Reference,
		Note:             req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded", payment)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), vendorID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment retrieved", payment)
}

// Update changes a payment; the ledger mirror moves by the amount delta only
func (h *PaymentHandler) Update(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req request.UpdatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdatePaymentInput{
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		Reference:   req.Reference,
		Note:        req.Note,
	}
	if req.Method != nil {
		m := enum.PaymentMethod(*req.Method)
		input.Method = &m
	}
	if req.Status != nil {
		s := enum.PaymentStatus(*req.Status)
		input.Status = &s
	}

	payment, err := h.paymentService.UpdatePayment(c.Request.Context(), vendorID, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment updated", payment)
}

// Delete removes a payment and reverses its bill allocations
func (h *PaymentHandler) Delete(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.paymentService.DeletePayment(c.Request.Context(), vendorID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment deleted", nil)
}

// OpeningBalance records the opening balance of a payment method for the current financial year
// @Summary Create opening balance
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.OpeningBalanceRequest true "Opening balance"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /payments/opening-balance [post]
func (h *PaymentHandler) OpeningBalance(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	var req request.OpeningBalanceRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.CreateOpeningBalance(c.Request.Context(), vendorID, &service.OpeningBalanceInput{
		Method:         enum.PaymentMethod(req.Method),
		OpeningBalance: req.OpeningBalance,
		Date:           req.Date,
		Note:           req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Opening balance recorded", payment)
}

// RefreshOutstanding recomputes the outstanding snapshot stored on a payment
func (h *PaymentHandler) RefreshOutstanding(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.RefreshOutstanding(c.Request.Context(), vendorID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Outstanding refreshed", payment)
}

// Transactions lists ledger entries
// @Summary List transactions
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param customer_id query string false "Customer ID"
// @Param type query string false "payment, credit or debit"
// @Success 200 {object} response.APIResponse
// @Router /transactions [get]
func (h *PaymentHandler) Transactions(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}

	filter := repository.TransactionFilter{VendorID: vendorID}
	var err error
	if filter.CustomerID, err = queryUUID(c, "customer_id"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.DateRange, err = dateRange(c); err != nil {
		response.Error(c, err)
		return
	}
	if raw := c.Query("type"); raw != "" {
		t := enum.TransactionType(raw)
		if !t.IsValid() {
			response.Error(c, apperror.NewFieldError("type", "type must be payment, credit or debit"))
			return
		}
		filter.Type = &t
	}

	result, err := h.paymentService.ListTransactions(c.Request.Context(), filter, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Transactions retrieved", result)
}
