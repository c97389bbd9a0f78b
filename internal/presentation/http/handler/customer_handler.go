package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billbook-api/internal/application/service"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/billbook-api/pkg/apperror"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
	outstanding     *service.OutstandingService
	exports         *service.ExportService
	imports         *service.ImportService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService, outstanding *service.OutstandingService, exports *service.ExportService, imports *service.ImportService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		outstanding:     outstanding,
		exports:         exports,
		imports:         imports,
	}
}

// List handles listing customers
// @Summary List customers
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search by name, mobile or email"
// @Success 200 {object} response.APIResponse
// @Router /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}

	result, err := h.customerService.ListCustomers(c.Request.Context(), vendorID, pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Customers retrieved", result)
}

// Create handles creating a customer
// @Summary Create customer
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.CreateCustomerRequest true "Customer"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	var req request.CreateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), vendorID, customerInput(req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Customer created", customer)
}

// Get handles getting a customer by id
func (h *CustomerHandler) Get(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), vendorID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer retrieved", customer)
}

// Update handles a partial customer update
func (h *CustomerHandler) Update(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req request.UpdateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), vendorID, id, &service.UpdateCustomerInput{
		Name:    req.Name,
		Mobile:  req.Mobile,
		Email:   req.Email,
		GSTIN:   req.GSTIN,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer updated", customer)
}

// Delete handles deleting a customer
func (h *CustomerHandler) Delete(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), vendorID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer deleted", nil)
}

// Outstanding returns what a customer owes the vendor
// @Summary Customer outstanding
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Success 200 {object} response.APIResponse
// @Router /customers/{id}/outstanding [get]
func (h *CustomerHandler) Outstanding(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	balance, err := h.outstanding.GetCustomerBalance(c.Request.Context(), vendorID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Outstanding retrieved", balance)
}

// Ledger returns the running-balance ledger of a customer, as an XLSX download with ?format=xlsx
// @Summary Customer ledger
// @Tags customers
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Customer ID"
// @Param format query string false "json or xlsx"
// @Success 200 {object} response.APIResponse
// @Router /customers/{id}/ledger [get]
func (h *CustomerHandler) Ledger(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	switch strings.ToLower(c.DefaultQuery("format", "json")) {
	case "json":
		ledger, err := h.outstanding.GetCustomerLedger(c.Request.Context(), vendorID, id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Ledger retrieved", ledger)
	case "xlsx":
		var buf bytes.Buffer
		if err := h.exports.WriteCustomerLedger(c.Request.Context(), vendorID, id, &buf); err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+service.LedgerFilename(id)+`"`)
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	default:
		response.Error(c, apperror.NewFieldError("format", "format must be json or xlsx"))
	}
}

// Import queues a background customer import from JSON rows or an uploaded XLSX file
// @Summary Import customers
// @Tags customers
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file false "XLSX workbook with Name, Mobile, Email, GSTIN, Address columns"
// @Success 202 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /imports [post]
func (h *CustomerHandler) Import(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}

	var rows []service.CreateCustomerInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			response.Error(c, apperror.NewFieldError("file", "file is required"))
			return
		}
		file, err := header.Open()
		if err != nil {
			response.Error(c, apperror.NewBadRequestError("Could not read uploaded file"))
			return
		}
		defer file.Close()

		rows, err = h.imports.ParseWorkbook(file)
		if err != nil {
			response.Error(c, err)
			return
		}
	} else {
		var req request.ImportCustomersRequest
		if !bindJSON(c, &req) {
			return
		}
		rows = make([]service.CreateCustomerInput, len(req.Rows))
		for i, row := range req.Rows {
			rows[i] = *customerInput(row)
		}
	}

	job, err := h.imports.StartImport(c.Request.Context(), vendorID, rows)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, "Import queued", job)
}

// ImportStatus returns the progress of an import job
func (h *CustomerHandler) ImportStatus(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	job, err := h.imports.GetJob(c.Request.Context(), vendorID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Import job retrieved", job)
}

func customerInput(req request.CreateCustomerRequest) *service.CreateCustomerInput {
	return &service.CreateCustomerInput{
		Name:    req.Name,
		Mobile:  req.Mobile,
		Email:   req.Email,
		GSTIN:   req.GSTIN,
		Address: req.Address,
	}
}
