package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billbook-api/internal/application/service"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/billbook-api/internal/presentation/http/dto/response"
)

// VendorHandler serves the vendor profile and its billing settings
type VendorHandler struct {
	vendorService *service.VendorService
	sequencer     *service.InvoiceSequencer
	gstSlabs      *service.GstSlabService
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(vendorService *service.VendorService, sequencer *service.InvoiceSequencer, gstSlabs *service.GstSlabService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService, sequencer: sequencer, gstSlabs: gstSlabs}
}

// GetVendor returns the current vendor profile
// @Summary Current vendor
// @Tags vendor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /vendor [get]
func (h *VendorHandler) GetVendor(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}

	vendor, err := h.vendorService.GetVendor(c.Request.Context(), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Vendor retrieved", vendor)
}

// UpdateVendor updates the current vendor profile
// @Summary Update vendor
// @Tags vendor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.UpdateVendorRequest true "Vendor fields"
// @Success 200 {object} response.APIResponse
// @Router /vendor [put]
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	var req request.UpdateVendorRequest
	if !bindJSON(c, &req) {
		return
	}

	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), vendorID, &service.UpdateVendorInput{
		Name:         req.Name,
		BusinessName: req.BusinessName,
		GSTIN:        req.GSTIN,
		Mobile:       req.Mobile,
		Email:        req.Email,
		Address:      req.Address,
		State:        req.State,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Vendor updated", vendor)
}

// ListVendors lists every vendor. Admin only.
// @Summary List vendors
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search by name, business name or mobile"
// @Success 200 {object} response.APIResponse
// @Router /admin/vendors [get]
func (h *VendorHandler) ListVendors(c *gin.Context) {
	result, err := h.vendorService.ListVendors(c.Request.Context(), pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Vendors retrieved", result)
}

// GetInvoiceSettings returns the invoice numbering settings
func (h *VendorHandler) GetInvoiceSettings(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}

	settings, err := h.sequencer.GetSettings(c.Request.Context(), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice settings retrieved", settings)
}

// UpdateInvoiceSettings changes prefix, template or the next invoice number
func (h *VendorHandler) UpdateInvoiceSettings(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	var req request.InvoiceSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.sequencer.UpdateSettings(c.Request.Context(), vendorID, &service.UpdateSettingsInput{
		Prefix:          req.Prefix,
		StartCount:      req.StartCount,
		InvoiceTemplate: req.InvoiceTemplate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice settings updated", settings)
}

func (h *VendorHandler) ListGstSlabs(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}

	slabs, err := h.gstSlabs.ListGstSlabs(c.Request.Context(), vendorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "GST slabs retrieved", slabs)
}

func (h *VendorHandler) CreateGstSlab(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	var req request.GstSlabRequest
	if !bindJSON(c, &req) {
		return
	}

	slab, err := h.gstSlabs.CreateGstSlab(c.Request.Context(), vendorID, gstSlabInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "GST slab created", slab)
}

func (h *VendorHandler) UpdateGstSlab(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req request.GstSlabRequest
	if !bindJSON(c, &req) {
		return
	}

	slab, err := h.gstSlabs.UpdateGstSlab(c.Request.Context(), vendorID, id, gstSlabInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "GST slab updated", slab)
}

func (h *VendorHandler) DeleteGstSlab(c *gin.Context) {
	vendorID, ok := scopedVendor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.gstSlabs.DeleteGstSlab(c.Request.Context(), vendorID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "GST slab deleted", nil)
}

func gstSlabInput(req *request.GstSlabRequest) *service.GstSlabInput {
	return &service.GstSlabInput{Name: req.Name, Rate: req.Rate, IsDefault: req.IsDefault}
}
