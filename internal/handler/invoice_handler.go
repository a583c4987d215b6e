package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/freightdesk/invoicing-service/internal/domain"
	"github.com/freightdesk/invoicing-service/internal/model"
	"github.com/freightdesk/invoicing-service/internal/service"
	"github.com/freightdesk/invoicing-service/internal/view"
)

// InvoiceHandler handles HTTP requests for invoice operations
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	assembler      *view.Assembler
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService service.InvoiceService, assembler *view.Assembler) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		assembler:      assembler,
	}
}

// RegisterRoutes registers the API routes for the invoice handler
func (h *InvoiceHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/v1")

	invoices := api.Group("/invoices")
	{
		invoices.POST("", h.CreateInvoice)
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:invoiceId", h.GetInvoiceByID)
		invoices.PUT("/:invoiceId", h.UpdateInvoice)
		invoices.DELETE("/:invoiceId", h.DeleteInvoice)
		invoices.POST("/:invoiceId/corrections", h.CreateCorrection)
		invoices.GET("/:invoiceId/corrections", h.GetCorrection)
		invoices.GET("/:invoiceId/document", h.GetInvoiceDocument)
	}

	api.POST("/orders/:orderId/invoice", h.CreateInvoiceFromOrder)
}

// CreateInvoice handles the POST /invoices endpoint
// @Summary Create an invoice
// @Description Create a new original invoice with manual data entry
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body model.InvoiceRequest true "Invoice data"
// @Success 201 {object} model.InvoiceResponse "Invoice created successfully"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 422 {object} model.ErrorResponse "Validation failed"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var request model.InvoiceRequest
	if err := bindJSON(c, &request); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	invoice, err := h.invoiceService.CreateOriginal(c.Request.Context(), request.ToInput())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondCreated(c, model.InvoiceResponse{Data: invoice})
}

// CreateInvoiceFromOrder handles the POST /orders/{orderId}/invoice endpoint
// @Summary Generate an invoice from a transport order
// @Description Create an invoice pre-filled from an order's counterparty and freight price. An order can be invoiced at most once.
// @Tags invoices
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID"
// @Param request body model.FromOrderRequest true "Issue date"
// @Success 201 {object} model.InvoiceResponse "Invoice created successfully"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 404 {object} model.ErrorResponse "Order not found"
// @Failure 409 {object} model.ErrorResponse "Order already invoiced"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/orders/{orderId}/invoice [post]
func (h *InvoiceHandler) CreateInvoiceFromOrder(c *gin.Context) {
	orderID, err := getPathUUID(c, "orderId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var request model.FromOrderRequest
	if err := bindJSON(c, &request); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}
	if request.IssueDate.IsZero() {
		respondBadRequest(c, ErrInvalidInput, newErrorDetail("issue_date", "Issue date is required"))
		return
	}

	invoice, err := h.invoiceService.CreateFromOrder(c.Request.Context(), orderID, request.IssueDate.Time)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondCreated(c, model.InvoiceResponse{Data: invoice})
}

// ListInvoices handles the GET /invoices endpoint
// @Summary List invoices
// @Description Get a paginated list of invoices with optional filters
// @Tags invoices
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param kind query string false "Invoice kind filter (ORIGINAL or CORRECTION)"
// @Param startDate query string false "Issue date lower bound (YYYY-MM-DD)"
// @Param endDate query string false "Issue date upper bound (YYYY-MM-DD)"
// @Param buyer query string false "Buyer name filter"
// @Success 200 {object} model.InvoiceListResponse "List of invoices"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filter, err := parseInvoiceFilter(c)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("query", err.Error()))
		return
	}

	paginated, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, model.InvoiceListResponse{
		Data:       paginated.Data,
		Pagination: paginated.Pagination,
	})
}

// GetInvoiceByID handles the GET /invoices/{invoiceId} endpoint
// @Summary Get an invoice by ID
// @Description Retrieve a specific invoice. For corrections the delta against the original's current totals is included.
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoiceId path string true "Invoice ID"
// @Success 200 {object} model.InvoiceResponse "Invoice details"
// @Failure 400 {object} model.ErrorResponse "Invalid invoice ID"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/invoices/{invoiceId} [get]
func (h *InvoiceHandler) GetInvoiceByID(c *gin.Context) {
	invoiceID, err := getPathUUID(c, "invoiceId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, model.InvoiceResponse{Data: invoice})
}

// UpdateInvoice handles the PUT /invoices/{invoiceId} endpoint
// @Summary Update an invoice
// @Description Update an existing invoice. Line items are reconciled by id: matching items keep their identity, missing items are removed, new items are added. For corrections only dates, comments and items are editable.
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoiceId path string true "Invoice ID"
// @Param invoice body model.InvoiceRequest true "Updated invoice data"
// @Success 200 {object} model.InvoiceResponse "Invoice updated successfully"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Failure 422 {object} model.ErrorResponse "Validation failed"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/invoices/{invoiceId} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	invoiceID, err := getPathUUID(c, "invoiceId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var request model.InvoiceRequest
	if err := bindJSON(c, &request); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	// The stored kind decides which update applies.
	stored, err := h.invoiceService.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	var updated *domain.Invoice
	if stored.IsCorrection() {
		updated, err = h.invoiceService.UpdateCorrection(c.Request.Context(), invoiceID, request.ToCorrectionInput())
	} else {
		updated, err = h.invoiceService.UpdateOriginal(c.Request.Context(), invoiceID, request.ToInput())
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, model.InvoiceResponse{Data: updated})
}

// DeleteInvoice handles the DELETE /invoices/{invoiceId} endpoint
// @Summary Delete an invoice
// @Description Delete an invoice and its line items
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoiceId path string true "Invoice ID"
// @Success 204 "Invoice deleted successfully"
// @Failure 400 {object} model.ErrorResponse "Invalid invoice ID"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/invoices/{invoiceId} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	invoiceID, err := getPathUUID(c, "invoiceId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), invoiceID); err != nil {
		respondDomainError(c, err)
		return
	}

	respondNoContent(c)
}

// CreateCorrection handles the POST /invoices/{invoiceId}/corrections endpoint
// @Summary Issue a correction invoice
// @Description Create a correction for an original invoice. The target must be an original; correcting a correction is rejected.
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoiceId path string true "Original invoice ID"
// @Param correction body model.CorrectionRequest true "Correction data"
// @Success 201 {object} model.InvoiceResponse "Correction created successfully"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 404 {object} model.ErrorResponse "Original invoice not found"
// @Failure 409 {object} model.ErrorResponse "Target is itself a correction"
// @Failure 422 {object} model.ErrorResponse "Validation failed"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/invoices/{invoiceId}/corrections [post]
func (h *InvoiceHandler) CreateCorrection(c *gin.Context) {
	invoiceID, err := getPathUUID(c, "invoiceId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var request model.CorrectionRequest
	if err := bindJSON(c, &request); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	correction, err := h.invoiceService.CreateCorrection(c.Request.Context(), invoiceID, request.ToInput())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondCreated(c, model.InvoiceResponse{Data: correction})
}

// GetCorrection handles the GET /invoices/{invoiceId}/corrections endpoint
// @Summary Get the correction issued for an original invoice
// @Description Retrieve the correction referencing the given original, including its delta against the original's current totals
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoiceId path string true "Original invoice ID"
// @Success 200 {object} model.InvoiceResponse "Correction details"
// @Failure 400 {object} model.ErrorResponse "Invalid invoice ID"
// @Failure 404 {object} model.ErrorResponse "No correction exists for this invoice"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/invoices/{invoiceId}/corrections [get]
func (h *InvoiceHandler) GetCorrection(c *gin.Context) {
	invoiceID, err := getPathUUID(c, "invoiceId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	correction, err := h.invoiceService.GetCorrectionFor(c.Request.Context(), invoiceID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, model.InvoiceResponse{Data: correction})
}

// GetInvoiceDocument handles the GET /invoices/{invoiceId}/document endpoint
// @Summary Get the printable invoice document
// @Description Assemble the full printable document: seller metadata, amount in words, payment deadline and, for EUR invoices, the PLN conversion block with the resolved reference rate.
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoiceId path string true "Invoice ID"
// @Success 200 {object} view.InvoiceDocument "Printable document"
// @Failure 400 {object} model.ErrorResponse "Invalid invoice ID"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Failure 502 {object} model.ErrorResponse "Reference rate unavailable"
// @Router /v1/invoices/{invoiceId}/document [get]
func (h *InvoiceHandler) GetInvoiceDocument(c *gin.Context) {
	invoiceID, err := getPathUUID(c, "invoiceId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	document, err := h.assembler.BuildDocument(c.Request.Context(), invoiceID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, document)
}

// parseInvoiceFilter extracts filtering parameters from the request
func parseInvoiceFilter(c *gin.Context) (domain.InvoiceFilter, error) {
	filter := domain.InvoiceFilter{}

	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		return filter, fmt.Errorf("invalid page number")
	}
	filter.Page = page

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		return filter, fmt.Errorf("invalid limit")
	}
	if limit > 100 {
		limit = 100
	}
	filter.Limit = limit

	if kindStr := c.Query("kind"); kindStr != "" {
		kind := domain.InvoiceKind(kindStr)
		if kind != domain.KindOriginal && kind != domain.KindCorrection {
			return filter, fmt.Errorf("invalid kind (use ORIGINAL or CORRECTION)")
		}
		filter.Kind = &kind
	}

	if startDateStr := c.Query("startDate"); startDateStr != "" {
		startDate, err := parseDate(startDateStr)
		if err != nil {
			return filter, fmt.Errorf("invalid startDate format (use YYYY-MM-DD)")
		}
		filter.StartDate = &startDate
	}

	if endDateStr := c.Query("endDate"); endDateStr != "" {
		endDate, err := parseDate(endDateStr)
		if err != nil {
			return filter, fmt.Errorf("invalid endDate format (use YYYY-MM-DD)")
		}
		filter.EndDate = &endDate
	}

	filter.Buyer = c.Query("buyer")

	return filter, nil
}
