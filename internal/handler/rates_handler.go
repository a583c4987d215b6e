package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/freightdesk/invoicing-service/internal/model"
	"github.com/freightdesk/invoicing-service/internal/service"
)

// RatesHandler handles HTTP requests for reference-rate lookups
type RatesHandler struct {
	invoiceService service.InvoiceService
}

// NewRatesHandler creates a new rates handler
func NewRatesHandler(invoiceService service.InvoiceService) *RatesHandler {
	return &RatesHandler{invoiceService: invoiceService}
}

// RegisterRoutes registers the API routes for the rates handler
func (h *RatesHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/v1/rates/eur", h.GetEURRate)
}

// GetEURRate handles the GET /rates/eur endpoint
// @Summary Get the EUR reference rate for a settlement date
// @Description Resolve the published EUR mid rate effective before the given date, walking back up to five days over non-publication days
// @Tags rates
// @Accept json
// @Produce json
// @Param date query string true "Settlement date (YYYY-MM-DD)"
// @Success 200 {object} model.RateResponse "Resolved rate"
// @Failure 400 {object} model.ErrorResponse "Invalid date"
// @Failure 502 {object} model.ErrorResponse "No rate published in the lookback window"
// @Router /v1/rates/eur [get]
func (h *RatesHandler) GetEURRate(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("date", "Date is required"))
		return
	}
	date, err := parseDate(dateStr)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("date", err.Error()))
		return
	}

	rate, err := h.invoiceService.GetReferenceRate(c.Request.Context(), date)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	respondOK(c, model.RateResponse{Data: rate})
}
