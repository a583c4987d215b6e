package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freightdesk/invoicing-service/internal/domain"
	"github.com/freightdesk/invoicing-service/internal/service"
)

// ErrorDetail represents detailed error information for a specific field
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// LineItemRequest is a line item in an invoice create or update request.
// The id is only meaningful on update, where it ties the row to an existing
// stored item.
type LineItemRequest struct {
	ID       *uuid.UUID      `json:"id,omitempty"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Unit     string          `json:"unit"`
	NetPrice decimal.Decimal `json:"net_price"`
	VatRate  decimal.Decimal `json:"vat_rate"`
}

// InvoiceRequest is the request body for creating or updating an invoice.
type InvoiceRequest struct {
	IssueDate           domain.DateOnly   `json:"issue_date"`
	SaleDate            domain.DateOnly   `json:"sale_date"`
	SentDate            *domain.DateOnly  `json:"sent_date,omitempty"`
	DeliveryMethod      *string           `json:"delivery_method,omitempty"`
	HasPaid             bool              `json:"has_paid"`
	Buyer               domain.Buyer      `json:"buyer"`
	Currency            string            `json:"currency"`
	PaymentMethod       string            `json:"payment_method"`
	PaymentDeadlineDays int               `json:"payment_deadline_days"`
	Comments            string            `json:"comments"`
	Items               []LineItemRequest `json:"items"`
}

// ToInput converts the request body to a service input.
func (r *InvoiceRequest) ToInput() service.InvoiceInput {
	var sentDate *time.Time
	if r.SentDate != nil {
		t := r.SentDate.Time
		sentDate = &t
	}
	var delivery *domain.DeliveryMethod
	if r.DeliveryMethod != nil {
		d := domain.DeliveryMethod(*r.DeliveryMethod)
		delivery = &d
	}
	return service.InvoiceInput{
		IssueDate:           r.IssueDate.Time,
		SaleDate:            r.SaleDate.Time,
		SentDate:            sentDate,
		DeliveryMethod:      delivery,
		HasPaid:             r.HasPaid,
		Buyer:               r.Buyer,
		Currency:            domain.Currency(r.Currency),
		PaymentMethod:       r.PaymentMethod,
		PaymentDeadlineDays: r.PaymentDeadlineDays,
		Comments:            r.Comments,
		Items:               toItemInputs(r.Items),
	}
}

// ToCorrectionInput extracts the correction-editable subset of the request.
// Buyer, currency and payment context are owned by the original and ignored.
func (r *InvoiceRequest) ToCorrectionInput() service.CorrectionInput {
	return service.CorrectionInput{
		IssueDate: r.IssueDate.Time,
		SaleDate:  r.SaleDate.Time,
		Comments:  r.Comments,
		Items:     toItemInputs(r.Items),
	}
}

// CorrectionRequest is the request body for issuing a correction invoice.
type CorrectionRequest struct {
	IssueDate domain.DateOnly   `json:"issue_date"`
	SaleDate  domain.DateOnly   `json:"sale_date"`
	Comments  string            `json:"comments"`
	Items     []LineItemRequest `json:"items"`
}

// ToInput converts the request body to a service input.
func (r *CorrectionRequest) ToInput() service.CorrectionInput {
	return service.CorrectionInput{
		IssueDate: r.IssueDate.Time,
		SaleDate:  r.SaleDate.Time,
		Comments:  r.Comments,
		Items:     toItemInputs(r.Items),
	}
}

// FromOrderRequest is the request body for generating an invoice from a
// transport order.
type FromOrderRequest struct {
	IssueDate domain.DateOnly `json:"issue_date"`
}

func toItemInputs(items []LineItemRequest) []service.LineItemInput {
	inputs := make([]service.LineItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, service.LineItemInput{
			ID:       item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Unit:     item.Unit,
			NetPrice: item.NetPrice,
			VatRate:  item.VatRate,
		})
	}
	return inputs
}

// InvoiceResponse wraps a single invoice in the response envelope.
type InvoiceResponse struct {
	Data *domain.Invoice `json:"data"`
}

// InvoiceListResponse is the paginated listing envelope.
type InvoiceListResponse struct {
	Data       []domain.Invoice  `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

// RateResponse wraps a resolved reference rate.
type RateResponse struct {
	Data *domain.ExchangeRate `json:"data"`
}
