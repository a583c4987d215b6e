package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/freightdesk/invoicing-service/internal/domain"
)

// oneDecimal is the upper bound for a VAT rate expressed as a fraction.
var oneDecimal = decimal.NewFromInt(1)

// validateInvoiceInput checks caller-supplied invoice data. It runs before
// any sequence number is allocated, so rejected input has no side effects.
func validateInvoiceInput(input InvoiceInput) error {
	if input.IssueDate.IsZero() {
		return domain.NewValidationError("issue_date", "issue date is required")
	}
	if input.SaleDate.IsZero() {
		return domain.NewValidationError("sale_date", "sale date is required")
	}
	if input.Buyer.Name == "" {
		return domain.NewValidationError("buyer.name", "buyer name is required")
	}
	if input.Buyer.TaxID == "" {
		return domain.NewValidationError("buyer.tax_id", "buyer tax id is required")
	}
	if input.Currency != domain.CurrencyPLN && input.Currency != domain.CurrencyEUR {
		return domain.NewValidationError("currency", fmt.Sprintf("unsupported currency %q", input.Currency))
	}
	if input.PaymentMethod == "" {
		return domain.NewValidationError("payment_method", "payment method is required")
	}
	if input.PaymentDeadlineDays < 0 {
		return domain.NewValidationError("payment_deadline_days", "payment deadline must not be negative")
	}
	return validateItems(input.Items)
}

// validateCorrectionInput checks caller-supplied correction data. Buyer and
// payment context are cloned from the original and need no validation here.
func validateCorrectionInput(input CorrectionInput) error {
	if input.IssueDate.IsZero() {
		return domain.NewValidationError("issue_date", "issue date is required")
	}
	if input.SaleDate.IsZero() {
		return domain.NewValidationError("sale_date", "sale date is required")
	}
	return validateItems(input.Items)
}

func validateItems(items []LineItemInput) error {
	if len(items) == 0 {
		return domain.NewValidationError("items", "at least one line item is required")
	}
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if item.Name == "" {
			return domain.NewValidationError(field+".name", "item name is required")
		}
		if item.Quantity <= 0 {
			return domain.NewValidationError(field+".quantity", "quantity must be positive")
		}
		if item.NetPrice.IsNegative() {
			return domain.NewValidationError(field+".net_price", "net price must not be negative")
		}
		if item.VatRate.IsNegative() || item.VatRate.GreaterThan(oneDecimal) {
			return domain.NewValidationError(field+".vat_rate", "vat rate must be a fraction between 0 and 1")
		}
	}
	return nil
}
