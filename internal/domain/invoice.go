package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateOnly is a custom type for handling date-only strings from JSON
type DateOnly struct {
	time.Time
}

// UnmarshalJSON implements custom unmarshaling for date-only strings
func (d *DateOnly) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	// Handle null/empty dates
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}

	// Parse date-only format
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON implements custom marshaling for date-only strings
func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format("2006-01-02"))
}

// InvoiceKind distinguishes original invoices from correction invoices.
// The kind is fixed at creation and never changes.
type InvoiceKind string

const (
	KindOriginal   InvoiceKind = "ORIGINAL"
	KindCorrection InvoiceKind = "CORRECTION"
)

// Currency is the invoice settlement currency. Only PLN and EUR are supported.
type Currency string

const (
	CurrencyPLN Currency = "PLN"
	CurrencyEUR Currency = "EUR"
)

// DeliveryMethod describes how an issued invoice was delivered to the buyer.
type DeliveryMethod string

const (
	DeliveryEmail DeliveryMethod = "EMAIL"
	DeliveryPost  DeliveryMethod = "POST"
)

// Buyer identifies the invoiced counterparty.
type Buyer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

// LineItem represents a single billed position on an invoice.
// NetValue, VatAmount and GrossValue are derived fields: they are recomputed
// from NetPrice, Quantity and VatRate at every mutation point and are never
// an independent source of truth.
type LineItem struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Unit       string          `json:"unit"`
	NetPrice   decimal.Decimal `json:"net_price"`
	VatRate    decimal.Decimal `json:"vat_rate"` // fraction, e.g. 0.23
	NetValue   decimal.Decimal `json:"net_value"`
	VatAmount  decimal.Decimal `json:"vat_amount"`
	GrossValue decimal.Decimal `json:"gross_value"`
}

// CorrectionDetails is present on invoices of KindCorrection only and ties the
// correction to exactly one original invoice. Lineage is flat: a correction
// always references an original, never another correction.
//
// The delta fields are computed against the original's current totals when the
// correction is created or read back; they are display values, not stored truth.
type CorrectionDetails struct {
	OriginalID uuid.UUID       `json:"original_id"`
	NetDelta   decimal.Decimal `json:"net_delta"`
	VatDelta   decimal.Decimal `json:"vat_delta"`
	GrossDelta decimal.Decimal `json:"gross_delta"`
}

// Invoice is the core aggregate: a VAT invoice issued for a transport order or
// entered manually, or a correction amending an earlier original.
type Invoice struct {
	ID                  uuid.UUID          `json:"id"`
	Number              int                `json:"number"` // scoped to (year, month, kind)
	Kind                InvoiceKind        `json:"kind"`
	Correction          *CorrectionDetails `json:"correction,omitempty"`
	IssueDate           DateOnly           `json:"issue_date"`
	SaleDate            DateOnly           `json:"sale_date"`
	SentDate            *DateOnly          `json:"sent_date,omitempty"`
	DeliveryMethod      *DeliveryMethod    `json:"delivery_method,omitempty"`
	HasPaid             bool               `json:"has_paid"`
	Buyer               Buyer              `json:"buyer"`
	Currency            Currency           `json:"currency"`
	TotalNet            decimal.Decimal    `json:"total_net"`
	TotalVat            decimal.Decimal    `json:"total_vat"`
	TotalGross          decimal.Decimal    `json:"total_gross"`
	PaymentMethod       string             `json:"payment_method"`
	PaymentDeadlineDays int                `json:"payment_deadline_days"`
	Comments            string             `json:"comments"`
	Items               []LineItem         `json:"items"`
	OrderID             *uuid.UUID         `json:"order_id,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// IsCorrection reports whether the invoice is a correction invoice.
func (i *Invoice) IsCorrection() bool {
	return i.Kind == KindCorrection
}

// DisplayNumber renders the legal invoice number: "12/05/2026" for originals,
// "3/05/2026/K" for corrections.
func (i *Invoice) DisplayNumber() string {
	base := fmt.Sprintf("%d/%02d/%d", i.Number, int(i.IssueDate.Month()), i.IssueDate.Year())
	if i.Kind == KindCorrection {
		return base + "/K"
	}
	return base
}

// PaymentDeadline returns the date by which payment is due.
func (i *Invoice) PaymentDeadline() time.Time {
	return i.IssueDate.AddDate(0, 0, i.PaymentDeadlineDays)
}

// ExchangeRate is a published daily reference rate used to convert a
// foreign-currency invoice amount into PLN. Fetched per computation,
// not persisted.
type ExchangeRate struct {
	Rate          decimal.Decimal `json:"rate"`
	TableID       string          `json:"table_id"`
	EffectiveDate time.Time       `json:"effective_date"`
}
