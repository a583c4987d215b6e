package view

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/freightdesk/invoicing-service/internal/domain"
	"github.com/freightdesk/invoicing-service/internal/finance"
)

// Seller is the issuing company's legal and bank metadata, printed on every
// document. Loaded from configuration at startup.
type Seller struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	TaxID       string `json:"tax_id"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// DocumentParty is a printed party block.
type DocumentParty struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

// DocumentLine is a printed line item row.
type DocumentLine struct {
	Position   int             `json:"position"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Unit       string          `json:"unit"`
	NetPrice   decimal.Decimal `json:"net_price"`
	VatRate    string          `json:"vat_rate"` // printed as a percentage, e.g. "23%"
	NetValue   decimal.Decimal `json:"net_value"`
	VatAmount  decimal.Decimal `json:"vat_amount"`
	GrossValue decimal.Decimal `json:"gross_value"`
}

// CorrectionSection is printed on correction documents only. The deltas are
// the signed differences against the corrected original's current totals.
type CorrectionSection struct {
	OriginalNumber    string          `json:"original_number"`
	OriginalIssueDate domain.DateOnly `json:"original_issue_date"`
	NetDelta          decimal.Decimal `json:"net_delta"`
	VatDelta          decimal.Decimal `json:"vat_delta"`
	GrossDelta        decimal.Decimal `json:"gross_delta"`
	DeltaInWords      string          `json:"delta_in_words"`
}

// PLNConversion is printed on EUR invoices: the published reference rate used
// to express the VAT and gross amounts in PLN.
type PLNConversion struct {
	Rate          decimal.Decimal `json:"rate"`
	TableID       string          `json:"table_id"`
	EffectiveDate domain.DateOnly `json:"effective_date"`
	VatPLN        decimal.Decimal `json:"vat_pln"`
	GrossPLN      decimal.Decimal `json:"gross_pln"`
}

// InvoiceDocument is the fully rendered invoice: everything a printed or
// mailed invoice carries, assembled from the stored aggregate plus seller
// metadata and, for EUR invoices, the resolved reference rate.
type InvoiceDocument struct {
	Number          string             `json:"number"`
	Kind            domain.InvoiceKind `json:"kind"`
	IssueDate       domain.DateOnly    `json:"issue_date"`
	SaleDate        domain.DateOnly    `json:"sale_date"`
	Seller          DocumentParty      `json:"seller"`
	Buyer           DocumentParty      `json:"buyer"`
	Currency        domain.Currency    `json:"currency"`
	Lines           []DocumentLine     `json:"lines"`
	TotalNet        decimal.Decimal    `json:"total_net"`
	TotalVat        decimal.Decimal    `json:"total_vat"`
	TotalGross      decimal.Decimal    `json:"total_gross"`
	AmountInWords   string             `json:"amount_in_words"`
	PaymentMethod   string             `json:"payment_method"`
	PaymentDeadline domain.DateOnly    `json:"payment_deadline"`
	BankName        string             `json:"bank_name"`
	BankAccount     string             `json:"bank_account"`
	Comments        string             `json:"comments,omitempty"`
	Correction      *CorrectionSection `json:"correction,omitempty"`
	PLNConversion   *PLNConversion     `json:"pln_conversion,omitempty"`
}

// InvoiceLoader loads an invoice with its correction delta resolved.
type InvoiceLoader interface {
	GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error)
}

// RateSource resolves the EUR reference rate for a settlement date.
type RateSource interface {
	GetRate(ctx context.Context, targetDate time.Time) (*domain.ExchangeRate, error)
}

// Assembler builds printable invoice documents.
type Assembler struct {
	seller   Seller
	invoices InvoiceLoader
	rates    RateSource
	logger   zerolog.Logger
}

// NewAssembler creates a new document assembler.
func NewAssembler(seller Seller, invoices InvoiceLoader, rates RateSource, logger zerolog.Logger) *Assembler {
	return &Assembler{
		seller:   seller,
		invoices: invoices,
		rates:    rates,
		logger:   logger.With().Str("component", "document-assembler").Logger(),
	}
}

// BuildDocument assembles the printable document for an invoice. For EUR
// invoices the reference rate is resolved at assembly time relative to the
// issue date; if no rate can be resolved the assembly fails rather than
// emitting a document with a missing conversion block.
func (a *Assembler) BuildDocument(ctx context.Context, invoiceID uuid.UUID) (*InvoiceDocument, error) {
	invoice, err := a.invoices.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	doc := &InvoiceDocument{
		Number:    invoice.DisplayNumber(),
		Kind:      invoice.Kind,
		IssueDate: invoice.IssueDate,
		SaleDate:  invoice.SaleDate,
		Seller: DocumentParty{
			Name:    a.seller.Name,
			Address: a.seller.Address,
			TaxID:   a.seller.TaxID,
		},
		Buyer: DocumentParty{
			Name:    invoice.Buyer.Name,
			Address: invoice.Buyer.Address,
			TaxID:   invoice.Buyer.TaxID,
		},
		Currency:        invoice.Currency,
		Lines:           buildLines(invoice.Items),
		TotalNet:        invoice.TotalNet,
		TotalVat:        invoice.TotalVat,
		TotalGross:      invoice.TotalGross,
		AmountInWords:   finance.AmountInWords(invoice.TotalGross, invoice.Currency),
		PaymentMethod:   invoice.PaymentMethod,
		PaymentDeadline: domain.DateOnly{Time: invoice.PaymentDeadline()},
		BankName:        a.seller.BankName,
		BankAccount:     a.seller.BankAccount,
		Comments:        invoice.Comments,
	}

	if invoice.Correction != nil {
		section, err := a.buildCorrectionSection(ctx, invoice)
		if err != nil {
			return nil, err
		}
		doc.Correction = section
	}

	if invoice.Currency == domain.CurrencyEUR {
		conversion, err := a.buildPLNConversion(ctx, invoice)
		if err != nil {
			return nil, err
		}
		doc.PLNConversion = conversion
	}

	return doc, nil
}

func buildLines(items []domain.LineItem) []DocumentLine {
	lines := make([]DocumentLine, 0, len(items))
	for i, item := range items {
		lines = append(lines, DocumentLine{
			Position:   i + 1,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
			NetPrice:   item.NetPrice,
			VatRate:    formatVatRate(item.VatRate),
			NetValue:   item.NetValue,
			VatAmount:  item.VatAmount,
			GrossValue: item.GrossValue,
		})
	}
	return lines
}

// formatVatRate renders a fractional rate as a percentage label, e.g. 0.23
// becomes "23%".
func formatVatRate(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String() + "%"
}

func (a *Assembler) buildCorrectionSection(ctx context.Context, correction *domain.Invoice) (*CorrectionSection, error) {
	original, err := a.invoices.GetInvoice(ctx, correction.Correction.OriginalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load corrected original: %w", err)
	}

	return &CorrectionSection{
		OriginalNumber:    original.DisplayNumber(),
		OriginalIssueDate: original.IssueDate,
		NetDelta:          correction.Correction.NetDelta,
		VatDelta:          correction.Correction.VatDelta,
		GrossDelta:        correction.Correction.GrossDelta,
		DeltaInWords:      finance.AmountInWords(correction.Correction.GrossDelta, correction.Currency),
	}, nil
}

func (a *Assembler) buildPLNConversion(ctx context.Context, invoice *domain.Invoice) (*PLNConversion, error) {
	rate, err := a.rates.GetRate(ctx, invoice.IssueDate.Time)
	if err != nil {
		return nil, err
	}

	a.logger.Debug().
		Str("invoice", invoice.DisplayNumber()).
		Str("table", rate.TableID).
		Msg("resolved reference rate for document")

	return &PLNConversion{
		Rate:          rate.Rate,
		TableID:       rate.TableID,
		EffectiveDate: domain.DateOnly{Time: rate.EffectiveDate},
		VatPLN:        finance.ConvertToPLN(invoice.TotalVat, rate.Rate),
		GrossPLN:      finance.ConvertToPLN(invoice.TotalGross, rate.Rate),
	}, nil
}
