package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/freightdesk/invoicing-service/internal/domain"
	"github.com/freightdesk/invoicing-service/internal/finance"
	"github.com/freightdesk/invoicing-service/internal/repository"
)

// LineItemInput is a caller-supplied line item. A nil ID marks a new item;
// a non-nil ID refers to an existing item on update and drives reconciliation.
type LineItemInput struct {
	ID       *uuid.UUID
	Name     string
	Quantity int
	Unit     string
	NetPrice decimal.Decimal
	VatRate  decimal.Decimal
}

// InvoiceInput carries the caller-editable invoice fields for creation and
// update of original invoices.
type InvoiceInput struct {
	IssueDate           time.Time
	SaleDate            time.Time
	SentDate            *time.Time
	DeliveryMethod      *domain.DeliveryMethod
	HasPaid             bool
	Buyer               domain.Buyer
	Currency            domain.Currency
	PaymentMethod       string
	PaymentDeadlineDays int
	Comments            string
	Items               []LineItemInput
}

// CorrectionInput carries the caller-editable fields of a correction.
// Buyer, currency and payment context are cloned from the original and are
// not part of the input.
type CorrectionInput struct {
	IssueDate time.Time
	SaleDate  time.Time
	Comments  string
	Items     []LineItemInput
}

// NumberAllocator allocates the next invoice number for a bucket inside a
// caller-owned transaction (see sequence.PostgresAllocator.NextNumberTx).
type NumberAllocator interface {
	NextNumberTx(ctx context.Context, tx pgx.Tx, date time.Time, kind domain.InvoiceKind) (int, error)
}

// RateSource resolves the EUR reference rate for a settlement date.
type RateSource interface {
	GetRate(ctx context.Context, targetDate time.Time) (*domain.ExchangeRate, error)
}

// Options holds the business policy knobs of the invoice lifecycle.
type Options struct {
	// DomesticCountry is the ISO country code whose orders get the standard
	// VAT rate; all other counterparty countries invoice at 0%.
	DomesticCountry string
	// StandardVatRate is the domestic VAT rate fraction, e.g. 0.23.
	StandardVatRate decimal.Decimal
	// DefaultPaymentMethod is used for invoices generated from orders.
	DefaultPaymentMethod string
	// DefaultPaymentDeadlineDays is used for invoices generated from orders.
	DefaultPaymentDeadlineDays int
}

// InvoiceService defines the invoice lifecycle: creation, update and
// correction of invoices, composing number allocation, financial computation
// and exchange-rate resolution.
type InvoiceService interface {
	CreateOriginal(ctx context.Context, input InvoiceInput) (*domain.Invoice, error)
	CreateFromOrder(ctx context.Context, orderID uuid.UUID, issueDate time.Time) (*domain.Invoice, error)
	UpdateOriginal(ctx context.Context, invoiceID uuid.UUID, input InvoiceInput) (*domain.Invoice, error)
	CreateCorrection(ctx context.Context, originalID uuid.UUID, input CorrectionInput) (*domain.Invoice, error)
	UpdateCorrection(ctx context.Context, invoiceID uuid.UUID, input CorrectionInput) (*domain.Invoice, error)
	DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) error

	GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error)
	GetCorrectionFor(ctx context.Context, originalID uuid.UUID) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) (*domain.PaginatedInvoices, error)
	GetReferenceRate(ctx context.Context, date time.Time) (*domain.ExchangeRate, error)
}

// InvoiceServiceImpl implements the InvoiceService interface
type InvoiceServiceImpl struct {
	invoices  repository.InvoiceRepository
	orders    repository.OrderRepository
	allocator NumberAllocator
	rates     RateSource
	opts      Options
	logger    zerolog.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoices repository.InvoiceRepository,
	orders repository.OrderRepository,
	allocator NumberAllocator,
	rates RateSource,
	opts Options,
	logger zerolog.Logger,
) *InvoiceServiceImpl {
	return &InvoiceServiceImpl{
		invoices:  invoices,
		orders:    orders,
		allocator: allocator,
		rates:     rates,
		opts:      opts,
		logger:    logger.With().Str("component", "invoice-service").Logger(),
	}
}

// CreateOriginal validates the input, allocates a number in the
// (issue year, issue month, original) bucket and persists the invoice.
// Validation runs before allocation: rejected input must never consume a
// sequence number, since gaps in legally-issued sequences are a compliance
// problem.
func (s *InvoiceServiceImpl) CreateOriginal(ctx context.Context, input InvoiceInput) (*domain.Invoice, error) {
	if err := validateInvoiceInput(input); err != nil {
		return nil, err
	}

	invoice := s.buildInvoice(input, domain.KindOriginal)
	return s.persistNew(ctx, invoice)
}

// CreateFromOrder derives an invoice from a transport order. The VAT rate
// follows the counterparty country: domestic orders get the standard rate,
// foreign ones 0%. An order can be invoiced at most once.
func (s *InvoiceServiceImpl) CreateFromOrder(ctx context.Context, orderID uuid.UUID, issueDate time.Time) (*domain.Invoice, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	invoiced, err := s.invoices.HasInvoiceForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if invoiced {
		return nil, fmt.Errorf("%w: order %s", domain.ErrDuplicateInvoice, order.OrderNumber)
	}

	vatRate := decimal.Zero
	if order.CounterpartyCountry == s.opts.DomesticCountry {
		vatRate = s.opts.StandardVatRate
	}

	input := InvoiceInput{
		IssueDate: issueDate,
		SaleDate:  order.UnloadingDate,
		Buyer: domain.Buyer{
			Name:    order.CounterpartyName,
			Address: order.CounterpartyAddress,
			TaxID:   order.CounterpartyTaxID,
		},
		Currency:            order.Currency,
		PaymentMethod:       s.opts.DefaultPaymentMethod,
		PaymentDeadlineDays: s.opts.DefaultPaymentDeadlineDays,
		Items: []LineItemInput{
			{
				Name:     fmt.Sprintf("Transport service: %s (%s)", order.CargoDescription, order.OrderNumber),
				Quantity: 1,
				Unit:     "service",
				NetPrice: order.FreightPrice,
				VatRate:  vatRate,
			},
		},
	}
	if err := validateInvoiceInput(input); err != nil {
		return nil, err
	}

	invoice := s.buildInvoice(input, domain.KindOriginal)
	invoice.OrderID = &order.ID

	return s.persistNew(ctx, invoice)
}

// UpdateOriginal reconciles the stored invoice with the incoming data: items
// matching by id are updated in place, items missing from the input are
// removed, items without a known id are inserted as new. Totals are
// recomputed after reconciliation.
func (s *InvoiceServiceImpl) UpdateOriginal(ctx context.Context, invoiceID uuid.UUID, input InvoiceInput) (*domain.Invoice, error) {
	stored, err := s.invoices.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if stored.IsCorrection() {
		return nil, domain.NewValidationError("id", "invoice is a correction; use the correction update operation")
	}
	if err := validateInvoiceInput(input); err != nil {
		return nil, err
	}

	stored.IssueDate = domain.DateOnly{Time: input.IssueDate}
	stored.SaleDate = domain.DateOnly{Time: input.SaleDate}
	stored.SentDate = toDateOnly(input.SentDate)
	stored.DeliveryMethod = input.DeliveryMethod
	stored.HasPaid = input.HasPaid
	stored.Buyer = input.Buyer
	stored.Currency = input.Currency
	stored.PaymentMethod = input.PaymentMethod
	stored.PaymentDeadlineDays = input.PaymentDeadlineDays
	stored.Comments = input.Comments
	s.applyItems(stored, input.Items)

	updated, err := s.invoices.UpdateInvoice(ctx, stored)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("invoice_id", updated.ID.String()).
		Str("number", updated.DisplayNumber()).Msg("invoice updated")
	return updated, nil
}

// CreateCorrection issues a correction invoice for an original. The target
// must be the original itself: passing a correction's id fails with
// ErrInvalidCorrectionTarget. Buyer and payment context are cloned from the
// original; the correction's own totals come from the supplied items, and the
// displayed delta is computed against the original's current totals. The
// original is only read, never mutated.
func (s *InvoiceServiceImpl) CreateCorrection(ctx context.Context, originalID uuid.UUID, input CorrectionInput) (*domain.Invoice, error) {
	original, err := s.invoices.GetInvoiceByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if original.IsCorrection() {
		return nil, fmt.Errorf("%w: %s is a correction", domain.ErrInvalidCorrectionTarget, originalID)
	}
	if err := validateCorrectionInput(input); err != nil {
		return nil, err
	}

	correction := &domain.Invoice{
		ID:                  uuid.New(),
		Kind:                domain.KindCorrection,
		IssueDate:           domain.DateOnly{Time: input.IssueDate},
		SaleDate:            domain.DateOnly{Time: input.SaleDate},
		Buyer:               original.Buyer,
		Currency:            original.Currency,
		PaymentMethod:       original.PaymentMethod,
		PaymentDeadlineDays: original.PaymentDeadlineDays,
		Comments:            input.Comments,
		Correction:          &domain.CorrectionDetails{OriginalID: original.ID},
	}
	s.applyItems(correction, input.Items)

	persisted, err := s.persistNew(ctx, correction)
	if err != nil {
		return nil, err
	}

	persisted.Correction.NetDelta, persisted.Correction.VatDelta, persisted.Correction.GrossDelta =
		finance.ComputeCorrectionDelta(original, persisted)
	return persisted, nil
}

// UpdateCorrection behaves like UpdateOriginal but on the correction record;
// the original is read only to recompute the displayed delta.
func (s *InvoiceServiceImpl) UpdateCorrection(ctx context.Context, invoiceID uuid.UUID, input CorrectionInput) (*domain.Invoice, error) {
	stored, err := s.invoices.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !stored.IsCorrection() {
		return nil, domain.NewValidationError("id", "invoice is not a correction")
	}
	if err := validateCorrectionInput(input); err != nil {
		return nil, err
	}

	stored.IssueDate = domain.DateOnly{Time: input.IssueDate}
	stored.SaleDate = domain.DateOnly{Time: input.SaleDate}
	stored.Comments = input.Comments
	s.applyItems(stored, input.Items)

	updated, err := s.invoices.UpdateInvoice(ctx, stored)
	if err != nil {
		return nil, err
	}

	return s.withCorrectionDelta(ctx, updated)
}

// DeleteInvoice removes the invoice and its line items. Whether deletion is
// allowed at all (not sent, not settled, no downstream correction) is policy
// enforced by the caller, not by this layer.
func (s *InvoiceServiceImpl) DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	if err := s.invoices.DeleteInvoice(ctx, invoiceID); err != nil {
		return err
	}
	s.logger.Info().Str("invoice_id", invoiceID.String()).Msg("invoice deleted")
	return nil
}

// GetInvoice retrieves an invoice snapshot. For corrections the displayed
// delta is recomputed against the original's current totals on every read.
func (s *InvoiceServiceImpl) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoices.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.withCorrectionDelta(ctx, invoice)
}

// GetCorrectionFor returns the correction issued for an original invoice,
// with its delta resolved. ErrNotFound when the original is uncorrected.
func (s *InvoiceServiceImpl) GetCorrectionFor(ctx context.Context, originalID uuid.UUID) (*domain.Invoice, error) {
	correction, err := s.invoices.GetCorrectionForOriginal(ctx, originalID)
	if err != nil {
		return nil, err
	}
	return s.withCorrectionDelta(ctx, correction)
}

// ListInvoices retrieves invoices with filters and pagination.
func (s *InvoiceServiceImpl) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) (*domain.PaginatedInvoices, error) {
	return s.invoices.ListInvoices(ctx, filter)
}

// GetReferenceRate resolves the EUR reference rate for a settlement date.
func (s *InvoiceServiceImpl) GetReferenceRate(ctx context.Context, date time.Time) (*domain.ExchangeRate, error) {
	return s.rates.GetRate(ctx, date)
}

// buildInvoice assembles a new invoice aggregate from validated input.
func (s *InvoiceServiceImpl) buildInvoice(input InvoiceInput, kind domain.InvoiceKind) *domain.Invoice {
	invoice := &domain.Invoice{
		ID:                  uuid.New(),
		Kind:                kind,
		IssueDate:           domain.DateOnly{Time: input.IssueDate},
		SaleDate:            domain.DateOnly{Time: input.SaleDate},
		SentDate:            toDateOnly(input.SentDate),
		DeliveryMethod:      input.DeliveryMethod,
		HasPaid:             input.HasPaid,
		Buyer:               input.Buyer,
		Currency:            input.Currency,
		PaymentMethod:       input.PaymentMethod,
		PaymentDeadlineDays: input.PaymentDeadlineDays,
		Comments:            input.Comments,
	}
	s.applyItems(invoice, input.Items)
	return invoice
}

// applyItems reconciles the invoice's line items with the incoming set and
// recomputes all derived values and totals. Incoming items that match a
// stored item by id keep that identity; unmatched incoming items get a fresh
// id; stored items absent from the input are dropped.
func (s *InvoiceServiceImpl) applyItems(invoice *domain.Invoice, inputs []LineItemInput) {
	existing := make(map[uuid.UUID]struct{}, len(invoice.Items))
	for _, item := range invoice.Items {
		existing[item.ID] = struct{}{}
	}

	items := make([]domain.LineItem, 0, len(inputs))
	for _, in := range inputs {
		id := uuid.New()
		if in.ID != nil {
			if _, ok := existing[*in.ID]; ok {
				id = *in.ID
			}
		}
		items = append(items, domain.LineItem{
			ID:       id,
			Name:     in.Name,
			Quantity: in.Quantity,
			Unit:     in.Unit,
			NetPrice: in.NetPrice,
			VatRate:  in.VatRate,
		})
	}

	invoice.Items = finance.RecomputeItems(items)
	invoice.TotalNet, invoice.TotalVat, invoice.TotalGross = finance.RecalculateTotals(invoice.Items)
}

// persistNew stores a freshly built invoice, allocating its number in the
// same transaction through the sequence allocator.
func (s *InvoiceServiceImpl) persistNew(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	issueDate := invoice.IssueDate.Time
	kind := invoice.Kind

	persisted, err := s.invoices.CreateInvoice(ctx, invoice, func(ctx context.Context, tx pgx.Tx) (int, error) {
		return s.allocator.NextNumberTx(ctx, tx, issueDate, kind)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("invoice_id", persisted.ID.String()).
		Str("number", persisted.DisplayNumber()).
		Str("kind", string(kind)).
		Msg("invoice created")
	return persisted, nil
}

// withCorrectionDelta fills the displayed delta of a correction from its
// original's current totals. Non-corrections pass through unchanged.
func (s *InvoiceServiceImpl) withCorrectionDelta(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	if invoice.Correction == nil {
		return invoice, nil
	}

	original, err := s.invoices.GetInvoiceByID(ctx, invoice.Correction.OriginalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load original for correction %s: %w", invoice.ID, err)
	}

	invoice.Correction.NetDelta, invoice.Correction.VatDelta, invoice.Correction.GrossDelta =
		finance.ComputeCorrectionDelta(original, invoice)
	return invoice, nil
}

// GetOriginalOf loads the original invoice a correction refers to.
func (s *InvoiceServiceImpl) GetOriginalOf(ctx context.Context, correction *domain.Invoice) (*domain.Invoice, error) {
	if correction.Correction == nil {
		return nil, fmt.Errorf("%w: invoice %s is not a correction", domain.ErrInvalidCorrectionTarget, correction.ID)
	}
	return s.invoices.GetInvoiceByID(ctx, correction.Correction.OriginalID)
}

func toDateOnly(t *time.Time) *domain.DateOnly {
	if t == nil {
		return nil
	}
	return &domain.DateOnly{Time: *t}
}
