package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/freightdesk/invoicing-service/internal/domain"
)

// NumberAssigner allocates the invoice number inside the same transaction
// that persists the invoice, so that "number issued" and "invoice stored"
// commit or roll back as one fact. The lifecycle service supplies it,
// typically backed by the sequence allocator's NextNumberTx.
type NumberAssigner func(ctx context.Context, tx pgx.Tx) (int, error)

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	// CreateInvoice persists a new invoice and its line items, assigning the
	// sequence number through assign within the same transaction.
	CreateInvoice(ctx context.Context, invoice *domain.Invoice, assign NumberAssigner) (*domain.Invoice, error)

	// GetInvoiceByID retrieves an invoice with its line items.
	GetInvoiceByID(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error)

	// UpdateInvoice replaces the invoice's mutable fields and its line-item
	// set. Item identities are preserved by their ids.
	UpdateInvoice(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error)

	// DeleteInvoice removes the invoice and its line items.
	DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) error

	// ListInvoices retrieves invoices with optional filters and pagination.
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) (*domain.PaginatedInvoices, error)

	// GetCorrectionForOriginal returns the correction referencing the given
	// original, or domain.ErrNotFound when none exists.
	GetCorrectionForOriginal(ctx context.Context, originalID uuid.UUID) (*domain.Invoice, error)

	// HasInvoiceForOrder reports whether any invoice references the order.
	HasInvoiceForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// OrderRepository defines read access to transport orders. Orders are owned
// by another part of the system; the invoicing core only reads them.
type OrderRepository interface {
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
}
