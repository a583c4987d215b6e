package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/freightdesk/invoicing-service/internal/database"
	"github.com/freightdesk/invoicing-service/internal/domain"
)

// invoiceColumns is the column list shared by every invoice select.
const invoiceColumns = `
	id, number, kind, original_id, issue_date, sale_date, sent_date,
	delivery_method, has_paid, buyer_name, buyer_address, buyer_tax_id,
	currency, total_net, total_vat, total_gross, payment_method,
	payment_deadline_days, comments, order_id, created_at, updated_at`

// PostgresInvoiceRepository implements InvoiceRepository using PostgreSQL
type PostgresInvoiceRepository struct {
	db *database.PostgresDB
}

// NewPostgresInvoiceRepository creates a new PostgreSQL invoice repository
func NewPostgresInvoiceRepository(db *database.PostgresDB) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{db: db}
}

// CreateInvoice saves a new invoice and its line items. The sequence number
// is assigned through the NumberAssigner inside the same serializable
// transaction, so a committed number always has its invoice and a rolled-back
// invoice never consumes a number.
func (r *PostgresInvoiceRepository) CreateInvoice(ctx context.Context, invoice *domain.Invoice, assign NumberAssigner) (*domain.Invoice, error) {
	err := r.db.ExecuteSerializableTransaction(ctx, func(tx pgx.Tx) error {
		number, err := assign(ctx, tx)
		if err != nil {
			return err
		}
		invoice.Number = number

		var originalID *uuid.UUID
		if invoice.Correction != nil {
			originalID = &invoice.Correction.OriginalID
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO invoices (
				id, number, kind, original_id, issue_date, sale_date, sent_date,
				delivery_method, has_paid, buyer_name, buyer_address, buyer_tax_id,
				currency, total_net, total_vat, total_gross, payment_method,
				payment_deadline_days, comments, order_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			RETURNING created_at, updated_at
		`, invoice.ID, invoice.Number, string(invoice.Kind), originalID,
			invoice.IssueDate.Time, invoice.SaleDate.Time, sentDateValue(invoice.SentDate),
			deliveryMethodValue(invoice.DeliveryMethod), invoice.HasPaid, invoice.Buyer.Name, invoice.Buyer.Address,
			invoice.Buyer.TaxID, string(invoice.Currency), invoice.TotalNet, invoice.TotalVat,
			invoice.TotalGross, invoice.PaymentMethod, invoice.PaymentDeadlineDays,
			invoice.Comments, invoice.OrderID,
		).Scan(&invoice.CreatedAt, &invoice.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}

		return insertLineItems(ctx, tx, invoice.ID, invoice.Items)
	})
	if err != nil {
		return nil, database.TranslateError(err)
	}

	return invoice, nil
}

// GetInvoiceByID retrieves an invoice by its ID
func (r *PostgresInvoiceRepository) GetInvoiceByID(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error) {
	row := r.db.GetPool().QueryRow(ctx, `
		SELECT`+invoiceColumns+`
		FROM invoices
		WHERE id = $1
	`, invoiceID)

	invoice, err := scanInvoice(row)
	if err != nil {
		return nil, database.TranslateError(err)
	}

	if err := r.loadItems(ctx, invoice); err != nil {
		return nil, database.TranslateError(err)
	}

	return invoice, nil
}

// UpdateInvoice updates an existing invoice and replaces its line-item set.
// Line-item identity is carried by the ids supplied on the items, so the
// delete-and-reinsert below preserves surviving items and drops removed ones.
func (r *PostgresInvoiceRepository) UpdateInvoice(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	err := r.db.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		var updatedAt time.Time
		err := tx.QueryRow(ctx, `
			UPDATE invoices
			SET issue_date = $1, sale_date = $2, sent_date = $3, delivery_method = $4,
				has_paid = $5, buyer_name = $6, buyer_address = $7, buyer_tax_id = $8,
				currency = $9, total_net = $10, total_vat = $11, total_gross = $12,
				payment_method = $13, payment_deadline_days = $14, comments = $15,
				updated_at = now()
			WHERE id = $16
			RETURNING updated_at
		`, invoice.IssueDate.Time, invoice.SaleDate.Time, sentDateValue(invoice.SentDate),
			deliveryMethodValue(invoice.DeliveryMethod), invoice.HasPaid, invoice.Buyer.Name, invoice.Buyer.Address,
			invoice.Buyer.TaxID, string(invoice.Currency), invoice.TotalNet, invoice.TotalVat,
			invoice.TotalGross, invoice.PaymentMethod, invoice.PaymentDeadlineDays,
			invoice.Comments, invoice.ID,
		).Scan(&updatedAt)
		if err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		invoice.UpdatedAt = updatedAt

		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoice.ID); err != nil {
			return fmt.Errorf("failed to delete invoice items: %w", err)
		}

		return insertLineItems(ctx, tx, invoice.ID, invoice.Items)
	})
	if err != nil {
		return nil, database.TranslateError(err)
	}

	return invoice, nil
}

// DeleteInvoice deletes an invoice by its ID (cascade removes its items).
func (r *PostgresInvoiceRepository) DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	commandTag, err := r.db.GetPool().Exec(ctx, `DELETE FROM invoices WHERE id = $1`, invoiceID)
	if err != nil {
		return database.TranslateError(fmt.Errorf("failed to delete invoice: %w", err))
	}

	if commandTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %s", domain.ErrNotFound, invoiceID)
	}

	return nil
}

// ListInvoices retrieves invoices with optional filters and pagination
func (r *PostgresInvoiceRepository) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) (*domain.PaginatedInvoices, error) {
	result := &domain.PaginatedInvoices{
		Data:       []domain.Invoice{},
		Pagination: domain.Pagination{},
	}

	// Set default pagination values if not provided
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	// Build query conditions
	conditions := []string{}
	args := []interface{}{}
	argCount := 1

	if filter.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argCount))
		args = append(args, string(*filter.Kind))
		argCount++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("issue_date >= $%d", argCount))
		args = append(args, filter.StartDate)
		argCount++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("issue_date <= $%d", argCount))
		args = append(args, filter.EndDate)
		argCount++
	}
	if filter.Buyer != "" {
		conditions = append(conditions, fmt.Sprintf("buyer_name ILIKE $%d", argCount))
		args = append(args, "%"+filter.Buyer+"%") // Case-insensitive partial match
		argCount++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total items
	var totalItems int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM invoices %s`, whereClause)
	if err := r.db.GetPool().QueryRow(ctx, countQuery, args...).Scan(&totalItems); err != nil {
		return nil, database.TranslateError(fmt.Errorf("failed to count invoices: %w", err))
	}

	result.Pagination.TotalItems = totalItems
	result.Pagination.Limit = filter.Limit
	result.Pagination.CurrentPage = filter.Page
	result.Pagination.TotalPages = int(math.Ceil(float64(totalItems) / float64(filter.Limit)))

	if totalItems == 0 {
		return result, nil
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)

	query := fmt.Sprintf(`
		SELECT`+invoiceColumns+`
		FROM invoices
		%s
		ORDER BY issue_date DESC, number DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argCount, argCount+1)

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, database.TranslateError(fmt.Errorf("failed to query invoices: %w", err))
	}
	defer rows.Close()

	invoiceMap := make(map[uuid.UUID]*domain.Invoice)
	var invoiceIDs []uuid.UUID

	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, database.TranslateError(err)
		}
		invoice.Items = []domain.LineItem{}
		invoiceMap[invoice.ID] = invoice
		invoiceIDs = append(invoiceIDs, invoice.ID)
		result.Data = append(result.Data, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, database.TranslateError(fmt.Errorf("error iterating invoices: %w", err))
	}

	if len(invoiceIDs) == 0 {
		return result, nil
	}

	// Fetch items for all invoices in a single query instead of one query
	// per invoice.
	placeholders := make([]string, len(invoiceIDs))
	itemArgs := make([]interface{}, len(invoiceIDs))
	for i, id := range invoiceIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		itemArgs[i] = id
	}

	itemQuery := fmt.Sprintf(`
		SELECT invoice_id, id, name, quantity, unit, net_price, vat_rate,
			net_value, vat_amount, gross_value
		FROM invoice_items
		WHERE invoice_id IN (%s)
		ORDER BY invoice_id, position
	`, strings.Join(placeholders, ", "))

	itemRows, err := r.db.GetPool().Query(ctx, itemQuery, itemArgs...)
	if err != nil {
		return nil, database.TranslateError(fmt.Errorf("failed to query invoice items: %w", err))
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var invoiceID uuid.UUID
		var item domain.LineItem
		if err := itemRows.Scan(
			&invoiceID, &item.ID, &item.Name, &item.Quantity, &item.Unit,
			&item.NetPrice, &item.VatRate, &item.NetValue, &item.VatAmount, &item.GrossValue,
		); err != nil {
			return nil, database.TranslateError(fmt.Errorf("failed to scan invoice item: %w", err))
		}
		if invoice, ok := invoiceMap[invoiceID]; ok {
			invoice.Items = append(invoice.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, database.TranslateError(fmt.Errorf("error iterating invoice items: %w", err))
	}

	for i, id := range invoiceIDs {
		if invoice, ok := invoiceMap[id]; ok {
			result.Data[i] = *invoice
		}
	}

	return result, nil
}

// GetCorrectionForOriginal returns the correction invoice referencing the
// given original, or domain.ErrNotFound when the original is uncorrected.
func (r *PostgresInvoiceRepository) GetCorrectionForOriginal(ctx context.Context, originalID uuid.UUID) (*domain.Invoice, error) {
	row := r.db.GetPool().QueryRow(ctx, `
		SELECT`+invoiceColumns+`
		FROM invoices
		WHERE original_id = $1
		LIMIT 1
	`, originalID)

	invoice, err := scanInvoice(row)
	if err != nil {
		return nil, database.TranslateError(err)
	}

	if err := r.loadItems(ctx, invoice); err != nil {
		return nil, database.TranslateError(err)
	}

	return invoice, nil
}

// HasInvoiceForOrder reports whether the order has already been invoiced.
func (r *PostgresInvoiceRepository) HasInvoiceForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM invoices WHERE order_id = $1)`, orderID,
	).Scan(&exists)
	if err != nil {
		return false, database.TranslateError(fmt.Errorf("failed to check order invoice: %w", err))
	}
	return exists, nil
}

// loadItems populates an invoice's ordered line items.
func (r *PostgresInvoiceRepository) loadItems(ctx context.Context, invoice *domain.Invoice) error {
	rows, err := r.db.GetPool().Query(ctx, `
		SELECT id, name, quantity, unit, net_price, vat_rate,
			net_value, vat_amount, gross_value
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position
	`, invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	invoice.Items = []domain.LineItem{}
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Quantity, &item.Unit,
			&item.NetPrice, &item.VatRate, &item.NetValue, &item.VatAmount, &item.GrossValue,
		); err != nil {
			return fmt.Errorf("failed to scan invoice item: %w", err)
		}
		invoice.Items = append(invoice.Items, item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating invoice items: %w", err)
	}

	return nil
}

// insertLineItems writes the invoice's items preserving their order.
func insertLineItems(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID, items []domain.LineItem) error {
	for i, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoice_items (
				id, invoice_id, position, name, quantity, unit,
				net_price, vat_rate, net_value, vat_amount, gross_value
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, item.ID, invoiceID, i, item.Name, item.Quantity, item.Unit,
			item.NetPrice, item.VatRate, item.NetValue, item.VatAmount, item.GrossValue)
		if err != nil {
			return fmt.Errorf("failed to insert invoice item: %w", err)
		}
	}
	return nil
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanInvoice reads one invoice row in invoiceColumns order.
func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var (
		invoice        domain.Invoice
		kind           string
		currency       string
		originalID     *uuid.UUID
		issueDate      time.Time
		saleDate       time.Time
		sentDate       *time.Time
		deliveryMethod *string
	)

	err := row.Scan(
		&invoice.ID, &invoice.Number, &kind, &originalID, &issueDate, &saleDate, &sentDate,
		&deliveryMethod, &invoice.HasPaid, &invoice.Buyer.Name, &invoice.Buyer.Address,
		&invoice.Buyer.TaxID, &currency, &invoice.TotalNet, &invoice.TotalVat,
		&invoice.TotalGross, &invoice.PaymentMethod, &invoice.PaymentDeadlineDays,
		&invoice.Comments, &invoice.OrderID, &invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: invoice", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	invoice.Kind = domain.InvoiceKind(kind)
	invoice.Currency = domain.Currency(currency)
	invoice.IssueDate = domain.DateOnly{Time: issueDate}
	invoice.SaleDate = domain.DateOnly{Time: saleDate}
	if sentDate != nil {
		invoice.SentDate = &domain.DateOnly{Time: *sentDate}
	}
	if deliveryMethod != nil {
		dm := domain.DeliveryMethod(*deliveryMethod)
		invoice.DeliveryMethod = &dm
	}
	if invoice.Kind == domain.KindCorrection && originalID != nil {
		// Delta fields are computed by the lifecycle service against the
		// original's current totals, not read from storage.
		invoice.Correction = &domain.CorrectionDetails{OriginalID: *originalID}
	}

	return &invoice, nil
}

// sentDateValue unwraps the optional sent date for SQL parameters.
func sentDateValue(d *domain.DateOnly) *time.Time {
	if d == nil {
		return nil
	}
	return &d.Time
}

// deliveryMethodValue unwraps the optional delivery method for SQL parameters.
func deliveryMethodValue(m *domain.DeliveryMethod) *string {
	if m == nil {
		return nil
	}
	s := string(*m)
	return &s
}
