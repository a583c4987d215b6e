// Package sequence issues legally-unique, gapless invoice numbers.
//
// Numbers are allocated per (calendar year, calendar month, invoice kind)
// bucket. Original and correction sequences are independent streams, each
// starting at 1 when the bucket is first used. The counter lives in a
// sequence_counters row in the shared store, not in process memory, so
// correctness holds across multiple service instances.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/freightdesk/invoicing-service/internal/database"
	"github.com/freightdesk/invoicing-service/internal/domain"
)

// Allocator issues the next invoice number for the bucket derived from the
// issue date and invoice kind.
//
// The allocator either commits the increment exactly once or reports failure
// with the counter unchanged; it never auto-retries. Callers that receive
// domain.ErrConcurrencyConflict may retry the whole operation.
type Allocator interface {
	NextNumber(ctx context.Context, date time.Time, kind domain.InvoiceKind) (int, error)
}

// PostgresAllocator implements Allocator against the sequence_counters table.
type PostgresAllocator struct {
	db *database.PostgresDB
}

// NewPostgresAllocator creates a new PostgreSQL-backed allocator.
func NewPostgresAllocator(db *database.PostgresDB) *PostgresAllocator {
	return &PostgresAllocator{db: db}
}

// NextNumber allocates the next number in its own serializable transaction.
func (a *PostgresAllocator) NextNumber(ctx context.Context, date time.Time, kind domain.InvoiceKind) (int, error) {
	var number int
	err := a.db.ExecuteSerializableTransaction(ctx, func(tx pgx.Tx) error {
		n, err := a.NextNumberTx(ctx, tx, date, kind)
		if err != nil {
			return err
		}
		number = n
		return nil
	})
	if err != nil {
		return 0, database.TranslateError(err)
	}
	return number, nil
}

// NextNumberTx allocates the next number inside a caller-owned transaction.
// The transaction must run at SERIALIZABLE isolation: the read-increment-write
// below relies on it to reject concurrent first-allocations of the same
// bucket. The invoice lifecycle uses this variant so that allocation and
// invoice persistence commit or roll back as one unit.
func (a *PostgresAllocator) NextNumberTx(ctx context.Context, tx pgx.Tx, date time.Time, kind domain.InvoiceKind) (int, error) {
	year, month := date.Year(), int(date.Month())

	// Read the current counter, locking the row for the rest of the
	// transaction. A missing row means the bucket has not been used yet.
	var last int
	err := tx.QueryRow(ctx, `
		SELECT last_number
		FROM sequence_counters
		WHERE year = $1 AND month = $2 AND kind = $3
		FOR UPDATE
	`, year, month, string(kind)).Scan(&last)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, database.TranslateError(fmt.Errorf("failed to read sequence counter: %w", err))
		}
		last = 0
	}

	next := last + 1

	_, err = tx.Exec(ctx, `
		INSERT INTO sequence_counters (year, month, kind, last_number)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (year, month, kind)
		DO UPDATE SET last_number = $4, updated_at = now()
	`, year, month, string(kind), next)
	if err != nil {
		return 0, database.TranslateError(fmt.Errorf("failed to write sequence counter: %w", err))
	}

	return next, nil
}
