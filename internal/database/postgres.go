package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightdesk/invoicing-service/internal/domain"
)

// SQLSTATE codes signalling that a transaction lost an isolation conflict
// and can be retried by the caller.
const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

// PostgresDB manages the database connection to PostgreSQL
type PostgresDB struct {
	pool *pgxpool.Pool
}

// NewPostgresDB creates a new connection to PostgreSQL
func NewPostgresDB(dbURL string) (*PostgresDB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database URL is not set")
	}

	// Create a connection pool
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Establish the connection pool
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the database connection pool
func (db *PostgresDB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// GetPool returns the connection pool for direct use
func (db *PostgresDB) GetPool() *pgxpool.Pool {
	return db.pool
}

// ExecuteTransaction executes a transaction with the provided callback function
func (db *PostgresDB) ExecuteTransaction(ctx context.Context, txFunc func(pgx.Tx) error) error {
	return db.executeTx(ctx, pgx.TxOptions{}, txFunc)
}

// ExecuteSerializableTransaction executes the callback under SERIALIZABLE
// isolation. Number allocation and invoice persistence run inside one such
// transaction so that a committed sequence number and the invoice carrying it
// are a single atomic fact.
func (db *PostgresDB) ExecuteSerializableTransaction(ctx context.Context, txFunc func(pgx.Tx) error) error {
	return db.executeTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, txFunc)
}

func (db *PostgresDB) executeTx(ctx context.Context, opts pgx.TxOptions, txFunc func(pgx.Tx) error) error {
	tx, err := db.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Execute the transaction function
	if err := txFunc(tx); err != nil {
		// Rollback on error
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	// Commit the transaction
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// TranslateError maps low-level pgx failures onto the domain error taxonomy:
// isolation conflicts become ErrConcurrencyConflict (retryable), missing rows
// become ErrNotFound, everything else is an ErrStorageFailure.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	// Already translated further down the call chain.
	if errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConcurrencyConflict) ||
		errors.Is(err, domain.ErrStorageFailure) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateSerializationFailure, sqlstateDeadlockDetected:
			return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, err)
		}
	}

	return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
}
