package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/freightdesk/invoicing-service/internal/database"
	"github.com/freightdesk/invoicing-service/internal/domain"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *database.PostgresDB
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository
func NewPostgresOrderRepository(db *database.PostgresDB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// GetOrderByID retrieves a transport order by its ID
func (r *PostgresOrderRepository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	var (
		order    domain.Order
		currency string
	)
	err := r.db.GetPool().QueryRow(ctx, `
		SELECT id, order_number, counterparty_name, counterparty_address,
			counterparty_tax_id, counterparty_country, cargo_description,
			loading_date, unloading_date, freight_price, currency, created_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(
		&order.ID, &order.OrderNumber, &order.CounterpartyName, &order.CounterpartyAddress,
		&order.CounterpartyTaxID, &order.CounterpartyCountry, &order.CargoDescription,
		&order.LoadingDate, &order.UnloadingDate, &order.FreightPrice, &currency, &order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
		}
		return nil, database.TranslateError(fmt.Errorf("failed to get order: %w", err))
	}

	order.Currency = domain.Currency(currency)
	return &order, nil
}
