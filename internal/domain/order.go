package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a transport order that an invoice can be generated from.
// Orders are managed elsewhere; this core only reads them when deriving
// an invoice via CreateFromOrder.
type Order struct {
	ID                  uuid.UUID       `json:"id"`
	OrderNumber         string          `json:"order_number"`
	CounterpartyName    string          `json:"counterparty_name"`
	CounterpartyAddress string          `json:"counterparty_address"`
	CounterpartyTaxID   string          `json:"counterparty_tax_id"`
	CounterpartyCountry string          `json:"counterparty_country"` // ISO 3166-1 alpha-2
	CargoDescription    string          `json:"cargo_description"`
	LoadingDate         time.Time       `json:"loading_date"`
	UnloadingDate       time.Time       `json:"unloading_date"`
	FreightPrice        decimal.Decimal `json:"freight_price"`
	Currency            Currency        `json:"currency"`
	CreatedAt           time.Time       `json:"created_at"`
}
