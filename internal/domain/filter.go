package domain

import "time"

// InvoiceFilter represents filters for querying invoices
type InvoiceFilter struct {
	Kind      *InvoiceKind
	StartDate *time.Time
	EndDate   *time.Time
	Buyer     string
	Page      int
	Limit     int
}

// Pagination represents pagination metadata
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// PaginatedInvoices represents a paginated list of invoices
type PaginatedInvoices struct {
	Data       []Invoice  `json:"data"`
	Pagination Pagination `json:"pagination"`
}
