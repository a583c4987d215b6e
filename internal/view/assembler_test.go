package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightdesk/invoicing-service/internal/domain"
)

type stubLoader struct {
	invoices map[uuid.UUID]*domain.Invoice
}

func (l *stubLoader) GetInvoice(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	inv, ok := l.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

type stubRates struct {
	rate *domain.ExchangeRate
	err  error
}

func (s *stubRates) GetRate(ctx context.Context, targetDate time.Time) (*domain.ExchangeRate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rate, nil
}

func testSeller() Seller {
	return Seller{
		Name:        "FreightDesk Sp. z o.o.",
		Address:     "ul. Przewozowa 12, 00-001 Warszawa",
		TaxID:       "1132456789",
		BankName:    "mBank",
		BankAccount: "PL61109010140000071219812874",
	}
}

func day(s string) domain.DateOnly {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return domain.DateOnly{Time: t}
}

func sampleInvoice() *domain.Invoice {
	return &domain.Invoice{
		ID:        uuid.New(),
		Number:    7,
		Kind:      domain.KindOriginal,
		IssueDate: day("2026-05-10"),
		SaleDate:  day("2026-05-08"),
		Buyer: domain.Buyer{
			Name:    "Polmax Sp. z o.o.",
			Address: "ul. Prosta 5, Warszawa",
			TaxID:   "5252248481",
		},
		Currency:   domain.CurrencyPLN,
		TotalNet:   decimal.RequireFromString("1000.00"),
		TotalVat:   decimal.RequireFromString("230.00"),
		TotalGross: decimal.RequireFromString("1230.00"),
		Items: []domain.LineItem{
			{
				ID: uuid.New(), Name: "Transport Warszawa-Berlin", Quantity: 1, Unit: "service",
				NetPrice:   decimal.RequireFromString("1000.00"),
				VatRate:    decimal.RequireFromString("0.23"),
				NetValue:   decimal.RequireFromString("1000.00"),
				VatAmount:  decimal.RequireFromString("230.00"),
				GrossValue: decimal.RequireFromString("1230.00"),
			},
		},
		PaymentMethod:       "bank transfer",
		PaymentDeadlineDays: 14,
	}
}

func TestBuildDocumentPLN(t *testing.T) {
	invoice := sampleInvoice()
	loader := &stubLoader{invoices: map[uuid.UUID]*domain.Invoice{invoice.ID: invoice}}
	assembler := NewAssembler(testSeller(), loader, &stubRates{}, zerolog.Nop())

	doc, err := assembler.BuildDocument(context.Background(), invoice.ID)

	require.NoError(t, err)
	assert.Equal(t, "7/05/2026", doc.Number)
	assert.Equal(t, "FreightDesk Sp. z o.o.", doc.Seller.Name)
	assert.Equal(t, "Polmax Sp. z o.o.", doc.Buyer.Name)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, 1, doc.Lines[0].Position)
	assert.Equal(t, "23%", doc.Lines[0].VatRate)
	assert.Equal(t, "tysiąc dwieście trzydzieści złotych 00/100", doc.AmountInWords)
	assert.Equal(t, day("2026-05-24"), doc.PaymentDeadline)
	assert.Equal(t, "PL61109010140000071219812874", doc.BankAccount)
	assert.Nil(t, doc.PLNConversion)
	assert.Nil(t, doc.Correction)
}

func TestBuildDocumentEURConversion(t *testing.T) {
	invoice := sampleInvoice()
	invoice.Currency = domain.CurrencyEUR
	loader := &stubLoader{invoices: map[uuid.UUID]*domain.Invoice{invoice.ID: invoice}}
	rates := &stubRates{rate: &domain.ExchangeRate{
		Rate:          decimal.RequireFromString("4.25"),
		TableID:       "089/A/NBP/2026",
		EffectiveDate: day("2026-05-09").Time,
	}}
	assembler := NewAssembler(testSeller(), loader, rates, zerolog.Nop())

	doc, err := assembler.BuildDocument(context.Background(), invoice.ID)

	require.NoError(t, err)
	require.NotNil(t, doc.PLNConversion)
	assert.Equal(t, "089/A/NBP/2026", doc.PLNConversion.TableID)
	assert.True(t, decimal.RequireFromString("977.50").Equal(doc.PLNConversion.VatPLN), "vat pln: %s", doc.PLNConversion.VatPLN)
	assert.True(t, decimal.RequireFromString("5227.50").Equal(doc.PLNConversion.GrossPLN), "gross pln: %s", doc.PLNConversion.GrossPLN)
	assert.Contains(t, doc.AmountInWords, "euro")
}

func TestBuildDocumentEURRateUnavailable(t *testing.T) {
	invoice := sampleInvoice()
	invoice.Currency = domain.CurrencyEUR
	loader := &stubLoader{invoices: map[uuid.UUID]*domain.Invoice{invoice.ID: invoice}}
	assembler := NewAssembler(testSeller(), loader, &stubRates{err: domain.ErrRateUnavailable}, zerolog.Nop())

	_, err := assembler.BuildDocument(context.Background(), invoice.ID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateUnavailable))
}

func TestBuildDocumentCorrection(t *testing.T) {
	original := sampleInvoice()
	correction := sampleInvoice()
	correction.ID = uuid.New()
	correction.Number = 2
	correction.Kind = domain.KindCorrection
	correction.IssueDate = day("2026-05-20")
	correction.TotalNet = decimal.RequireFromString("800.00")
	correction.TotalVat = decimal.RequireFromString("184.00")
	correction.TotalGross = decimal.RequireFromString("984.00")
	correction.Correction = &domain.CorrectionDetails{
		OriginalID: original.ID,
		NetDelta:   decimal.RequireFromString("-200.00"),
		VatDelta:   decimal.RequireFromString("-46.00"),
		GrossDelta: decimal.RequireFromString("-246.00"),
	}
	loader := &stubLoader{invoices: map[uuid.UUID]*domain.Invoice{
		original.ID:   original,
		correction.ID: correction,
	}}
	assembler := NewAssembler(testSeller(), loader, &stubRates{}, zerolog.Nop())

	doc, err := assembler.BuildDocument(context.Background(), correction.ID)

	require.NoError(t, err)
	assert.Equal(t, "2/05/2026/K", doc.Number)
	require.NotNil(t, doc.Correction)
	assert.Equal(t, "7/05/2026", doc.Correction.OriginalNumber)
	assert.True(t, decimal.RequireFromString("-246.00").Equal(doc.Correction.GrossDelta))
	assert.Equal(t, "minus dwieście czterdzieści sześć złotych 00/100", doc.Correction.DeltaInWords)
}

func TestBuildDocumentNotFound(t *testing.T) {
	assembler := NewAssembler(testSeller(), &stubLoader{invoices: map[uuid.UUID]*domain.Invoice{}}, &stubRates{}, zerolog.Nop())

	_, err := assembler.BuildDocument(context.Background(), uuid.New())

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
