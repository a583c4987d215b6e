package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightdesk/invoicing-service/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeLineItem(t *testing.T) {
	tests := []struct {
		name      string
		netPrice  string
		quantity  int
		vatRate   string
		wantNet   string
		wantVat   string
		wantGross string
	}{
		{
			name:     "standard domestic line",
			netPrice: "10.00", quantity: 3, vatRate: "0.23",
			wantNet: "30.00", wantVat: "6.90", wantGross: "36.90",
		},
		{
			name:     "sub-cent net price rounds before VAT",
			netPrice: "10.005", quantity: 1, vatRate: "0.23",
			// 10.005 rounds half-up to 10.01, then 10.01 * 0.23 = 2.3023 -> 2.30
			wantNet: "10.01", wantVat: "2.30", wantGross: "12.31",
		},
		{
			name:     "zero rate export freight",
			netPrice: "1250.00", quantity: 1, vatRate: "0",
			wantNet: "1250.00", wantVat: "0.00", wantGross: "1250.00",
		},
		{
			name:     "vat rounding on odd net value",
			netPrice: "33.33", quantity: 3, vatRate: "0.23",
			// 99.99 * 0.23 = 22.9977 -> 23.00
			wantNet: "99.99", wantVat: "23.00", wantGross: "122.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, vat, gross := ComputeLineItem(dec(tt.netPrice), tt.quantity, dec(tt.vatRate))
			assert.True(t, dec(tt.wantNet).Equal(net), "net: want %s got %s", tt.wantNet, net)
			assert.True(t, dec(tt.wantVat).Equal(vat), "vat: want %s got %s", tt.wantVat, vat)
			assert.True(t, dec(tt.wantGross).Equal(gross), "gross: want %s got %s", tt.wantGross, gross)
		})
	}
}

func TestRecalculateTotalsSumsRoundedLineValues(t *testing.T) {
	items := RecomputeItems([]domain.LineItem{
		{Name: "transport A", Quantity: 1, NetPrice: dec("10.005"), VatRate: dec("0.23")},
		{Name: "transport B", Quantity: 1, NetPrice: dec("10.005"), VatRate: dec("0.23")},
	})

	net, vat, gross := RecalculateTotals(items)

	// Each line is rounded first (10.01), so the total is 20.02 rather than
	// the 20.01 a single end-of-computation rounding would give.
	assert.True(t, dec("20.02").Equal(net), "net: got %s", net)
	assert.True(t, dec("4.60").Equal(vat), "vat: got %s", vat)
	assert.True(t, dec("24.62").Equal(gross), "gross: got %s", gross)
}

func TestRecalculateTotalsEmpty(t *testing.T) {
	net, vat, gross := RecalculateTotals(nil)
	assert.True(t, net.IsZero())
	assert.True(t, vat.IsZero())
	assert.True(t, gross.IsZero())
}

func TestComputeCorrectionDelta(t *testing.T) {
	original := &domain.Invoice{
		TotalNet:   dec("100.00"),
		TotalVat:   dec("23.00"),
		TotalGross: dec("123.00"),
	}
	current := &domain.Invoice{
		TotalNet:   dec("80.00"),
		TotalVat:   dec("18.40"),
		TotalGross: dec("98.40"),
	}

	netDelta, vatDelta, grossDelta := ComputeCorrectionDelta(original, current)

	assert.True(t, dec("-20.00").Equal(netDelta), "net delta: got %s", netDelta)
	assert.True(t, dec("-4.60").Equal(vatDelta), "vat delta: got %s", vatDelta)
	assert.True(t, dec("-24.60").Equal(grossDelta), "gross delta: got %s", grossDelta)
}

func TestComputeCorrectionDeltaIncrease(t *testing.T) {
	original := &domain.Invoice{TotalNet: dec("100.00"), TotalVat: dec("23.00"), TotalGross: dec("123.00")}
	current := &domain.Invoice{TotalNet: dec("150.00"), TotalVat: dec("34.50"), TotalGross: dec("184.50")}

	netDelta, vatDelta, grossDelta := ComputeCorrectionDelta(original, current)

	assert.True(t, dec("50.00").Equal(netDelta))
	assert.True(t, dec("11.50").Equal(vatDelta))
	assert.True(t, dec("61.50").Equal(grossDelta))
}

func TestConvertToPLN(t *testing.T) {
	rate := dec("4.3215")

	got := ConvertToPLN(dec("1000.00"), rate)
	require.True(t, dec("4321.50").Equal(got), "got %s", got)

	// 123.45 * 4.3215 = 533.489175 -> 533.49
	got = ConvertToPLN(dec("123.45"), rate)
	require.True(t, dec("533.49").Equal(got), "got %s", got)
}

func TestRecomputeItemsOverwritesSuppliedDerivedFields(t *testing.T) {
	items := []domain.LineItem{
		{
			Name: "transport", Quantity: 2, NetPrice: dec("50.00"), VatRate: dec("0.23"),
			// Derived values supplied by the caller are never trusted.
			NetValue: dec("1.00"), VatAmount: dec("1.00"), GrossValue: dec("1.00"),
		},
	}

	out := RecomputeItems(items)

	require.Len(t, out, 1)
	assert.True(t, dec("100.00").Equal(out[0].NetValue))
	assert.True(t, dec("23.00").Equal(out[0].VatAmount))
	assert.True(t, dec("123.00").Equal(out[0].GrossValue))
	// Input slice stays untouched.
	assert.True(t, dec("1.00").Equal(items[0].NetValue))
}
