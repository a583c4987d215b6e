// Package finance implements the pure financial arithmetic of the invoicing
// core: line-item values, invoice totals, correction deltas, PLN conversion
// and the amount-in-words renderer. No I/O, no shared state.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/freightdesk/invoicing-service/internal/domain"
)

// moneyPlaces is the fixed-point scale used for all monetary values.
// decimal.Round rounds half away from zero, which matches the half-up
// rule required for VAT amounts.
const moneyPlaces = 2

// ComputeLineItem derives the net value, VAT amount and gross value of a line
// item. Rounding is applied at each derived step, not only at the end: the
// net value is rounded before VAT is computed from it. This intermediate
// rounding affects totals by cents and is part of the compliance contract.
func ComputeLineItem(netPrice decimal.Decimal, quantity int, vatRate decimal.Decimal) (netValue, vatAmount, grossValue decimal.Decimal) {
	netValue = netPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(moneyPlaces)
	vatAmount = netValue.Mul(vatRate).Round(moneyPlaces)
	grossValue = netValue.Add(vatAmount)
	return netValue, vatAmount, grossValue
}

// RecomputeItems returns a copy of items with all derived fields recomputed
// from net price, quantity and VAT rate.
func RecomputeItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	for i, item := range items {
		item.NetValue, item.VatAmount, item.GrossValue = ComputeLineItem(item.NetPrice, item.Quantity, item.VatRate)
		out[i] = item
	}
	return out
}

// RecalculateTotals sums the already-rounded per-item values. Invoice-level
// totals are exact sums of rounded line values and are never independently
// rounded again.
func RecalculateTotals(items []domain.LineItem) (net, vat, gross decimal.Decimal) {
	net, vat, gross = decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range items {
		net = net.Add(item.NetValue)
		vat = vat.Add(item.VatAmount)
		gross = gross.Add(item.GrossValue)
	}
	return net, vat, gross
}

// ComputeCorrectionDelta returns the signed difference between a correction's
// current totals and the original's totals. Negative values represent a
// reduction. A correction document shows these deltas, not the replacement
// absolute amounts.
func ComputeCorrectionDelta(original, current *domain.Invoice) (netDelta, vatDelta, grossDelta decimal.Decimal) {
	netDelta = current.TotalNet.Sub(original.TotalNet)
	vatDelta = current.TotalVat.Sub(original.TotalVat)
	grossDelta = current.TotalGross.Sub(original.TotalGross)
	return netDelta, vatDelta, grossDelta
}

// ConvertToPLN converts a foreign-currency amount into PLN using the given
// reference mid rate, rounded half-up to two places.
func ConvertToPLN(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(moneyPlaces)
}
