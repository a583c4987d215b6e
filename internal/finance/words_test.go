package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freightdesk/invoicing-service/internal/domain"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency domain.Currency
		want     string
	}{
		{"zero PLN", "0.00", domain.CurrencyPLN, "zero złotych 00/100"},
		{"one PLN singular", "1.00", domain.CurrencyPLN, "jeden złoty 00/100"},
		{"few form 2", "2.00", domain.CurrencyPLN, "dwa złote 00/100"},
		{"few form 4", "4.50", domain.CurrencyPLN, "cztery złote 50/100"},
		{"many form 5", "5.00", domain.CurrencyPLN, "pięć złotych 00/100"},
		{"teens use many form", "12.00", domain.CurrencyPLN, "dwanaście złotych 00/100"},
		{"two-four above teens use few form", "22.00", domain.CurrencyPLN, "dwadzieścia dwa złote 00/100"},
		{"hundreds", "123.45", domain.CurrencyPLN, "sto dwadzieścia trzy złote 45/100"},
		{"bare thousand", "1000.00", domain.CurrencyPLN, "tysiąc złotych 00/100"},
		{"few thousands", "2500.00", domain.CurrencyPLN, "dwa tysiące pięćset złotych 00/100"},
		{"many thousands", "15000.99", domain.CurrencyPLN, "piętnaście tysięcy złotych 99/100"},
		{
			"full grouping", "123456.78", domain.CurrencyPLN,
			"sto dwadzieścia trzy tysiące czterysta pięćdziesiąt sześć złotych 78/100",
		},
		{"low millions", "2000000.00", domain.CurrencyPLN, "dwa miliony złotych 00/100"},
		{"negative EUR", "-5.50", domain.CurrencyEUR, "minus pięć euro 50/100"},
		{"euro noun is invariant", "21.00", domain.CurrencyEUR, "dwadzieścia jeden euro 00/100"},
		{"single cent", "0.01", domain.CurrencyPLN, "zero złotych 01/100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmountInWords(dec(tt.amount), tt.currency)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPluralForm(t *testing.T) {
	assert.Equal(t, 0, pluralForm(1))
	assert.Equal(t, 1, pluralForm(2))
	assert.Equal(t, 1, pluralForm(4))
	assert.Equal(t, 2, pluralForm(5))
	assert.Equal(t, 2, pluralForm(11))
	assert.Equal(t, 2, pluralForm(12))
	assert.Equal(t, 2, pluralForm(14))
	assert.Equal(t, 2, pluralForm(15))
	assert.Equal(t, 1, pluralForm(22))
	assert.Equal(t, 2, pluralForm(112))
	assert.Equal(t, 1, pluralForm(122))
}
