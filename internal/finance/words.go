package finance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/freightdesk/invoicing-service/internal/domain"
)

// Polish cardinal-number vocabulary. Pluralized nouns follow the Slavic
// 1 / 2-4 / 5+ rule (see pluralForm); this rule has only been verified for
// Polish and must not be assumed to generalize to other languages.
var (
	wordUnits = []string{
		"", "jeden", "dwa", "trzy", "cztery", "pięć",
		"sześć", "siedem", "osiem", "dziewięć",
	}
	wordTeens = []string{
		"dziesięć", "jedenaście", "dwanaście", "trzynaście", "czternaście",
		"piętnaście", "szesnaście", "siedemnaście", "osiemnaście", "dziewiętnaście",
	}
	wordTens = []string{
		"", "", "dwadzieścia", "trzydzieści", "czterdzieści", "pięćdziesiąt",
		"sześćdziesiąt", "siedemdziesiąt", "osiemdziesiąt", "dziewięćdziesiąt",
	}
	wordHundreds = []string{
		"", "sto", "dwieście", "trzysta", "czterysta", "pięćset",
		"sześćset", "siedemset", "osiemset", "dziewięćset",
	}

	thousandForms = [3]string{"tysiąc", "tysiące", "tysięcy"}
	millionForms  = [3]string{"milion", "miliony", "milionów"}
)

// currencyNouns maps a currency to its singular / few / many noun forms.
// The "one" form is also the base form used after "zero".
var currencyNouns = map[domain.Currency][3]string{
	domain.CurrencyPLN: {"złoty", "złote", "złotych"},
	domain.CurrencyEUR: {"euro", "euro", "euro"},
}

// pluralForm selects the Polish plural class for n: 0 = singular (exactly 1),
// 1 = few (last digit 2-4, excluding 12-14), 2 = many (everything else).
func pluralForm(n int64) int {
	if n == 1 {
		return 0
	}
	last := n % 10
	lastTwo := n % 100
	if last >= 2 && last <= 4 && !(lastTwo >= 12 && lastTwo <= 14) {
		return 1
	}
	return 2
}

// groupToWords renders 1..999 as Polish words.
func groupToWords(n int64) string {
	parts := make([]string, 0, 3)
	if h := n / 100; h > 0 {
		parts = append(parts, wordHundreds[h])
	}
	rest := n % 100
	switch {
	case rest >= 10 && rest <= 19:
		parts = append(parts, wordTeens[rest-10])
	default:
		if t := rest / 10; t > 0 {
			parts = append(parts, wordTens[t])
		}
		if u := rest % 10; u > 0 {
			parts = append(parts, wordUnits[u])
		}
	}
	return strings.Join(parts, " ")
}

// integerToWords renders 0..999,999,999 as Polish words with thousand and
// million grouping. Larger magnitudes are outside the verified scope of the
// grammar tables and are rendered digit-grouped anyway without a guarantee.
func integerToWords(n int64) string {
	if n == 0 {
		return "zero"
	}

	parts := make([]string, 0, 5)
	if m := n / 1_000_000; m > 0 {
		parts = append(parts, groupToWords(m), millionForms[pluralForm(m)])
	}
	if t := (n / 1000) % 1000; t > 0 {
		// "jeden tysiąc" is written as just "tysiąc"
		if t == 1 {
			parts = append(parts, thousandForms[0])
		} else {
			parts = append(parts, groupToWords(t), thousandForms[pluralForm(t)])
		}
	}
	if rest := n % 1000; rest > 0 {
		parts = append(parts, groupToWords(rest))
	}
	return strings.Join(parts, " ")
}

// AmountInWords renders a monetary amount the way it appears on a Polish VAT
// invoice: the integer part as cardinal words with the correctly pluralized
// currency noun, the fractional part as a literal "NN/100" suffix.
// Zero renders as "zero" plus the currency noun's many form; negative amounts
// are prefixed with "minus" and rendered from the absolute value.
func AmountInWords(amount decimal.Decimal, currency domain.Currency) string {
	nouns, ok := currencyNouns[currency]
	if !ok {
		nouns = [3]string{string(currency), string(currency), string(currency)}
	}

	prefix := ""
	if amount.IsNegative() {
		prefix = "minus "
		amount = amount.Abs()
	}

	amount = amount.Round(moneyPlaces)
	whole := amount.IntPart()
	cents := amount.Sub(decimal.NewFromInt(whole)).Mul(decimal.NewFromInt(100)).IntPart()

	var noun string
	if whole == 0 {
		noun = nouns[2]
	} else {
		noun = nouns[pluralForm(whole)]
	}

	return fmt.Sprintf("%s%s %s %02d/100", prefix, integerToWords(whole), noun, cents)
}
