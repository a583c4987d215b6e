// Package exchange resolves the EUR reference rate used to express
// foreign-currency invoice amounts in PLN for tax reporting.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/freightdesk/invoicing-service/internal/domain"
)

// maxLookbackDays bounds the backward walk over calendar days. Reference
// rates are published once per business day, so a settlement date can be up
// to five days past the most recent table (weekends plus public holidays).
// The bound is a correctness policy, not a tuning knob.
const maxLookbackDays = 5

// rateRecord is a single entry of the published rate table.
type rateRecord struct {
	No            string          `json:"no"`
	EffectiveDate string          `json:"effectiveDate"`
	Mid           decimal.Decimal `json:"mid"`
}

// rateTable is the response envelope of the reference-rate API.
type rateTable struct {
	Table    string       `json:"table"`
	Currency string       `json:"currency"`
	Code     string       `json:"code"`
	Rates    []rateRecord `json:"rates"`
}

// Client fetches EUR mid rates from the NBP-compatible reference rate API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// NewClient creates a new reference-rate client. baseURL points at the API
// root (e.g. "https://api.nbp.pl/api"); timeout bounds each individual
// attempt, not the whole lookback.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger.With().Str("component", "exchange").Logger(),
	}
}

// GetRate resolves the EUR reference rate applicable to targetDate. Rates for
// the target date itself are not published yet at settlement time, so the
// lookup walks backward: offsets 1..5 days, first successful response with at
// least one record wins. Each attempt is independent; a network error or an
// empty table moves on to the next offset. When all attempts are exhausted
// the caller gets domain.ErrRateUnavailable -- never a default rate of 1 and
// never a stale cached value.
func (c *Client) GetRate(ctx context.Context, targetDate time.Time) (*domain.ExchangeRate, error) {
	for offset := 1; offset <= maxLookbackDays; offset++ {
		date := targetDate.AddDate(0, 0, -offset)

		rate, err := c.fetchRateForDate(ctx, date)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("rate lookup canceled: %w", ctx.Err())
			}
			c.logger.Debug().
				Str("date", date.Format("2006-01-02")).
				Int("offset", offset).
				Err(err).
				Msg("reference rate attempt failed")
			continue
		}

		return rate, nil
	}

	return nil, fmt.Errorf("no EUR reference rate within %d days before %s: %w",
		maxLookbackDays, targetDate.Format("2006-01-02"), domain.ErrRateUnavailable)
}

// fetchRateForDate queries the rate table for one specific publication date.
func (c *Client) fetchRateForDate(ctx context.Context, date time.Time) (*domain.ExchangeRate, error) {
	url := fmt.Sprintf("%s/exchangerates/rates/a/eur/%s?format=json", c.baseURL, date.Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rate table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate API returned status %d", resp.StatusCode)
	}

	var table rateTable
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to decode rate table: %w", err)
	}

	if len(table.Rates) == 0 {
		return nil, fmt.Errorf("rate table for %s is empty", date.Format("2006-01-02"))
	}

	record := table.Rates[0]
	effective, err := time.Parse("2006-01-02", record.EffectiveDate)
	if err != nil {
		return nil, fmt.Errorf("invalid effective date %q: %w", record.EffectiveDate, err)
	}
	if record.Mid.Sign() <= 0 {
		return nil, fmt.Errorf("non-positive mid rate %s in table %s", record.Mid, record.No)
	}

	return &domain.ExchangeRate{
		Rate:          record.Mid,
		TableID:       record.No,
		EffectiveDate: effective,
	}, nil
}
