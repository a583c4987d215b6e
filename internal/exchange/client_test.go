package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightdesk/invoicing-service/internal/domain"
)

func testDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestClient(url string) *Client {
	return NewClient(url, 2*time.Second, zerolog.Nop())
}

func rateBody(no, effectiveDate, mid string) string {
	return fmt.Sprintf(`{"table":"A","currency":"euro","code":"EUR","rates":[{"no":%q,"effectiveDate":%q,"mid":%s}]}`,
		no, effectiveDate, mid)
}

func TestGetRateReturnsPreviousDayRate(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, rateBody("103/A/NBP/2026", "2026-05-28", "4.3215"))
	}))
	defer srv.Close()

	rate, err := newTestClient(srv.URL).GetRate(context.Background(), testDate("2026-05-29"))

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.3215").Equal(rate.Rate))
	assert.Equal(t, "103/A/NBP/2026", rate.TableID)
	assert.Equal(t, testDate("2026-05-28"), rate.EffectiveDate)
	require.Len(t, requested, 1)
	assert.Contains(t, requested[0], "/exchangerates/rates/a/eur/2026-05-28")
}

func TestGetRateWalksBackToFifthDay(t *testing.T) {
	// Days -1..-4 have no published table (long holiday weekend); -5 does.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exchangerates/rates/a/eur/2026-05-24" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, rateBody("99/A/NBP/2026", "2026-05-24", "4.2800"))
	}))
	defer srv.Close()

	rate, err := newTestClient(srv.URL).GetRate(context.Background(), testDate("2026-05-29"))

	require.NoError(t, err)
	assert.Equal(t, "99/A/NBP/2026", rate.TableID)
	assert.True(t, decimal.RequireFromString("4.2800").Equal(rate.Rate))
}

func TestGetRateAllAttemptsFail(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	rate, err := newTestClient(srv.URL).GetRate(context.Background(), testDate("2026-05-29"))

	assert.Nil(t, rate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateUnavailable))
	assert.Equal(t, maxLookbackDays, attempts)
}

func TestGetRateEmptyTableCountsAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/exchangerates/rates/a/eur/2026-05-27" {
			fmt.Fprint(w, rateBody("101/A/NBP/2026", "2026-05-27", "4.3000"))
			return
		}
		// An OK response with no records must not satisfy the lookup.
		fmt.Fprint(w, `{"table":"A","currency":"euro","code":"EUR","rates":[]}`)
	}))
	defer srv.Close()

	rate, err := newTestClient(srv.URL).GetRate(context.Background(), testDate("2026-05-29"))

	require.NoError(t, err)
	assert.Equal(t, "101/A/NBP/2026", rate.TableID)
}

func TestGetRateRejectsNonPositiveMid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rateBody("55/A/NBP/2026", "2026-05-28", "0"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetRate(context.Background(), testDate("2026-05-29"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateUnavailable))
}

func TestGetRateCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).GetRate(ctx, testDate("2026-05-29"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
