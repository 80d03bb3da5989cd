package marketdata

import (
	"context"
	"fmt"
	"time"

	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/service/ratelimit"
	"StockCast/pkg/config"
	pkghttp "StockCast/pkg/http"
)

// New builds the configured provider adapter. Each adapter shares the HTTP
// client and a keyed token bucket so one symbol loop cannot exceed the
// provider's request budget.
func New(cfg *config.Config, client *pkghttp.Client, limiter *ratelimit.Limiter) (domrepo.MarketDataSource, error) {
	md := cfg.MarketData
	switch md.Provider {
	case "yahoo":
		return NewYahooSource(client, limiter, md.RatePerMin), nil
	case "finnhub":
		return NewFinnhubSource(client, limiter, md.APIKey, md.RatePerMin), nil
	case "twelvedata":
		return NewTwelveDataSource(client, limiter, md.APIKey, md.RatePerMin), nil
	default:
		return nil, fmt.Errorf("unknown market data provider %q", md.Provider)
	}
}

// waitForToken blocks on the provider's bucket. capacity equals the
// per-minute budget, refilled continuously.
func waitForToken(ctx context.Context, limiter *ratelimit.Limiter, provider string, ratePerMin int) error {
	if limiter == nil || ratePerMin <= 0 {
		return nil
	}
	return limiter.Wait(ctx, provider, float64(ratePerMin), float64(ratePerMin)/60.0)
}

// rangeBounds widens [from, to] to whole UTC days. Providers take unix
// timestamps or date strings; the inclusive upper bound needs the end of day.
func rangeBounds(from, to time.Time) (time.Time, time.Time) {
	lo := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	hi := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
	return lo, hi
}
