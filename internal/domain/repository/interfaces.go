package repository

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
)

// PriceStore owns durable PriceBar persistence. Upsert is idempotent on
// (symbol, trade_date) and overwrites all OHLCV fields on conflict.
type PriceStore interface {
	Upsert(ctx context.Context, bars []models.PriceBar) error
	// History returns bars for symbol in ascending trade_date order, at most
	// limit rows counted from the most recent (limit <= 0 means no limit).
	History(ctx context.Context, symbol string, limit int) ([]models.PriceBar, error)
	// LatestDate returns the most recent trade_date for symbol, or ok=false
	// when no bar exists yet.
	LatestDate(ctx context.Context, symbol string) (time.Time, bool, error)
	Health(ctx context.Context) error
}

// PredictionStore owns PredictionRecord persistence. ReplaceAll is atomic:
// readers observe either the previous complete set or the new one, never a
// partial mix.
type PredictionStore interface {
	ReplaceAll(ctx context.Context, symbol string, records []models.PredictionRecord) error
	// Active returns the current set for symbol ordered by target_date.
	Active(ctx context.Context, symbol string) ([]models.PredictionRecord, error)
	// LatestGeneratedOn returns the generated_on date of the current set, or
	// ok=false when no predictions exist.
	LatestGeneratedOn(ctx context.Context, symbol string) (time.Time, bool, error)
}

// MarketDataSource fetches daily OHLCV bars from an upstream provider for an
// inclusive date range. Partial or empty results are valid; the provider
// behind the interface is a configuration detail.
type MarketDataSource interface {
	Name() string
	FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error)
}

// ForecastEvents publishes prediction lifecycle events for downstream
// consumers. Implementations must be safe to call after a replace commits.
type ForecastEvents interface {
	PredictionsReplaced(ctx context.Context, symbol string, records []models.PredictionRecord) error
	Close() error
}

// Metrics records pipeline observations.
type Metrics interface {
	RecordRefresh(symbol, provider string, bars int)
	RecordForecast(symbol string, mode string, seconds float64)
	RecordPredictedClose(symbol string, price float64)
	RecordError(kind string)
}
