package service

import (
	"context"

	"StockCast/internal/domain/models"
)

// Forecaster produces a multi-day close forecast for one instrument. Two
// implementations exist: an in-process ridge model and an out-of-process
// bridge that runs the same model in an isolated executable. Callers depend
// only on this capability.
type Forecaster interface {
	Forecast(ctx context.Context, symbol string, bars []models.PriceBar, horizonDays int) (*models.ForecastResult, error)
}
