package forecast

import (
	"context"
	"fmt"
	"sort"

	"StockCast/internal/domain/models"
	domsvc "StockCast/internal/domain/service"
	"StockCast/internal/services/features"
	"StockCast/pkg/util"
)

// ModelVersion tags every prediction set written by this implementation.
const ModelVersion = "ridge_v1"

// RidgeForecaster trains a fresh ridge model per request and predicts future
// closes recursively: each predicted close is appended to the series as a
// synthetic bar before the next step's features are built. Error compounding
// across steps is accepted behavior.
type RidgeForecaster struct {
	builder *features.Builder
	alpha   float64
	minRows int
}

// Option configures RidgeForecaster.
type Option func(*RidgeForecaster)

// WithAlpha sets the L2 penalty strength.
func WithAlpha(alpha float64) Option {
	return func(f *RidgeForecaster) {
		f.alpha = alpha
	}
}

// WithMinTrainingRows sets the usable-row floor below which forecasting
// fails with ErrInsufficientHistory.
func WithMinTrainingRows(n int) Option {
	return func(f *RidgeForecaster) {
		f.minRows = n
	}
}

// NewRidgeForecaster creates an in-process forecaster.
func NewRidgeForecaster(opts ...Option) *RidgeForecaster {
	f := &RidgeForecaster{
		builder: features.NewBuilder(),
		alpha:   1.0,
		minRows: 20,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Forecast trains on the full history in bars and returns exactly
// horizonDays predictions in ascending target-date order. The single
// in-sample R-squared score, clamped to [0,1], is attached to every day.
func (f *RidgeForecaster) Forecast(_ context.Context, symbol string, bars []models.PriceBar, horizonDays int) (*models.ForecastResult, error) {
	if horizonDays < 1 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizonDays)
	}

	ordered := make([]models.PriceBar, len(bars))
	copy(ordered, bars)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].TradeDate.Before(ordered[j].TradeDate)
	})

	rows := f.builder.Build(ordered)
	if len(rows) < f.minRows {
		return nil, fmt.Errorf("%w: need at least %d training rows, got %d",
			models.ErrInsufficientHistory, f.minRows, len(rows))
	}

	xs := make([][]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = r.X
		ys[i] = r.Y
	}

	model, err := fitRidge(xs, ys, f.alpha)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	confidence := round(clamp01(model.rsquared(xs, ys)), 4)

	closes := features.Closes(ordered)
	lastDate := ordered[len(ordered)-1].Day()

	points := make([]models.ForecastPoint, 0, horizonDays)
	for step := 0; step < horizonDays; step++ {
		x := f.builder.Vector(closes)
		predicted := model.predict(x)
		nextDate := util.NextBusinessDay(lastDate)

		points = append(points, models.ForecastPoint{
			TargetDate:     nextDate,
			PredictedClose: round(predicted, 2),
			Confidence:     confidence,
		})

		// feed the prediction back as a synthetic close-only bar
		closes = append(closes, predicted)
		lastDate = nextDate
	}

	return &models.ForecastResult{
		Symbol:             symbol,
		ModelVersion:       ModelVersion,
		HistoricalDaysUsed: len(ordered),
		Predictions:        points,
	}, nil
}

var _ domsvc.Forecaster = (*RidgeForecaster)(nil)
