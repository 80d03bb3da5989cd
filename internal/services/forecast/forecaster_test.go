package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockCast/internal/domain/models"
)

func trendBars(n int, end time.Time) []models.PriceBar {
	bars := make([]models.PriceBar, n)
	for i := 0; i < n; i++ {
		bars[i] = models.PriceBar{
			Symbol:    "TRND",
			TradeDate: end.AddDate(0, 0, -(n - 1 - i)),
			Close:     100 + float64(i),
		}
	}
	return bars
}

func TestForecastUpwardTrend(t *testing.T) {
	f := NewRidgeForecaster()
	end := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC) // Friday
	bars := trendBars(90, end)

	res, err := f.Forecast(context.Background(), "TRND", bars, 5)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}

	if res.Symbol != "TRND" {
		t.Fatalf("symbol: %q", res.Symbol)
	}
	if res.ModelVersion != ModelVersion {
		t.Fatalf("model version: %q", res.ModelVersion)
	}
	if res.HistoricalDaysUsed != 90 {
		t.Fatalf("historical days: %d", res.HistoricalDaysUsed)
	}
	if len(res.Predictions) != 5 {
		t.Fatalf("expected 5 predictions, got %d", len(res.Predictions))
	}

	prev := bars[len(bars)-1].Close
	for i, p := range res.Predictions {
		if p.PredictedClose <= prev {
			t.Fatalf("prediction %d not continuing the trend: %v after %v", i, p.PredictedClose, prev)
		}
		prev = p.PredictedClose
		if p.Confidence < 0.9 || p.Confidence > 1 {
			t.Fatalf("prediction %d confidence out of range: %v", i, p.Confidence)
		}
	}
}

func TestForecastDatesSkipWeekends(t *testing.T) {
	f := NewRidgeForecaster()
	end := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC) // Friday
	bars := trendBars(60, end)

	res, err := f.Forecast(context.Background(), "TRND", bars, 5)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}

	prev := end
	for i, p := range res.Predictions {
		if !p.TargetDate.After(prev) {
			t.Fatalf("prediction %d date %v not after %v", i, p.TargetDate, prev)
		}
		if wd := p.TargetDate.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("prediction %d lands on a weekend: %v", i, p.TargetDate)
		}
		prev = p.TargetDate
	}
	// Friday's next session is Monday
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !res.Predictions[0].TargetDate.Equal(monday) {
		t.Fatalf("first target: want %v, got %v", monday, res.Predictions[0].TargetDate)
	}
}

func TestForecastInsufficientHistory(t *testing.T) {
	f := NewRidgeForecaster()
	bars := trendBars(5, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC))

	_, err := f.Forecast(context.Background(), "TRND", bars, 5)
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestForecastUnsortedInput(t *testing.T) {
	f := NewRidgeForecaster()
	end := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	bars := trendBars(60, end)
	// reverse to newest-first; the forecaster must sort internally
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}

	res, err := f.Forecast(context.Background(), "TRND", bars, 1)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if !res.Predictions[0].TargetDate.After(end) {
		t.Fatalf("target %v not after the latest bar %v", res.Predictions[0].TargetDate, end)
	}
}

func TestForecastRejectsBadHorizon(t *testing.T) {
	f := NewRidgeForecaster()
	if _, err := f.Forecast(context.Background(), "TRND", nil, 0); err == nil {
		t.Fatalf("expected error for zero horizon")
	}
}
