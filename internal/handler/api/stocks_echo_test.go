package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/usecase"
	xlogger "StockCast/pkg/logger"
	"StockCast/pkg/util"

	"github.com/labstack/echo/v4"
)

type stubPriceStore struct {
	bars []models.PriceBar
}

func (s *stubPriceStore) Upsert(context.Context, []models.PriceBar) error { return nil }

func (s *stubPriceStore) History(_ context.Context, _ string, limit int) ([]models.PriceBar, error) {
	bars := s.bars
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func (s *stubPriceStore) LatestDate(context.Context, string) (time.Time, bool, error) {
	if len(s.bars) == 0 {
		return time.Time{}, false, nil
	}
	return s.bars[len(s.bars)-1].Day(), true, nil
}

func (s *stubPriceStore) Health(context.Context) error { return nil }

type stubPredictionStore struct {
	set []models.PredictionRecord
}

func (s *stubPredictionStore) ReplaceAll(_ context.Context, _ string, records []models.PredictionRecord) error {
	s.set = records
	return nil
}

func (s *stubPredictionStore) Active(context.Context, string) ([]models.PredictionRecord, error) {
	return s.set, nil
}

func (s *stubPredictionStore) LatestGeneratedOn(context.Context, string) (time.Time, bool, error) {
	if len(s.set) == 0 {
		return time.Time{}, false, nil
	}
	return util.DayUTC(s.set[0].GeneratedOn), true, nil
}

type stubSource struct{}

func (stubSource) Name() string { return "stub" }

func (stubSource) FetchDailyBars(context.Context, string, time.Time, time.Time) ([]models.PriceBar, error) {
	return nil, nil
}

type stubForecaster struct {
	err error
}

func (f *stubForecaster) Forecast(_ context.Context, symbol string, _ []models.PriceBar, horizon int) (*models.ForecastResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	points := make([]models.ForecastPoint, horizon)
	d := util.NextBusinessDay(util.DayUTC(time.Now()))
	for i := range points {
		points[i] = models.ForecastPoint{TargetDate: d, PredictedClose: 150, Confidence: 0.9}
		d = util.NextBusinessDay(d)
	}
	return &models.ForecastResult{Symbol: symbol, ModelVersion: "ridge_v1", Predictions: points}, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordRefresh(string, string, int)      {}
func (stubMetrics) RecordForecast(string, string, float64) {}
func (stubMetrics) RecordPredictedClose(string, float64)   {}
func (stubMetrics) RecordError(string)                     {}

type stubEvents struct{}

func (stubEvents) PredictionsReplaced(context.Context, string, []models.PredictionRecord) error {
	return nil
}
func (stubEvents) Close() error { return nil }

func todayBars(n int) []models.PriceBar {
	today := util.DayUTC(time.Now())
	bars := make([]models.PriceBar, n)
	for i := 0; i < n; i++ {
		bars[i] = models.PriceBar{
			Symbol:    "AAPL",
			TradeDate: today.AddDate(0, 0, -(n - 1 - i)),
			Close:     100 + float64(i),
		}
	}
	return bars
}

func newTestHandler(t *testing.T, prices *stubPriceStore, predictions *stubPredictionStore, f *stubForecaster) *StocksHandler {
	t.Helper()
	logger, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	orch := usecase.NewForecastOrchestrator(
		prices, predictions, stubSource{}, f, stubEvents{}, stubMetrics{},
		usecase.NewStalenessPolicy(90, 24), logger,
		usecase.OrchestratorConfig{HistoryDays: 60, HorizonDays: 5, ForecastMode: "inprocess"},
	)
	return NewStocksHandler(logger, orch, prices, predictions, nil, time.Minute, []string{"AAPL"})
}

func performGet(h *StocksHandler, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest("GET", target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) (int, json.RawMessage) {
	t.Helper()
	var env struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env.Status, env.Data
}

func TestPricesReturnsHistory(t *testing.T) {
	prices := &stubPriceStore{bars: todayBars(30)}
	h := newTestHandler(t, prices, &stubPredictionStore{}, &stubForecaster{})

	rec := performGet(h, "/api/stocks/AAPL/prices?days=10")
	status, data := envelope(t, rec)
	if status != 200 {
		t.Fatalf("status: %d (%s)", status, rec.Body.String())
	}

	var resp PricesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Symbol != "AAPL" || len(resp.Bars) != 10 {
		t.Fatalf("unexpected response: symbol=%q bars=%d", resp.Symbol, len(resp.Bars))
	}
}

func TestPricesRejectsBadDays(t *testing.T) {
	h := newTestHandler(t, &stubPriceStore{bars: todayBars(30)}, &stubPredictionStore{}, &stubForecaster{})

	rec := performGet(h, "/api/stocks/AAPL/prices?days=5000")
	status, _ := envelope(t, rec)
	if status != 400 {
		t.Fatalf("expected validation failure, got %d", status)
	}
}

func TestPredictionsGeneratesSet(t *testing.T) {
	prices := &stubPriceStore{bars: todayBars(60)}
	predictions := &stubPredictionStore{}
	h := newTestHandler(t, prices, predictions, &stubForecaster{})

	rec := performGet(h, "/api/stocks/AAPL/predictions")
	status, data := envelope(t, rec)
	if status != 200 {
		t.Fatalf("status: %d (%s)", status, rec.Body.String())
	}

	var resp PredictionsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(resp.Predictions) != 5 {
		t.Fatalf("expected 5 predictions, got %d", len(resp.Predictions))
	}
	if resp.Stale {
		t.Fatalf("fresh set must not be marked stale")
	}
}

func TestPredictionsInsufficientHistory(t *testing.T) {
	prices := &stubPriceStore{bars: todayBars(5)}
	f := &stubForecaster{err: fmt.Errorf("%w: need at least 20 training rows, got 0", models.ErrInsufficientHistory)}
	h := newTestHandler(t, prices, &stubPredictionStore{}, f)

	rec := performGet(h, "/api/stocks/AAPL/predictions")
	status, _ := envelope(t, rec)
	if status != 422 {
		t.Fatalf("expected 422 for insufficient history, got %d (%s)", status, rec.Body.String())
	}
}

func TestRefreshLeavesWatchlistUntouched(t *testing.T) {
	prices := &stubPriceStore{bars: todayBars(60)}
	predictions := &stubPredictionStore{}
	h := newTestHandler(t, prices, predictions, &stubForecaster{})
	watchlist := []string{"aapl", "msft"}
	h.watchlist = watchlist

	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest("POST", "/api/refresh", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	status, data := envelope(t, rec)
	if status != 200 {
		t.Fatalf("status: %d (%s)", status, rec.Body.String())
	}
	var resp RefreshResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if resp.Requested != 2 {
		t.Fatalf("expected the watchlist to be refreshed, got %d", resp.Requested)
	}
	if watchlist[0] != "aapl" || watchlist[1] != "msft" {
		t.Fatalf("configured watchlist was rewritten: %v", watchlist)
	}
}

func TestPredictionsServesStaleOnForecastFailure(t *testing.T) {
	prices := &stubPriceStore{bars: todayBars(60)}
	yesterday := util.DayUTC(time.Now()).AddDate(0, 0, -1)
	predictions := &stubPredictionStore{set: []models.PredictionRecord{{
		Symbol: "AAPL", GeneratedOn: yesterday, TargetDate: util.DayUTC(time.Now()),
		PredictedClose: 142, Confidence: 0.8, ModelVersion: "ridge_v1",
	}}}
	f := &stubForecaster{err: fmt.Errorf("%w: exit status 1", models.ErrProcessFailed)}
	h := newTestHandler(t, prices, predictions, f)

	rec := performGet(h, "/api/stocks/AAPL/predictions")
	status, data := envelope(t, rec)
	if status != 200 {
		t.Fatalf("stale set should be served, got %d (%s)", status, rec.Body.String())
	}

	var resp PredictionsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !resp.Stale {
		t.Fatalf("served set must be marked stale")
	}
	if len(resp.Predictions) != 1 || resp.Predictions[0].PredictedClose != 142 {
		t.Fatalf("unexpected stale set: %+v", resp.Predictions)
	}
}
