package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	domsvc "StockCast/internal/domain/service"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// ForecastOrchestrator coordinates the demand-driven refresh pipeline: check
// price staleness, opportunistically fetch the missing range, then
// regenerate the prediction set when it was not produced today. It is the
// only writer of predictions.
type ForecastOrchestrator struct {
	prices      domrepo.PriceStore
	predictions domrepo.PredictionStore
	source      domrepo.MarketDataSource
	forecaster  domsvc.Forecaster
	events      domrepo.ForecastEvents
	metrics     domrepo.Metrics
	policy      *StalenessPolicy
	log         *applogger.Logger

	historyDays  int
	horizonDays  int
	forecastMode string
	refreshDelay time.Duration

	// per-instrument exclusion for the refresh+replace critical section
	locks sync.Map // symbol -> *sync.Mutex

	now func() time.Time
}

// OrchestratorConfig carries the tunables the orchestrator needs.
type OrchestratorConfig struct {
	HistoryDays  int
	HorizonDays  int
	ForecastMode string
	RefreshDelay time.Duration
}

// NewForecastOrchestrator wires the pipeline. events may be nil when
// eventing is disabled.
func NewForecastOrchestrator(
	prices domrepo.PriceStore,
	predictions domrepo.PredictionStore,
	source domrepo.MarketDataSource,
	forecaster domsvc.Forecaster,
	events domrepo.ForecastEvents,
	metrics domrepo.Metrics,
	policy *StalenessPolicy,
	log *applogger.Logger,
	cfg OrchestratorConfig,
) *ForecastOrchestrator {
	return &ForecastOrchestrator{
		prices:       prices,
		predictions:  predictions,
		source:       source,
		forecaster:   forecaster,
		events:       events,
		metrics:      metrics,
		policy:       policy,
		log:          log,
		historyDays:  cfg.HistoryDays,
		horizonDays:  cfg.HorizonDays,
		forecastMode: cfg.ForecastMode,
		refreshDelay: cfg.RefreshDelay,
		now:          time.Now,
	}
}

func (o *ForecastOrchestrator) lock(symbol string) func() {
	v, _ := o.locks.LoadOrStore(symbol, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// EnsureFreshPrices refreshes the bar history for symbol when the staleness
// policy demands it. An empty provider response for the missing range is a
// no-op, not an error.
func (o *ForecastOrchestrator) EnsureFreshPrices(ctx context.Context, symbol string) error {
	unlock := o.lock(symbol)
	defer unlock()
	return o.refreshPrices(ctx, symbol)
}

func (o *ForecastOrchestrator) refreshPrices(ctx context.Context, symbol string) error {
	latest, hasLatest, err := o.prices.LatestDate(ctx, symbol)
	if err != nil {
		return fmt.Errorf("latest date: %w", err)
	}

	verdict := o.policy.DecidePrices(latest, hasLatest, o.now())
	if !verdict.NeedsRefresh {
		return nil
	}

	bars, err := o.source.FetchDailyBars(ctx, symbol, verdict.MissingFrom, verdict.MissingTo)
	if err != nil {
		o.metrics.RecordError("data_source")
		return fmt.Errorf("%w: %s: %v", models.ErrDataSourceUnavailable, o.source.Name(), err)
	}
	if len(bars) == 0 {
		// delisted instrument or non-trading days; the verdict is honored
		// but there is nothing to write
		return nil
	}

	if err := o.prices.Upsert(ctx, bars); err != nil {
		o.metrics.RecordError("store_write")
		return fmt.Errorf("%w: upsert %s: %v", models.ErrStoreWriteFailed, symbol, err)
	}

	o.metrics.RecordRefresh(symbol, o.source.Name(), len(bars))
	o.log.Info("prices refreshed",
		applogger.String("symbol", symbol),
		applogger.String("provider", o.source.Name()),
		applogger.Int("bars", len(bars)))
	return nil
}

// EnsureFreshPrediction guarantees the instrument's prediction set was
// generated today, regenerating it when needed. Provider failures during
// the opportunistic price refresh are downgraded to a warning whenever the
// instrument already has some history; forecast failure aborts the replace
// and leaves the previous set intact.
func (o *ForecastOrchestrator) EnsureFreshPrediction(ctx context.Context, symbol string) error {
	unlock := o.lock(symbol)
	defer unlock()

	if err := o.refreshPrices(ctx, symbol); err != nil {
		_, hasAny, lerr := o.prices.LatestDate(ctx, symbol)
		if lerr != nil || !hasAny {
			return err // nothing to fall back to
		}
		o.log.Warn("price refresh failed, serving stale bars",
			applogger.String("symbol", symbol), applogger.Error(err))
	}

	generatedOn, hasSet, err := o.predictions.LatestGeneratedOn(ctx, symbol)
	if err != nil {
		return fmt.Errorf("latest generated_on: %w", err)
	}
	if !o.policy.PredictionsStale(generatedOn, hasSet, o.now()) {
		return nil
	}

	bars, err := o.prices.History(ctx, symbol, o.historyDays)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("%w: no price history for %s", models.ErrInsufficientHistory, symbol)
	}

	start := time.Now()
	result, err := o.forecaster.Forecast(ctx, symbol, bars, o.horizonDays)
	o.metrics.RecordForecast(symbol, o.forecastMode, time.Since(start).Seconds())
	if err != nil {
		o.metrics.RecordError("forecast")
		return err
	}

	records := result.Records(util.DayUTC(o.now()))
	if err := o.predictions.ReplaceAll(ctx, symbol, records); err != nil {
		o.metrics.RecordError("store_write")
		return fmt.Errorf("%w: replace predictions %s: %v", models.ErrStoreWriteFailed, symbol, err)
	}

	o.metrics.RecordPredictedClose(symbol, records[0].PredictedClose)
	o.log.Info("predictions regenerated",
		applogger.String("symbol", symbol),
		applogger.Int("days", len(records)),
		applogger.Float64("confidence", records[0].Confidence))

	if o.events != nil {
		if err := o.events.PredictionsReplaced(ctx, symbol, records); err != nil {
			o.log.Warn("forecast event publish failed",
				applogger.String("symbol", symbol), applogger.Error(err))
		}
	}

	return nil
}

// RefreshResult summarizes one symbol of a maintenance batch.
type RefreshResult struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error,omitempty"`
}

// RefreshAll runs the full pipeline for each symbol sequentially with the
// configured courtesy delay between provider calls. Per-symbol failures are
// collected, not fatal.
func (o *ForecastOrchestrator) RefreshAll(ctx context.Context, symbols []string) []RefreshResult {
	results := make([]RefreshResult, 0, len(symbols))
	for i, symbol := range symbols {
		if i > 0 && o.refreshDelay > 0 {
			select {
			case <-ctx.Done():
				results = append(results, RefreshResult{Symbol: symbol, Error: ctx.Err().Error()})
				continue
			case <-time.After(o.refreshDelay):
			}
		}

		res := RefreshResult{Symbol: symbol}
		if err := o.EnsureFreshPrediction(ctx, symbol); err != nil {
			res.Error = err.Error()
			o.log.Warn("batch refresh failed",
				applogger.String("symbol", symbol), applogger.Error(err))
		}
		results = append(results, res)
	}
	return results
}

// IsSoftFailure reports whether err leaves previously stored data usable
// (stale-but-present is preferred over a failed read path).
func IsSoftFailure(err error) bool {
	return errors.Is(err, models.ErrDataSourceUnavailable) ||
		errors.Is(err, models.ErrInsufficientHistory) ||
		errors.Is(err, models.ErrProcessFailed) ||
		errors.Is(err, models.ErrMalformedOutput)
}
