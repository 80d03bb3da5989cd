package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/usecase"
	"StockCast/pkg/cache"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StocksHandler serves the dashboard read API. Every read path runs the
// freshness pipeline first; when the upstream provider is down, stored data
// is served stale rather than failing the request.
type StocksHandler struct {
	logger       *xlogger.Logger
	orchestrator *usecase.ForecastOrchestrator
	prices       domrepo.PriceStore
	predictions  domrepo.PredictionStore
	cache        cache.Service
	cacheTTL     time.Duration
	watchlist    []string
}

func NewStocksHandler(
	logger *xlogger.Logger,
	orchestrator *usecase.ForecastOrchestrator,
	prices domrepo.PriceStore,
	predictions domrepo.PredictionStore,
	cacheSvc cache.Service,
	cacheTTL time.Duration,
	watchlist []string,
) *StocksHandler {
	return &StocksHandler{
		logger:       logger,
		orchestrator: orchestrator,
		prices:       prices,
		predictions:  predictions,
		cache:        cacheSvc,
		cacheTTL:     cacheTTL,
		watchlist:    watchlist,
	}
}

func (h *StocksHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/stocks/:symbol/prices", h.Prices)
	g.GET("/stocks/:symbol/predictions", h.Predictions)
	g.POST("/refresh", h.Refresh)
	e.GET("/health", h.Health)
}

// PricesResponse is the payload of the historical bars endpoint.
type PricesResponse struct {
	Symbol string            `json:"symbol"`
	Bars   []models.PriceBar `json:"bars"`
	Stale  bool              `json:"stale,omitempty"`
}

func (h *StocksHandler) Prices(c echo.Context) error {
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := normalizeSymbol(req.Symbol)
	ctx := c.Request().Context()

	stale := false
	if err := h.orchestrator.EnsureFreshPrices(ctx, symbol); err != nil {
		if !usecase.IsSoftFailure(err) {
			h.logger.Error("prices refresh error", xlogger.String("symbol", symbol), xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.InternalError("price refresh failed").WithError(err))
		}
		h.logger.Warn("serving stale prices", xlogger.String("symbol", symbol), xlogger.Error(err))
		stale = true
	}

	bars, err := h.prices.History(ctx, symbol, req.Days)
	if err != nil {
		h.logger.Error("price history error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("price history unavailable").WithError(err))
	}
	if len(bars) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no price data for %s", symbol))
	}

	return xhttp.SuccessResponse(c, PricesResponse{Symbol: symbol, Bars: bars, Stale: stale})
}

// PredictionsResponse is the payload of the forecast endpoint.
type PredictionsResponse struct {
	Symbol      string                    `json:"symbol"`
	Predictions []models.PredictionRecord `json:"predictions"`
	Stale       bool                      `json:"stale,omitempty"`
}

func (h *StocksHandler) Predictions(c echo.Context) error {
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := normalizeSymbol(req.Symbol)
	ctx := c.Request().Context()

	cacheKey := "predictions:" + symbol
	if h.cache != nil {
		var cached PredictionsResponse
		if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
			return xhttp.SuccessResponse(c, cached)
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Warn("prediction cache get failed", xlogger.Error(err))
		}
	}

	pipelineErr := h.orchestrator.EnsureFreshPrediction(ctx, symbol)

	records, err := h.predictions.Active(ctx, symbol)
	if err != nil {
		h.logger.Error("active predictions error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("predictions unavailable").WithError(err))
	}

	if pipelineErr != nil {
		// a previously generated set still answers the request
		if len(records) > 0 && usecase.IsSoftFailure(pipelineErr) {
			h.logger.Warn("serving stale predictions",
				xlogger.String("symbol", symbol), xlogger.Error(pipelineErr))
			return xhttp.SuccessResponse(c, PredictionsResponse{Symbol: symbol, Predictions: records, Stale: true})
		}
		return xhttp.AppErrorResponse(c, h.mapPipelineError(symbol, pipelineErr))
	}

	resp := PredictionsResponse{Symbol: symbol, Predictions: records}
	if h.cache != nil && len(records) > 0 {
		if err := h.cache.Set(ctx, cacheKey, resp, h.cacheTTL); err != nil {
			h.logger.Warn("prediction cache set failed", xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, resp)
}

func (h *StocksHandler) mapPipelineError(symbol string, err error) error {
	switch {
	case errors.Is(err, models.ErrInsufficientHistory):
		return xhttp.UnprocessableError("not enough price history to forecast " + symbol).WithError(err)
	case errors.Is(err, models.ErrDataSourceUnavailable):
		return xhttp.BadGatewayError("market data provider unavailable").WithError(err)
	case errors.Is(err, models.ErrProcessFailed), errors.Is(err, models.ErrMalformedOutput):
		h.logger.Error("forecast process error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.InternalError("forecast generation failed").WithError(err)
	default:
		h.logger.Error("prediction pipeline error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.InternalError("predictions unavailable").WithError(err)
	}
}

// RefreshResponse summarizes a maintenance batch.
type RefreshResponse struct {
	Requested int                     `json:"requested"`
	Failed    int                     `json:"failed"`
	Results   []usecase.RefreshResult `json:"results"`
}

func (h *StocksHandler) Refresh(c echo.Context) error {
	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	requested := req.Symbols
	if len(requested) == 0 {
		requested = h.watchlist
	}
	symbols := make([]string, len(requested))
	for i, s := range requested {
		symbols[i] = normalizeSymbol(s)
	}

	results := h.orchestrator.RefreshAll(c.Request().Context(), symbols)

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	if h.cache != nil {
		keys := make([]string, 0, len(symbols))
		for _, s := range symbols {
			keys = append(keys, "predictions:"+s)
		}
		if err := h.cache.Delete(c.Request().Context(), keys...); err != nil {
			h.logger.Warn("cache invalidation failed", xlogger.Error(err))
		}
	}

	return xhttp.SuccessResponse(c, RefreshResponse{
		Requested: len(results),
		Failed:    failed,
		Results:   results,
	})
}

func (h *StocksHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.prices.Health(ctx); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("storage unreachable").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
