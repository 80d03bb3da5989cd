package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/service/ratelimit"
	pkghttp "StockCast/pkg/http"
	"StockCast/pkg/util"
)

const finnhubCandleURL = "https://finnhub.io/api/v1/stock/candle"

// FinnhubSource fetches daily candles from the Finnhub REST API.
type FinnhubSource struct {
	client     *pkghttp.Client
	limiter    *ratelimit.Limiter
	apiKey     string
	ratePerMin int
}

func NewFinnhubSource(client *pkghttp.Client, limiter *ratelimit.Limiter, apiKey string, ratePerMin int) *FinnhubSource {
	return &FinnhubSource{client: client, limiter: limiter, apiKey: apiKey, ratePerMin: ratePerMin}
}

func (s *FinnhubSource) Name() string { return "finnhub" }

type finnhubCandles struct {
	Status string    `json:"s"` // "ok" or "no_data"
	Time   []int64   `json:"t"`
	Open   []float64 `json:"o"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Close  []float64 `json:"c"`
	Volume []float64 `json:"v"`
}

func (s *FinnhubSource) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	if err := waitForToken(ctx, s.limiter, s.Name(), s.ratePerMin); err != nil {
		return nil, err
	}

	lo, hi := rangeBounds(from, to)
	var candles finnhubCandles
	err := s.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    finnhubCandleURL,
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"resolution": {"D"},
			"from":       {strconv.FormatInt(lo.Unix(), 10)},
			"to":         {strconv.FormatInt(hi.Unix(), 10)},
			"token":      {s.apiKey},
		},
	}, &candles)
	if err != nil {
		return nil, fmt.Errorf("finnhub candles %s: %w", symbol, err)
	}

	if candles.Status == "no_data" {
		return nil, nil
	}
	if candles.Status != "ok" {
		return nil, fmt.Errorf("finnhub candles %s: status %q", symbol, candles.Status)
	}

	bars := make([]models.PriceBar, 0, len(candles.Time))
	for i, ts := range candles.Time {
		if i >= len(candles.Close) {
			break
		}
		bar := models.PriceBar{
			Symbol:    symbol,
			TradeDate: util.DayUTC(time.Unix(ts, 0).UTC()),
			Close:     candles.Close[i],
		}
		if i < len(candles.Open) {
			bar.Open = candles.Open[i]
		}
		if i < len(candles.High) {
			bar.High = candles.High[i]
		}
		if i < len(candles.Low) {
			bar.Low = candles.Low[i]
		}
		if i < len(candles.Volume) {
			bar.Volume = int64(candles.Volume[i])
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].TradeDate.Before(bars[j].TradeDate) })
	return bars, nil
}
