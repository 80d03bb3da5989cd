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

const twelveDataURL = "https://api.twelvedata.com/time_series"

// TwelveDataSource fetches daily time series from the Twelve Data REST API.
// Numeric fields arrive as strings.
type TwelveDataSource struct {
	client     *pkghttp.Client
	limiter    *ratelimit.Limiter
	apiKey     string
	ratePerMin int
}

func NewTwelveDataSource(client *pkghttp.Client, limiter *ratelimit.Limiter, apiKey string, ratePerMin int) *TwelveDataSource {
	return &TwelveDataSource{client: client, limiter: limiter, apiKey: apiKey, ratePerMin: ratePerMin}
}

func (s *TwelveDataSource) Name() string { return "twelvedata" }

type twelveDataSeries struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
}

func (s *TwelveDataSource) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	if err := waitForToken(ctx, s.limiter, s.Name(), s.ratePerMin); err != nil {
		return nil, err
	}

	lo, hi := rangeBounds(from, to)
	var series twelveDataSeries
	err := s.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    twelveDataURL,
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"interval":   {"1day"},
			"start_date": {util.FormatDate(lo)},
			"end_date":   {util.FormatDate(hi)},
			"apikey":     {s.apiKey},
		},
	}, &series)
	if err != nil {
		return nil, fmt.Errorf("twelvedata series %s: %w", symbol, err)
	}

	if series.Status == "error" {
		// code 400 with "no data" wording means an empty range, not a failure
		if series.Code == 400 {
			return nil, nil
		}
		return nil, fmt.Errorf("twelvedata api error %d: %s", series.Code, series.Message)
	}

	bars := make([]models.PriceBar, 0, len(series.Values))
	for _, v := range series.Values {
		day, err := util.ParseDate(v.Datetime)
		if err != nil {
			continue
		}
		closePx, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			continue
		}
		bar := models.PriceBar{Symbol: symbol, TradeDate: day, Close: closePx}
		if f, err := strconv.ParseFloat(v.Open, 64); err == nil {
			bar.Open = f
		}
		if f, err := strconv.ParseFloat(v.High, 64); err == nil {
			bar.High = f
		}
		if f, err := strconv.ParseFloat(v.Low, 64); err == nil {
			bar.Low = f
		}
		if n, err := strconv.ParseInt(v.Volume, 10, 64); err == nil {
			bar.Volume = n
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].TradeDate.Before(bars[j].TradeDate) })
	return bars, nil
}
