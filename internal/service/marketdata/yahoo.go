package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/service/ratelimit"
	pkghttp "StockCast/pkg/http"
	"StockCast/pkg/util"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooSource fetches daily bars from the Yahoo Finance chart API. It needs
// no API key; Yahoo rejects requests without a browser-like User-Agent.
type YahooSource struct {
	client     *pkghttp.Client
	limiter    *ratelimit.Limiter
	ratePerMin int
}

func NewYahooSource(client *pkghttp.Client, limiter *ratelimit.Limiter, ratePerMin int) *YahooSource {
	return &YahooSource{client: client, limiter: limiter, ratePerMin: ratePerMin}
}

func (s *YahooSource) Name() string { return "yahoo" }

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *YahooSource) FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	if err := waitForToken(ctx, s.limiter, s.Name(), s.ratePerMin); err != nil {
		return nil, err
	}

	lo, hi := rangeBounds(from, to)
	var chart yahooChart
	err := s.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    fmt.Sprintf("%s/%s", yahooChartURL, url.PathEscape(symbol)),
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0",
		},
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"period1":  {strconv.FormatInt(lo.Unix(), 10)},
			"period2":  {strconv.FormatInt(hi.Unix(), 10)},
		},
	}, &chart)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]models.PriceBar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		// null entries appear for holidays and half-days
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		bar := models.PriceBar{
			Symbol:    symbol,
			TradeDate: util.DayUTC(time.Unix(ts, 0).UTC()),
			Close:     *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].TradeDate.Before(bars[j].TradeDate) })
	return bars, nil
}
