package features

import (
	"math"

	"StockCast/internal/domain/models"
)

// Feature layout, in column order. Every value is derived from closes
// strictly before the target day, so a row never sees its own target.
//
//	lag_1, lag_2, lag_3, lag_5, lag_10   close k days back
//	rolling_mean_5, rolling_mean_10      mean of trailing closes
//	rolling_std_5                        sample stddev (n-1) of trailing closes
//	momentum_5, momentum_10              absolute change over the window
//	daily_return                         pct change of the most recent close
const NumFeatures = 11

// MinHistory is the number of prior closes a row needs before any feature is
// defined: the longest lookback (10) plus one for the shift off the target.
const MinHistory = 11

// Row is one supervised training example.
type Row struct {
	X []float64
	Y float64
}

// Builder converts a chronological close series into a feature matrix.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Vector computes the feature vector for the day immediately following the
// given trailing closes. It returns nil when fewer than MinHistory closes
// are available.
func (b *Builder) Vector(closes []float64) []float64 {
	n := len(closes)
	if n < MinHistory {
		return nil
	}

	x := make([]float64, 0, NumFeatures)

	// lags
	for _, k := range []int{1, 2, 3, 5, 10} {
		x = append(x, closes[n-k])
	}

	// rolling means
	x = append(x, mean(closes[n-5:]))
	x = append(x, mean(closes[n-10:]))

	// rolling volatility
	x = append(x, sampleStd(closes[n-5:]))

	// momentum
	x = append(x, closes[n-1]-closes[n-6])
	x = append(x, closes[n-1]-closes[n-11])

	// daily return
	x = append(x, pctChange(closes[n-2], closes[n-1]))

	return x
}

// Build produces one Row per day with sufficient history; the leading
// MinHistory days of the series are dropped.
func (b *Builder) Build(bars []models.PriceBar) []Row {
	closes := Closes(bars)
	rows := make([]Row, 0, max(0, len(closes)-MinHistory))
	for i := MinHistory; i < len(closes); i++ {
		x := b.Vector(closes[:i])
		if x == nil {
			continue
		}
		rows = append(rows, Row{X: x, Y: closes[i]})
	}
	return rows
}

// Closes extracts the close series from bars in input order.
func Closes(bars []models.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd computes the n-1 standard deviation; degenerate windows yield 0.
func sampleStd(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - m
		sum2 += d * d
	}
	v := sum2 / float64(n-1)
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

func pctChange(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
