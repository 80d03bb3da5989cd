package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	refreshes        *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	predictedClose   *prometheus.GaugeVec
	forecastDuration *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		refreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_price_refreshes_total",
				Help: "Total number of price refreshes against the upstream provider",
			},
			[]string{"provider", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		predictedClose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_predicted_close",
				Help: "Most recent first-day predicted close for a symbol",
			},
			[]string{"symbol"},
		),
		forecastDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_forecast_duration_seconds",
				Help:    "Duration of forecast generation in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
	}
}

// RecordRefresh records a completed provider refresh.
func (r *Recorder) RecordRefresh(symbol, provider string, bars int) {
	r.refreshes.WithLabelValues(provider, symbol).Inc()
}

// RecordForecast records forecast duration for the given mode
// (inprocess or subprocess).
func (r *Recorder) RecordForecast(symbol string, mode string, seconds float64) {
	r.forecastDuration.WithLabelValues(mode).Observe(seconds)
}

// RecordPredictedClose records the next-day predicted close for a symbol.
func (r *Recorder) RecordPredictedClose(symbol string, price float64) {
	r.predictedClose.WithLabelValues(symbol).Set(price)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
