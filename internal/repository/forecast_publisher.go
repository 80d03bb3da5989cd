package repository

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	pkgkafka "StockCast/pkg/kafka"
	"StockCast/pkg/util"
)

// KafkaForecastEvents publishes a forecast.generated event after every
// successful prediction replace, keyed by symbol so consumers see per-symbol
// ordering.
type KafkaForecastEvents struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaForecastEvents creates the publisher.
func NewKafkaForecastEvents(producer *pkgkafka.Producer, topic string) domrepo.ForecastEvents {
	return &KafkaForecastEvents{producer: producer, topic: topic}
}

type forecastEvent struct {
	Event        string    `json:"event"`
	Symbol       string    `json:"symbol"`
	GeneratedOn  string    `json:"generated_on"`
	ModelVersion string    `json:"model_version"`
	Days         int       `json:"days"`
	FirstClose   float64   `json:"first_predicted_close"`
	Confidence   float64   `json:"confidence"`
	EmittedAt    time.Time `json:"emitted_at"`
}

func (p *KafkaForecastEvents) PredictionsReplaced(ctx context.Context, symbol string, records []models.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}
	first := records[0]
	return p.producer.Publish(ctx, p.topic, []byte(symbol), forecastEvent{
		Event:        "forecast.generated",
		Symbol:       symbol,
		GeneratedOn:  util.FormatDate(first.GeneratedOn),
		ModelVersion: first.ModelVersion,
		Days:         len(records),
		FirstClose:   first.PredictedClose,
		Confidence:   first.Confidence,
		EmittedAt:    time.Now().UTC(),
	})
}

func (p *KafkaForecastEvents) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopForecastEvents is used when eventing is disabled.
type NoopForecastEvents struct{}

func (NoopForecastEvents) PredictionsReplaced(context.Context, string, []models.PredictionRecord) error {
	return nil
}

func (NoopForecastEvents) Close() error { return nil }
