package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PredictionRecord is one forecast day for an instrument. The active set for
// a symbol shares a single GeneratedOn date and is always replaced whole
// (delete then insert), never patched.
type PredictionRecord struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Symbol         string    `gorm:"index:idx_predictions_symbol;size:16" json:"symbol"`
	GeneratedOn    time.Time `gorm:"type:date" json:"generated_on"`
	TargetDate     time.Time `gorm:"type:date" json:"target_date"`
	PredictedClose float64   `json:"predicted_close"`
	Confidence     float64   `json:"confidence"`
	ModelVersion   string    `gorm:"size:32" json:"model_version"`
}

func (PredictionRecord) TableName() string { return "predictions" }

// ForecastPoint is one step of a forecast before persistence. On the wire
// the target date is a plain YYYY-MM-DD string.
type ForecastPoint struct {
	TargetDate     time.Time
	PredictedClose float64
	Confidence     float64
}

const dateLayout = "2006-01-02"

type forecastPointJSON struct {
	TargetDate     string  `json:"target_date"`
	PredictedClose float64 `json:"predicted_close"`
	Confidence     float64 `json:"confidence"`
}

func (p ForecastPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(forecastPointJSON{
		TargetDate:     p.TargetDate.UTC().Format(dateLayout),
		PredictedClose: p.PredictedClose,
		Confidence:     p.Confidence,
	})
}

func (p *ForecastPoint) UnmarshalJSON(b []byte) error {
	var w forecastPointJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	d, err := time.ParseInLocation(dateLayout, w.TargetDate, time.UTC)
	if err != nil {
		return fmt.Errorf("parse target_date: %w", err)
	}
	p.TargetDate = d
	p.PredictedClose = w.PredictedClose
	p.Confidence = w.Confidence
	return nil
}

// ForecastResult is the full output of one forecast run. It matches the wire
// document the numeric subprocess prints on stdout.
type ForecastResult struct {
	Symbol             string          `json:"symbol"`
	ModelVersion       string          `json:"model_version"`
	HistoricalDaysUsed int             `json:"historical_days_used"`
	Predictions        []ForecastPoint `json:"predictions"`
	Error              string          `json:"error,omitempty"`
}

// Records converts the result into persistable rows stamped with generatedOn.
func (r *ForecastResult) Records(generatedOn time.Time) []PredictionRecord {
	out := make([]PredictionRecord, 0, len(r.Predictions))
	for _, p := range r.Predictions {
		out = append(out, PredictionRecord{
			Symbol:         r.Symbol,
			GeneratedOn:    generatedOn,
			TargetDate:     p.TargetDate,
			PredictedClose: p.PredictedClose,
			Confidence:     p.Confidence,
			ModelVersion:   r.ModelVersion,
		})
	}
	return out
}
