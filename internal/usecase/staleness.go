package usecase

import (
	"time"

	"StockCast/internal/domain/models"
	"StockCast/pkg/util"
)

// StalenessPolicy decides, from the store's latest known date and wall-clock
// time, whether cached data must be refreshed and for which range. Prices
// and predictions age under different rules; both are calendar-day-grained
// in UTC.
type StalenessPolicy struct {
	lookbackDays       int
	marketCloseHourUTC int
}

// NewStalenessPolicy creates a policy. lookbackDays bounds the first-ever
// fetch window; marketCloseHourUTC is the hour before which yesterday's bar
// is not yet expected to exist.
func NewStalenessPolicy(lookbackDays, marketCloseHourUTC int) *StalenessPolicy {
	return &StalenessPolicy{
		lookbackDays:       lookbackDays,
		marketCloseHourUTC: marketCloseHourUTC,
	}
}

// DecidePrices computes the verdict for an instrument's bar history.
// hasLatest is false when no bar exists yet.
func (p *StalenessPolicy) DecidePrices(latestKnown time.Time, hasLatest bool, now time.Time) models.StalenessVerdict {
	today := util.DayUTC(now)

	if !hasLatest {
		return models.StalenessVerdict{
			NeedsRefresh: true,
			MissingFrom:  today.AddDate(0, 0, -p.lookbackDays),
			MissingTo:    today,
		}
	}

	gap := util.DaysBetween(latestKnown, now)
	if gap <= 0 {
		return models.StalenessVerdict{}
	}

	// A one-day gap before the market-close cutoff is expected: the missing
	// day's bar does not exist upstream yet.
	if gap == 1 && now.UTC().Hour() < p.marketCloseHourUTC {
		return models.StalenessVerdict{}
	}

	return models.StalenessVerdict{
		NeedsRefresh: true,
		MissingFrom:  util.DayUTC(latestKnown).AddDate(0, 0, 1),
		MissingTo:    today,
	}
}

// PredictionsStale reports whether the active prediction set must be
// regenerated. Staleness is binary: anything not generated today counts,
// which caps regeneration at once per instrument per day.
func (p *StalenessPolicy) PredictionsStale(generatedOn time.Time, hasAny bool, now time.Time) bool {
	if !hasAny {
		return true
	}
	return !util.SameDayUTC(generatedOn, now)
}
