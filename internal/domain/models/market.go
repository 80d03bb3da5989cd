package models

import "time"

// PriceBar is one daily OHLCV bar for an instrument. Bars are keyed by
// (Symbol, TradeDate) and ordered by TradeDate; calendar gaps (weekends,
// holidays) are expected.
type PriceBar struct {
	Symbol    string    `gorm:"primaryKey;size:16" json:"symbol"`
	TradeDate time.Time `gorm:"primaryKey;type:date" json:"trade_date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

func (PriceBar) TableName() string { return "price_bars" }

// Day returns the bar's calendar day truncated to UTC midnight.
func (b PriceBar) Day() time.Time {
	return time.Date(b.TradeDate.Year(), b.TradeDate.Month(), b.TradeDate.Day(), 0, 0, 0, 0, time.UTC)
}

// StalenessVerdict is the transient result of a freshness check. When
// NeedsRefresh is set, MissingFrom/MissingTo bound the date range to fetch
// (inclusive). It is computed on every read path and never stored.
type StalenessVerdict struct {
	NeedsRefresh bool
	MissingFrom  time.Time
	MissingTo    time.Time
}
