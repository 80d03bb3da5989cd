package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresPriceStore implements PriceStore over gorm. Upserts are keyed by
// (symbol, trade_date) and overwrite all OHLCV fields on conflict, so a
// re-fetch of the same date corrects late-arriving data.
type PostgresPriceStore struct {
	db *gorm.DB
}

// NewPostgresPriceStore creates the store.
func NewPostgresPriceStore(db *gorm.DB) domrepo.PriceStore {
	return &PostgresPriceStore{db: db}
}

func (s *PostgresPriceStore) Upsert(ctx context.Context, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "trade_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"open", "high", "low", "close", "volume",
		}),
	}).CreateInBatches(bars, 500).Error
	if err != nil {
		return fmt.Errorf("upsert bars: %w", err)
	}
	return nil
}

func (s *PostgresPriceStore) History(ctx context.Context, symbol string, limit int) ([]models.PriceBar, error) {
	q := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("trade_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var bars []models.PriceBar
	if err := q.Find(&bars).Error; err != nil {
		return nil, fmt.Errorf("history %s: %w", symbol, err)
	}

	// fetched newest-first for the limit; callers want chronological order
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

func (s *PostgresPriceStore) LatestDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	var bar models.PriceBar
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("trade_date DESC").
		First(&bar).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest date %s: %w", symbol, err)
	}
	return bar.Day(), true, nil
}

func (s *PostgresPriceStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
