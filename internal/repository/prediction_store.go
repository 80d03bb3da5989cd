package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/pkg/util"

	"gorm.io/gorm"
)

// PostgresPredictionStore implements PredictionStore over gorm. The replace
// runs delete-then-insert inside one transaction so readers see either the
// previous complete set or the new one.
type PostgresPredictionStore struct {
	db *gorm.DB
}

// NewPostgresPredictionStore creates the store.
func NewPostgresPredictionStore(db *gorm.DB) domrepo.PredictionStore {
	return &PostgresPredictionStore{db: db}
}

func (s *PostgresPredictionStore) ReplaceAll(ctx context.Context, symbol string, records []models.PredictionRecord) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("symbol = ?", symbol).Delete(&models.PredictionRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("replace predictions %s: %w", symbol, err)
	}
	return nil
}

func (s *PostgresPredictionStore) Active(ctx context.Context, symbol string) ([]models.PredictionRecord, error) {
	var records []models.PredictionRecord
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("target_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("active predictions %s: %w", symbol, err)
	}
	return records, nil
}

func (s *PostgresPredictionStore) LatestGeneratedOn(ctx context.Context, symbol string) (time.Time, bool, error) {
	var record models.PredictionRecord
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("generated_on DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest generated_on %s: %w", symbol, err)
	}
	return util.DayUTC(record.GeneratedOn), true, nil
}
