package blob

import (
	"context"
	"errors"
	"fmt"

	"tumatch/client/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL stores blobs in the `blobs` table through gorm.
type SQL struct {
	db *gorm.DB
}

var _ Store = (*SQL)(nil)

// NewSQL wraps an already migrated connection (see database.Open).
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row models.Blob
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get blob %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	row := models.Blob{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("set blob %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Blob{}).Error; err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}
