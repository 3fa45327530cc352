package history

import (
	"context"

	"cycle-count/feature/history/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service reads the store's past count sessions from the archive.
type Service struct {
	db      *gorm.DB
	logger  *zap.Logger
	storeID string
}

// NewService creates a history service scoped to storeID.
func NewService(db *gorm.DB, logger *zap.Logger, storeID string) *Service {
	return &Service{db: db, logger: logger, storeID: storeID}
}

// List returns the store's archived sessions, most recent first.
func (s *Service) List(ctx context.Context, limit int) ([]models.Archive, error) {
	if limit <= 0 {
		limit = 30
	}

	var archives []models.Archive
	err := s.db.WithContext(ctx).
		Where("store_id = ?", s.storeID).
		Order("date DESC").
		Limit(limit).
		Find(&archives).Error
	if err != nil {
		return nil, err
	}
	return archives, nil
}
