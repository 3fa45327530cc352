package catalog

import (
	"context"
	"errors"

	"cycle-count/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an identifier has no catalog row.
var ErrNotFound = errors.New("catalog: product not found")

// Service reads the back-office product catalog for one store.
type Service struct {
	db      *gorm.DB
	logger  *zap.Logger
	storeID string
}

// NewService creates a catalog service scoped to storeID.
func NewService(db *gorm.DB, logger *zap.Logger, storeID string) *Service {
	return &Service{db: db, logger: logger, storeID: storeID}
}

// Lookup fetches the product carrying the given unit identifier.
func (s *Service) Lookup(ctx context.Context, identifier string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Where("identifier = ? AND store_id = ?", identifier, s.storeID).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListExpected returns the store's full expectation list, ordered by SKU
// then identifier so counts render stably.
func (s *Service) ListExpected(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("store_id = ?", s.storeID).
		Order("sku, identifier").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
