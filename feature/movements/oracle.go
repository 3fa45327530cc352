package movements

import (
	"context"
	"errors"

	countmodels "cycle-count/feature/count/models"
	"cycle-count/feature/movements/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Oracle answers discrepancy queries from the stock-movement log: a scan
// shortfall is explained when the unit left the store through a recorded
// movement.
type Oracle struct {
	db      *gorm.DB
	logger  *zap.Logger
	storeID string
}

// NewOracle creates an oracle over the movement log, scoped to storeID.
func NewOracle(db *gorm.DB, logger *zap.Logger, storeID string) *Oracle {
	return &Oracle{db: db, logger: logger, storeID: storeID}
}

// Explain looks up the most recent movement for identifier. No movement is
// a defined outcome (false, nil), not an error; the discrepancy stays open
// for the operator.
func (o *Oracle) Explain(ctx context.Context, identifier string) (countmodels.Reason, bool, error) {
	var movement models.Movement
	err := o.db.WithContext(ctx).
		Where("identifier = ? AND store_id = ?", identifier, o.storeID).
		Order("occurred_at DESC").
		First(&movement).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	reason, ok := reasonForKind(movement.Kind)
	if !ok {
		o.logger.Warn("movement with unknown kind",
			zap.String("identifier", identifier),
			zap.String("kind", string(movement.Kind)),
		)
		return "", false, nil
	}
	return reason, true, nil
}

func reasonForKind(kind models.MovementKind) (countmodels.Reason, bool) {
	switch kind {
	case models.KindSale:
		return countmodels.ReasonSold, true
	case models.KindTransferOut:
		return countmodels.ReasonTransferredOut, true
	case models.KindWarehouseReturn:
		return countmodels.ReasonWarehouseReturn, true
	default:
		return "", false
	}
}
