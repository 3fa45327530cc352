package models

import "time"

// MovementKind classifies a stock movement.
type MovementKind string

const (
	KindSale            MovementKind = "sale"
	KindTransferOut     MovementKind = "transfer_out"
	KindWarehouseReturn MovementKind = "warehouse_return"
)

// Movement is one row of the back-office stock-movement log.
type Movement struct {
	ID         uint64       `gorm:"column:id;primaryKey;autoIncrement"`
	Identifier string       `gorm:"column:identifier;index"`
	Kind       MovementKind `gorm:"column:kind"`
	StoreID    string       `gorm:"column:store_id;index"`
	OccurredAt time.Time    `gorm:"column:occurred_at"`
}

// TableName overrides the table name.
func (Movement) TableName() string {
	return "stock_movements"
}
