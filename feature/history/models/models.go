package models

import "time"

// Archive is one row of the session archive: the back-office record of a
// finished count, kept for the history screen.
type Archive struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	StoreID     string    `gorm:"column:store_id;index" json:"store_id"`
	Date        time.Time `gorm:"column:date;index" json:"date"`
	Status      string    `gorm:"column:status" json:"status"`
	EndTime     time.Time `gorm:"column:end_time" json:"end_time"`
	Shortages   int       `gorm:"column:shortages" json:"shortages"`
	Overages    int       `gorm:"column:overages" json:"overages"`
	NetVariance float64   `gorm:"column:net_variance" json:"net_variance"`
}

// TableName overrides the table name.
func (Archive) TableName() string {
	return "session_archives"
}
