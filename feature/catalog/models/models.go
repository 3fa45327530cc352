package models

// Product is one row of the back-office product catalog. Each row is a
// countable unit: serialized goods carry one row per unit identifier,
// aggregate goods carry one representative row per SKU.
type Product struct {
	Identifier string  `gorm:"column:identifier;primaryKey" json:"identifier"`
	SKU        string  `gorm:"column:sku;index" json:"sku"`
	Name       string  `gorm:"column:name" json:"name"`
	Price      float64 `gorm:"column:price" json:"price"`
	// Mode is the counting mode: IDENTIFIER_SCAN or AGGREGATE_QUANTITY.
	Mode     string `gorm:"column:counting_mode" json:"mode"`
	ImageURL string `gorm:"column:image_url" json:"image_url,omitempty"`
	StoreID  string `gorm:"column:store_id;index" json:"store_id"`
}

// TableName overrides the table name.
func (Product) TableName() string {
	return "catalog_products"
}
