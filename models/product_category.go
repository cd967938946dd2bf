package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductCategory is the join row for a product's additional categories.
// Exactly one assignment per product carries IsPrimary and it mirrors
// Product.CategoryID.
type ProductCategory struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"product_id"`
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey" json:"category_id"`
	IsPrimary  bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
