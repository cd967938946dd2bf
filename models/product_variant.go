package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductVariant is one purchasable variation of a product ("Red - XL").
// Its price is the product's base price plus the modifier, which may be
// negative. SKU uniqueness per tenant (among non-deleted rows, null SKUs
// exempt) is enforced by a partial unique index created in database.Migrate.
type ProductVariant struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TenantID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProductID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       *Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Name          string            `gorm:"not null" json:"name"`
	SKU           *string           `json:"sku,omitempty"`
	PriceModifier float64           `gorm:"default:0" json:"price_modifier"`
	StockQuantity int               `gorm:"default:0" json:"stock_quantity"`
	Attributes    map[string]string `gorm:"serializer:json" json:"attributes,omitempty"`
	IsActive      bool              `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// FinalPrice is the product's base price adjusted by the variant modifier.
func (v *ProductVariant) FinalPrice(basePrice float64) float64 {
	return basePrice + v.PriceModifier
}

func (v *ProductVariant) IsInStock() bool {
	return v.StockQuantity > 0
}
