package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductAttributeValue is the sparse fact table for custom attributes: one
// row per (product, attribute), raw value stored as an untyped string
// (JSON-encoded array for multiselect, "1"/"0" for booleans, "2006-01-02"
// for dates). Interpretation always goes through the attributes package
// using the owning attribute's declared type.
type ProductAttributeValue struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProductID   uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_product_attribute" json:"product_id"`
	AttributeID uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_product_attribute" json:"attribute_id"`
	Attribute   *CategoryAttribute `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
	Value       string             `json:"value"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (v *ProductAttributeValue) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
