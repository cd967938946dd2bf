package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttributeOption is a valid choice for a select/multiselect attribute.
// Options are replaced wholesale on attribute update, so there is no soft
// delete here.
type AttributeOption struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AttributeID uuid.UUID `gorm:"type:uuid;not null;index" json:"attribute_id"`
	Label       string    `gorm:"not null" json:"label"`
	Value       string    `gorm:"not null" json:"value"`
	Color       string    `json:"color"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (o *AttributeOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
