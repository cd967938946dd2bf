package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttributeConstraints is the optional structured constraint set carried by a
// CategoryAttribute, stored as a JSON column.
type AttributeConstraints struct {
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// CategoryAttribute defines one custom field of a category's schema. The
// value type is one of the closed set in the attributes package; slug
// uniqueness per (category, non-deleted rows) is enforced by a partial
// unique index created in database.Migrate.
type CategoryAttribute struct {
	ID            uuid.UUID             `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CategoryID    uuid.UUID             `gorm:"type:uuid;not null;index" json:"category_id"`
	Category      *Category             `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name          string                `gorm:"not null" json:"name"`
	Slug          string                `gorm:"not null;index" json:"slug"`
	Type          string                `gorm:"not null" json:"type"`
	Description   string                `json:"description"`
	Unit          string                `json:"unit"`
	DefaultValue  string                `json:"default_value"`
	Constraints   *AttributeConstraints `gorm:"serializer:json" json:"constraints,omitempty"`
	IsRequired    bool                  `gorm:"default:false" json:"is_required"`
	IsFilterable  bool                  `gorm:"default:false" json:"is_filterable"`
	IsSearchable  bool                  `gorm:"default:false" json:"is_searchable"`
	ShowInListing bool                  `gorm:"default:false" json:"show_in_listing"`
	SortOrder     int                   `gorm:"default:0" json:"sort_order"`
	IsActive      bool                  `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	DeletedAt     gorm.DeletedAt        `gorm:"index" json:"-"`

	Options []AttributeOption `gorm:"foreignKey:AttributeID" json:"options,omitempty"`
}

func (a *CategoryAttribute) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ActiveOptionValues returns the stored tokens of the active options, in
// sort order. For select/multiselect attributes this is exactly the set of
// valid stored values.
func (a *CategoryAttribute) ActiveOptionValues() []string {
	var values []string
	for _, opt := range a.Options {
		if opt.IsActive {
			values = append(values, opt.Value)
		}
	}
	return values
}
