package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a node of the tenant-scoped category tree. Slug uniqueness per
// tenant (among non-deleted rows) is enforced by a partial unique index
// created in database.Migrate, not by an application-level pre-check alone.
type Category struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TenantID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name            string         `gorm:"not null" json:"name"`
	Slug            string         `gorm:"not null;index" json:"slug"`
	Description     string         `json:"description"`
	MetaTitle       string         `json:"meta_title"`
	MetaDescription string         `json:"meta_description"`
	ParentID        *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent          *Category      `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children        []Category     `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	SortOrder       int            `gorm:"default:0" json:"sort_order"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Attributes []CategoryAttribute `gorm:"foreignKey:CategoryID" json:"attributes,omitempty"`
	Products   []Product           `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
