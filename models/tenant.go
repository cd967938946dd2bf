package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tenant struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Domain      string         `json:"domain"`
	Plan        string         `gorm:"default:standard" json:"plan"`
	Status      string         `gorm:"default:active" json:"status"` // active, suspended, cancelled
	MaxUsers    int            `gorm:"default:10" json:"max_users"`
	MaxProducts int            `gorm:"default:1000" json:"max_products"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Categories  []Category     `gorm:"foreignKey:TenantID" json:"categories,omitempty"`
	Products    []Product      `gorm:"foreignKey:TenantID" json:"products,omitempty"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the tenant may be operated on at all.
func (t *Tenant) IsActive() bool {
	if t.Status != "active" {
		return false
	}
	return t.ExpiresAt == nil || t.ExpiresAt.After(time.Now())
}
