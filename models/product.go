package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product types.
const (
	ProductTypePhysical = "physical"
	ProductTypeDigital  = "digital"
	ProductTypeService  = "service"
)

// Product visibility states.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
	VisibilityHidden  = "hidden"
)

// Product is a tenant-scoped catalog entry. SKU and slug uniqueness per
// tenant (among non-deleted rows) is enforced by partial unique indexes
// created in database.Migrate. Custom attribute values live in
// ProductAttributeValue, one row per populated attribute.
type Product struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TenantID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CategoryID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"category_id"`
	Category        *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name            string     `gorm:"not null" json:"name"`
	Slug            string     `gorm:"not null;index" json:"slug"`
	SKU             string     `gorm:"not null;index" json:"sku"`
	Model           string     `json:"model"`
	Description     string     `json:"description"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
	Type            string     `gorm:"default:physical" json:"type"`
	Visibility      string     `gorm:"default:public" json:"visibility"`
	AvailableFrom   *time.Time `json:"available_from,omitempty"`
	AvailableUntil  *time.Time `json:"available_until,omitempty"`

	// Pricing
	Price          float64  `gorm:"not null" json:"price"`
	CompareAtPrice *float64 `json:"compare_at_price,omitempty"`
	CostPrice      *float64 `json:"cost_price,omitempty"`

	// Inventory
	StockQuantity     int  `gorm:"default:0" json:"stock_quantity"`
	TrackInventory    bool `gorm:"default:true" json:"track_inventory"`
	LowStockThreshold int  `gorm:"default:0" json:"low_stock_threshold"`
	AllowBackorder    bool `gorm:"default:false" json:"allow_backorder"`

	// Physical dimensions (physical type by convention, not enforced)
	Weight *float64 `json:"weight,omitempty"`
	Length *float64 `json:"length,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	// Digital delivery (digital type by convention, not enforced)
	DownloadURL        string `json:"download_url"`
	DownloadLimit      *int   `json:"download_limit,omitempty"`
	DownloadExpiryDays *int   `json:"download_expiry_days,omitempty"`

	IsActive   bool           `gorm:"default:true" json:"is_active"`
	IsFeatured bool           `gorm:"default:false" json:"is_featured"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Categories      []Category              `gorm:"many2many:product_categories" json:"categories,omitempty"`
	AttributeValues []ProductAttributeValue `gorm:"foreignKey:ProductID" json:"attribute_values,omitempty"`
	Variants        []ProductVariant        `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasDiscount reports whether a compare-at price is set and exceeds the price.
func (p *Product) HasDiscount() bool {
	return p.CompareAtPrice != nil && *p.CompareAtPrice > p.Price
}

// DiscountPercentage returns the discount relative to the compare-at price,
// rounded to one decimal, or nil when there is no discount.
func (p *Product) DiscountPercentage() *float64 {
	if !p.HasDiscount() {
		return nil
	}
	pct := (*p.CompareAtPrice - p.Price) / *p.CompareAtPrice * 100
	pct = math.Round(pct*10) / 10
	return &pct
}

func (p *Product) IsInStock() bool {
	return !p.TrackInventory || p.StockQuantity > 0
}

func (p *Product) IsLowStock() bool {
	return p.TrackInventory && p.StockQuantity <= p.LowStockThreshold
}

// IsAvailable reports whether the product is publicly visible right now,
// honoring the optional availability window.
func (p *Product) IsAvailable() bool {
	if !p.IsActive || p.Visibility != VisibilityPublic {
		return false
	}
	now := time.Now()
	if p.AvailableFrom != nil && p.AvailableFrom.After(now) {
		return false
	}
	if p.AvailableUntil != nil && p.AvailableUntil.Before(now) {
		return false
	}
	return true
}

func (p *Product) CanBeOrdered() bool {
	return p.IsAvailable() && (p.IsInStock() || p.AllowBackorder)
}

func (p *Product) FormattedPrice() string {
	return fmt.Sprintf("%.2f", p.Price)
}
