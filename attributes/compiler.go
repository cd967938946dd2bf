package attributes

import (
	"errors"
	"regexp"
	"time"

	"storefront-backend/apperrors"
	"storefront-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductSubmission is a product create/update request as the compiler sees
// it: static fields plus the attribute-slug -> raw value map.
type ProductSubmission struct {
	Name            string                 `json:"name"`
	Slug            string                 `json:"slug"`
	SKU             string                 `json:"sku"`
	Model           string                 `json:"model"`
	Description     string                 `json:"description"`
	MetaTitle       string                 `json:"meta_title"`
	MetaDescription string                 `json:"meta_description"`
	CategoryID      uuid.UUID              `json:"category_id"`
	Type            string                 `json:"type"`
	Visibility      string                 `json:"visibility"`
	Price           *float64               `json:"price"`
	CompareAtPrice  *float64               `json:"compare_at_price"`
	CostPrice       *float64               `json:"cost_price"`
	StockQuantity   *int                   `json:"stock_quantity"`
	TrackInventory  *bool                  `json:"track_inventory"`
	LowStockLevel   *int                   `json:"low_stock_threshold"`
	AllowBackorder  *bool                  `json:"allow_backorder"`
	AvailableFrom   *time.Time             `json:"available_from"`
	AvailableUntil  *time.Time             `json:"available_until"`
	Weight          *float64               `json:"weight"`
	Length          *float64               `json:"length"`
	Width           *float64               `json:"width"`
	Height          *float64               `json:"height"`
	DownloadURL     string                 `json:"download_url"`
	DownloadLimit   *int                   `json:"download_limit"`
	DownloadExpiry  *int                   `json:"download_expiry_days"`
	IsActive        *bool                  `json:"is_active"`
	IsFeatured      *bool                  `json:"is_featured"`
	ExtraCategories []uuid.UUID            `json:"additional_categories"`
	Attributes      map[string]interface{} `json:"attributes"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Compiler derives the full rule set for a product submission: static
// product-field rules merged with per-attribute rules generated from the
// target category's live schema. Rules are always generated at validation
// time, never cached.
type Compiler struct {
	DB *gorm.DB
}

func NewCompiler(db *gorm.DB) *Compiler {
	return &Compiler{DB: db}
}

// LoadSchema fetches a tenant's category with its active attributes and
// their active options, ordered for deterministic rule generation. A
// missing or cross-tenant category id is a NotFoundError; validating
// against an empty schema is never the fallback.
func (c *Compiler) LoadSchema(tenantID, categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := c.DB.
		Preload("Attributes", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order, name")
		}).
		Preload("Attributes.Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order")
		}).
		Where("id = ? AND tenant_id = ?", categoryID, tenantID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category")
		}
		return nil, err
	}
	return &category, nil
}

// Validate checks a submission against the composed rule set and returns a
// ValidationError carrying every violation at once, or nil. productID
// excludes the product itself from uniqueness checks on update.
func (c *Compiler) Validate(tenantID uuid.UUID, productID *uuid.UUID, sub *ProductSubmission) error {
	category, err := c.LoadSchema(tenantID, sub.CategoryID)
	if err != nil {
		return err
	}

	verr := apperrors.NewValidationError()

	c.validateStatic(tenantID, productID, sub, verr)

	for i := range category.Attributes {
		attr := &category.Attributes[i]
		value, present := sub.Attributes[attr.Slug]
		if violations := Evaluate(RulesFor(attr), value, present); len(violations) > 0 {
			verr.Add("attributes."+attr.Slug, violations...)
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (c *Compiler) validateStatic(tenantID uuid.UUID, productID *uuid.UUID, sub *ProductSubmission, verr *apperrors.ValidationError) {
	check := func(field string, rules []Rule, value interface{}, present bool) {
		if violations := Evaluate(rules, value, present); len(violations) > 0 {
			verr.Add(field, violations...)
		}
	}

	check("name", []Rule{{Kind: RuleRequired}, {Kind: RuleMaxLength, Length: 255}}, sub.Name, true)
	check("sku", []Rule{{Kind: RuleRequired}, {Kind: RuleMaxLength, Length: 100}}, sub.SKU, true)

	if sub.Slug != "" {
		if len(sub.Slug) > 255 {
			verr.Add("slug", "max_length")
		}
		if !slugPattern.MatchString(sub.Slug) {
			verr.Add("slug", "pattern")
		}
	}

	check("type", []Rule{
		{Kind: RuleRequired},
		{Kind: RuleEnumerated, Allowed: []string{models.ProductTypePhysical, models.ProductTypeDigital, models.ProductTypeService}},
	}, sub.Type, sub.Type != "")
	check("visibility", []Rule{
		{Kind: RuleRequired},
		{Kind: RuleEnumerated, Allowed: []string{models.VisibilityPublic, models.VisibilityPrivate, models.VisibilityHidden}},
	}, sub.Visibility, sub.Visibility != "")

	if sub.Price == nil {
		verr.Add("price", "required")
	} else if *sub.Price < 0 {
		verr.Add("price", "min")
	}
	if sub.CompareAtPrice != nil && sub.Price != nil && *sub.CompareAtPrice <= *sub.Price {
		verr.Add("compare_at_price", "gt")
	}
	if sub.CostPrice != nil && *sub.CostPrice < 0 {
		verr.Add("cost_price", "min")
	}

	if sub.StockQuantity == nil {
		verr.Add("stock_quantity", "required")
	} else if *sub.StockQuantity < 0 {
		verr.Add("stock_quantity", "min")
	}
	if sub.LowStockLevel != nil && *sub.LowStockLevel < 0 {
		verr.Add("low_stock_threshold", "min")
	}

	if sub.AvailableFrom != nil && sub.AvailableUntil != nil && !sub.AvailableUntil.After(*sub.AvailableFrom) {
		verr.Add("available_until", "after")
	}

	for field, dim := range map[string]*float64{
		"weight": sub.Weight, "length": sub.Length, "width": sub.Width, "height": sub.Height,
	} {
		if dim != nil && *dim < 0 {
			verr.Add(field, "min")
		}
	}

	if sub.DownloadURL != "" {
		check("download_url", []Rule{{Kind: RuleURL}, {Kind: RuleMaxLength, Length: 500}}, sub.DownloadURL, true)
	}
	if sub.DownloadLimit != nil && *sub.DownloadLimit < 1 {
		verr.Add("download_limit", "min")
	}
	if sub.DownloadExpiry != nil && *sub.DownloadExpiry < 1 {
		verr.Add("download_expiry_days", "min")
	}

	// Uniqueness pre-checks for a friendly error; the partial unique indexes
	// remain authoritative under concurrency.
	if sub.SKU != "" && c.taken(&models.Product{}, tenantID, "sku", sub.SKU, productID) {
		verr.Add("sku", "unique")
	}
	if sub.Slug != "" && c.taken(&models.Product{}, tenantID, "slug", sub.Slug, productID) {
		verr.Add("slug", "unique")
	}
}

func (c *Compiler) taken(model interface{}, tenantID uuid.UUID, column, value string, excludeID *uuid.UUID) bool {
	query := c.DB.Model(model).
		Where("tenant_id = ?", tenantID).
		Where(column+" = ?", value)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	query.Count(&count)
	return count > 0
}
