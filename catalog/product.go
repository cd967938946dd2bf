package catalog

import (
	"errors"

	"storefront-backend/apperrors"
	"storefront-backend/attributes"
	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductService persists products against their category's attribute
// schema. Every write runs the rule compiler first and then stores the
// static fields, category assignments and attribute values in one
// transaction.
type ProductService struct {
	DB       *gorm.DB
	compiler *attributes.Compiler
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{DB: db, compiler: attributes.NewCompiler(db)}
}

// Get returns a non-deleted product in the tenant's scope.
func (s *ProductService) Get(tenantID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.DB.
		Preload("Category").
		Preload("Categories").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, name") }).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product")
		}
		return nil, err
	}
	return &product, nil
}

// Create validates the submission against the target category's schema and
// persists the product, its category assignments and its attribute values
// atomically.
func (s *ProductService) Create(tenantID uuid.UUID, sub *attributes.ProductSubmission) (*models.Product, error) {
	if err := s.compiler.Validate(tenantID, nil, sub); err != nil {
		return nil, err
	}

	product := models.Product{
		ID:       uuid.New(),
		TenantID: tenantID,
		IsActive: true,
	}
	applySubmission(&product, sub)
	if product.Slug == "" {
		product.Slug = utils.Slugify(product.Name)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		if err := syncCategories(tx, &product, sub.ExtraCategories); err != nil {
			return err
		}
		if len(sub.Attributes) > 0 {
			return attributes.NewValueStore(tx).SetValues(&product, sub.Attributes)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			verr := apperrors.NewValidationError()
			verr.Add("sku", "unique")
			return nil, verr
		}
		return nil, err
	}

	return s.Get(tenantID, product.ID)
}

// Update revalidates the full submission against the (possibly changed)
// category schema and replaces the static fields, category assignments and
// submitted attribute values. The slug is never regenerated on rename.
func (s *ProductService) Update(tenantID, id uuid.UUID, sub *attributes.ProductSubmission) (*models.Product, error) {
	product, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}

	if sub.Slug == "" {
		sub.Slug = product.Slug
	}
	if err := s.compiler.Validate(tenantID, &id, sub); err != nil {
		return nil, err
	}

	applySubmission(product, sub)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(product).Error; err != nil {
			return err
		}
		if err := syncCategories(tx, product, sub.ExtraCategories); err != nil {
			return err
		}
		if len(sub.Attributes) > 0 {
			return attributes.NewValueStore(tx).SetValues(product, sub.Attributes)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			verr := apperrors.NewValidationError()
			verr.Add("sku", "unique")
			return nil, verr
		}
		return nil, err
	}

	return s.Get(tenantID, id)
}

// Delete soft-deletes a product. Its attribute value rows stay in place so
// a restore keeps the data.
func (s *ProductService) Delete(tenantID, id uuid.UUID) error {
	product, err := s.Get(tenantID, id)
	if err != nil {
		return err
	}
	return s.DB.Delete(product).Error
}

// ProductFilter is the admin listing query.
type ProductFilter struct {
	Search     string
	CategoryID string
	Status     string
	Type       string
	Page       int
	PerPage    int
}

// ProductPage is one page of the admin product listing.
type ProductPage struct {
	Items   []models.Product `json:"items"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// List returns the admin product listing, newest first.
func (s *ProductService) List(tenantID uuid.UUID, filter ProductFilter) (*ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 15
	}

	query := s.DB.Model(&models.Product{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like, like)
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	switch filter.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var products []models.Product
	err := query.
		Preload("Category").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return &ProductPage{Items: products, Total: total, Page: filter.Page, PerPage: filter.PerPage}, nil
}

// applySubmission copies the validated static fields onto the model. The
// compiler has already guaranteed the required pointers are non-nil.
func applySubmission(product *models.Product, sub *attributes.ProductSubmission) {
	product.Name = sub.Name
	if sub.Slug != "" {
		product.Slug = sub.Slug
	}
	product.SKU = sub.SKU
	product.Model = sub.Model
	product.Description = sub.Description
	product.MetaTitle = sub.MetaTitle
	product.MetaDescription = sub.MetaDescription
	product.CategoryID = sub.CategoryID
	if sub.Type != "" {
		product.Type = sub.Type
	}
	if sub.Visibility != "" {
		product.Visibility = sub.Visibility
	}
	product.AvailableFrom = sub.AvailableFrom
	product.AvailableUntil = sub.AvailableUntil

	product.Price = *sub.Price
	product.CompareAtPrice = sub.CompareAtPrice
	product.CostPrice = sub.CostPrice

	product.StockQuantity = *sub.StockQuantity
	if sub.TrackInventory != nil {
		product.TrackInventory = *sub.TrackInventory
	}
	if sub.LowStockLevel != nil {
		product.LowStockThreshold = *sub.LowStockLevel
	}
	if sub.AllowBackorder != nil {
		product.AllowBackorder = *sub.AllowBackorder
	}

	product.Weight = sub.Weight
	product.Length = sub.Length
	product.Width = sub.Width
	product.Height = sub.Height

	product.DownloadURL = sub.DownloadURL
	product.DownloadLimit = sub.DownloadLimit
	product.DownloadExpiryDays = sub.DownloadExpiry

	if sub.IsActive != nil {
		product.IsActive = *sub.IsActive
	}
	if sub.IsFeatured != nil {
		product.IsFeatured = *sub.IsFeatured
	}
}

// syncCategories replaces the product's category assignments: the primary
// category plus any extra ones, deduplicated.
func syncCategories(tx *gorm.DB, product *models.Product, extras []uuid.UUID) error {
	if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductCategory{}).Error; err != nil {
		return err
	}

	seen := map[uuid.UUID]bool{product.CategoryID: true}
	rows := []models.ProductCategory{
		{ProductID: product.ID, CategoryID: product.CategoryID, IsPrimary: true},
	}
	for _, extra := range extras {
		if seen[extra] {
			continue
		}
		seen[extra] = true
		rows = append(rows, models.ProductCategory{ProductID: product.ID, CategoryID: extra, IsPrimary: false})
	}
	return tx.Create(&rows).Error
}
