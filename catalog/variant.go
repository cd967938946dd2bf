package catalog

import (
	"errors"
	"strings"

	"storefront-backend/apperrors"
	"storefront-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VariantService administers a product's purchasable variations.
type VariantService struct {
	DB *gorm.DB
}

func NewVariantService(db *gorm.DB) *VariantService {
	return &VariantService{DB: db}
}

// VariantInput carries variant create/update fields. The price modifier is
// relative to the product's base price and may be negative.
type VariantInput struct {
	Name          string            `json:"name"`
	SKU           *string           `json:"sku"`
	PriceModifier *float64          `json:"price_modifier"`
	StockQuantity *int              `json:"stock_quantity"`
	Attributes    map[string]string `json:"attributes"`
	IsActive      *bool             `json:"is_active"`
}

// List returns every variant of a tenant's product, newest last.
func (s *VariantService) List(tenantID, productID uuid.UUID) ([]models.ProductVariant, error) {
	if _, err := s.product(tenantID, productID); err != nil {
		return nil, err
	}

	var variants []models.ProductVariant
	err := s.DB.
		Where("product_id = ?", productID).
		Order("created_at, name").
		Find(&variants).Error
	return variants, err
}

// Get returns one variant of a tenant's product.
func (s *VariantService) Get(tenantID, productID, variantID uuid.UUID) (*models.ProductVariant, error) {
	if _, err := s.product(tenantID, productID); err != nil {
		return nil, err
	}

	var variant models.ProductVariant
	err := s.DB.
		Where("id = ? AND product_id = ?", variantID, productID).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("variant")
		}
		return nil, err
	}
	return &variant, nil
}

// Create adds a variant to a product.
func (s *VariantService) Create(tenantID, productID uuid.UUID, input *VariantInput) (*models.ProductVariant, error) {
	if _, err := s.product(tenantID, productID); err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	s.validateInput(tenantID, nil, input, verr)
	if verr.HasErrors() {
		return nil, verr
	}

	variant := models.ProductVariant{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ProductID:  productID,
		Name:       input.Name,
		SKU:        input.SKU,
		Attributes: input.Attributes,
		IsActive:   true,
	}
	applyVariantFields(&variant, input)

	if err := s.DB.Create(&variant).Error; err != nil {
		if isUniqueViolation(err) {
			verr.Add("sku", "unique")
			return nil, verr
		}
		return nil, err
	}
	return &variant, nil
}

// Update edits a variant. Name and SKU follow the submission; omitted
// numeric fields keep their current values.
func (s *VariantService) Update(tenantID, productID, variantID uuid.UUID, input *VariantInput) (*models.ProductVariant, error) {
	variant, err := s.Get(tenantID, productID, variantID)
	if err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	s.validateInput(tenantID, &variantID, input, verr)
	if verr.HasErrors() {
		return nil, verr
	}

	variant.Name = input.Name
	variant.SKU = input.SKU
	if input.Attributes != nil {
		variant.Attributes = input.Attributes
	}
	applyVariantFields(variant, input)

	if err := s.DB.Save(variant).Error; err != nil {
		if isUniqueViolation(err) {
			verr.Add("sku", "unique")
			return nil, verr
		}
		return nil, err
	}
	return variant, nil
}

// Delete soft-deletes a variant.
func (s *VariantService) Delete(tenantID, productID, variantID uuid.UUID) error {
	variant, err := s.Get(tenantID, productID, variantID)
	if err != nil {
		return err
	}
	return s.DB.Delete(variant).Error
}

func (s *VariantService) product(tenantID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.DB.Where("id = ? AND tenant_id = ?", productID, tenantID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product")
		}
		return nil, err
	}
	return &product, nil
}

func (s *VariantService) validateInput(tenantID uuid.UUID, excludeID *uuid.UUID, input *VariantInput, verr *apperrors.ValidationError) {
	if strings.TrimSpace(input.Name) == "" {
		verr.Add("name", "required")
	} else if len(input.Name) > 255 {
		verr.Add("name", "max_length")
	}

	if input.SKU != nil {
		if len(*input.SKU) > 100 {
			verr.Add("sku", "max_length")
		} else if s.skuTaken(tenantID, *input.SKU, excludeID) {
			verr.Add("sku", "unique")
		}
	}

	if input.StockQuantity != nil && *input.StockQuantity < 0 {
		verr.Add("stock_quantity", "min")
	}
}

func (s *VariantService) skuTaken(tenantID uuid.UUID, sku string, excludeID *uuid.UUID) bool {
	query := s.DB.Model(&models.ProductVariant{}).
		Where("tenant_id = ? AND sku = ?", tenantID, sku)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	query.Count(&count)
	return count > 0
}

func applyVariantFields(variant *models.ProductVariant, input *VariantInput) {
	if input.PriceModifier != nil {
		variant.PriceModifier = *input.PriceModifier
	}
	if input.StockQuantity != nil {
		variant.StockQuantity = *input.StockQuantity
	}
	if input.IsActive != nil {
		variant.IsActive = *input.IsActive
	}
}
