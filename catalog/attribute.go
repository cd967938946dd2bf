package catalog

import (
	"errors"
	"strings"

	"storefront-backend/apperrors"
	"storefront-backend/attributes"
	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttributeService administers a category's attribute schema.
type AttributeService struct {
	DB *gorm.DB
}

func NewAttributeService(db *gorm.DB) *AttributeService {
	return &AttributeService{DB: db}
}

// OptionInput is one entry of the complete desired option set. Sort order
// is the list index.
type OptionInput struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Color    string `json:"color"`
	IsActive *bool  `json:"is_active"`
}

// AttributeInput carries attribute create/update fields. For select and
// multiselect types, Options must be the complete desired set on every
// update: the existing set is replaced wholesale, not merged.
type AttributeInput struct {
	Name          string                       `json:"name"`
	Slug          string                       `json:"slug"`
	Type          string                       `json:"type"`
	Description   string                       `json:"description"`
	Unit          string                       `json:"unit"`
	DefaultValue  string                       `json:"default_value"`
	Constraints   *models.AttributeConstraints `json:"constraints"`
	IsRequired    *bool                        `json:"is_required"`
	IsFilterable  *bool                        `json:"is_filterable"`
	IsSearchable  *bool                        `json:"is_searchable"`
	ShowInListing *bool                        `json:"show_in_listing"`
	SortOrder     *int                         `json:"sort_order"`
	IsActive      *bool                        `json:"is_active"`
	Options       []OptionInput                `json:"options"`
}

// List returns a category's full schema (active and inactive attributes)
// with options, ordered for display.
func (s *AttributeService) List(tenantID, categoryID uuid.UUID) ([]models.CategoryAttribute, error) {
	if _, err := s.category(tenantID, categoryID); err != nil {
		return nil, err
	}

	var attrs []models.CategoryAttribute
	err := s.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Where("category_id = ?", categoryID).
		Order("sort_order, name").
		Find(&attrs).Error
	return attrs, err
}

// Get returns one attribute of a tenant's category.
func (s *AttributeService) Get(tenantID, categoryID, attributeID uuid.UUID) (*models.CategoryAttribute, error) {
	if _, err := s.category(tenantID, categoryID); err != nil {
		return nil, err
	}

	var attr models.CategoryAttribute
	err := s.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Where("id = ? AND category_id = ?", attributeID, categoryID).
		First(&attr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("attribute")
		}
		return nil, err
	}
	return &attr, nil
}

// Create adds an attribute to a category's schema. Options are created
// alongside for choice types, sort order = list index.
func (s *AttributeService) Create(tenantID, categoryID uuid.UUID, input *AttributeInput) (*models.CategoryAttribute, error) {
	if _, err := s.category(tenantID, categoryID); err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	slug := s.validateInput(categoryID, nil, input, verr)
	if verr.HasErrors() {
		return nil, verr
	}

	attr := models.CategoryAttribute{
		ID:           uuid.New(),
		CategoryID:   categoryID,
		Name:         input.Name,
		Slug:         slug,
		Type:         input.Type,
		Description:  input.Description,
		Unit:         input.Unit,
		DefaultValue: input.DefaultValue,
		Constraints:  input.Constraints,
		IsActive:     true,
	}
	applyFlags(&attr, input)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attr).Error; err != nil {
			return err
		}
		if attributes.HasOptions(attr.Type) && len(input.Options) > 0 {
			return createOptions(tx, attr.ID, input.Options)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			verr.Add("slug", "unique")
			return nil, verr
		}
		return nil, err
	}

	return s.Get(tenantID, categoryID, attr.ID)
}

// Update edits an attribute. For choice types the existing option set is
// deleted and recreated from the submitted list inside one transaction, so
// either the full replacement set exists or the prior set stays untouched.
func (s *AttributeService) Update(tenantID, categoryID, attributeID uuid.UUID, input *AttributeInput) (*models.CategoryAttribute, error) {
	attr, err := s.Get(tenantID, categoryID, attributeID)
	if err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()
	slug := s.validateInput(categoryID, &attributeID, input, verr)
	if verr.HasErrors() {
		return nil, verr
	}

	attr.Name = input.Name
	attr.Slug = slug
	attr.Type = input.Type
	attr.Description = input.Description
	attr.Unit = input.Unit
	attr.DefaultValue = input.DefaultValue
	attr.Constraints = input.Constraints
	applyFlags(attr, input)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(attr).Error; err != nil {
			return err
		}
		if attributes.HasOptions(attr.Type) {
			if err := tx.Where("attribute_id = ?", attr.ID).Delete(&models.AttributeOption{}).Error; err != nil {
				return err
			}
			return createOptions(tx, attr.ID, input.Options)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			verr.Add("slug", "unique")
			return nil, verr
		}
		return nil, err
	}

	return s.Get(tenantID, categoryID, attr.ID)
}

// Delete soft-deletes an attribute. Blocked while any product value row
// references it.
func (s *AttributeService) Delete(tenantID, categoryID, attributeID uuid.UUID) error {
	attr, err := s.Get(tenantID, categoryID, attributeID)
	if err != nil {
		return err
	}

	var valueCount int64
	if err := s.DB.Model(&models.ProductAttributeValue{}).
		Where("attribute_id = ?", attributeID).
		Count(&valueCount).Error; err != nil {
		return err
	}
	if valueCount > 0 {
		return apperrors.Conflict("cannot delete an attribute referenced by %d product values", valueCount)
	}

	return s.DB.Delete(attr).Error
}

func (s *AttributeService) category(tenantID, categoryID uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := s.DB.Where("id = ? AND tenant_id = ?", categoryID, tenantID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category")
		}
		return nil, err
	}
	return &category, nil
}

// validateInput checks name/type/slug and returns the effective slug
// (derived from the name when omitted).
func (s *AttributeService) validateInput(categoryID uuid.UUID, excludeID *uuid.UUID, input *AttributeInput, verr *apperrors.ValidationError) string {
	if strings.TrimSpace(input.Name) == "" {
		verr.Add("name", "required")
	} else if len(input.Name) > 255 {
		verr.Add("name", "max_length")
	}

	if input.Type == "" {
		verr.Add("type", "required")
	} else if !attributes.IsValidType(input.Type) {
		verr.Add("type", "in")
	}

	slug := input.Slug
	if slug == "" {
		slug = utils.Slugify(input.Name)
	}
	if slug == "" {
		verr.Add("slug", "required")
	} else if s.slugTaken(categoryID, slug, excludeID) {
		verr.Add("slug", "unique")
	}

	for _, opt := range input.Options {
		if strings.TrimSpace(opt.Label) == "" || strings.TrimSpace(opt.Value) == "" {
			verr.Add("options", "invalid")
			break
		}
	}

	return slug
}

func (s *AttributeService) slugTaken(categoryID uuid.UUID, slug string, excludeID *uuid.UUID) bool {
	query := s.DB.Model(&models.CategoryAttribute{}).
		Where("category_id = ? AND slug = ?", categoryID, slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	query.Count(&count)
	return count > 0
}

func applyFlags(attr *models.CategoryAttribute, input *AttributeInput) {
	if input.IsRequired != nil {
		attr.IsRequired = *input.IsRequired
	}
	if input.IsFilterable != nil {
		attr.IsFilterable = *input.IsFilterable
	}
	if input.IsSearchable != nil {
		attr.IsSearchable = *input.IsSearchable
	}
	if input.ShowInListing != nil {
		attr.ShowInListing = *input.ShowInListing
	}
	if input.SortOrder != nil {
		attr.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		attr.IsActive = *input.IsActive
	}
}

func createOptions(tx *gorm.DB, attributeID uuid.UUID, options []OptionInput) error {
	for i, opt := range options {
		row := models.AttributeOption{
			ID:          uuid.New(),
			AttributeID: attributeID,
			Label:       opt.Label,
			Value:       opt.Value,
			Color:       opt.Color,
			SortOrder:   i,
			IsActive:    true,
		}
		if opt.IsActive != nil {
			row.IsActive = *opt.IsActive
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
