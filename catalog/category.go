// Package catalog implements the tenant-scoped category tree and the
// per-category attribute schema administration.
package catalog

import (
	"encoding/json"
	"errors"
	"strings"

	"storefront-backend/apperrors"
	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxTreeDepth bounds every ancestor walk so corrupted parent links surface
// as an IntegrityError instead of an infinite loop.
const maxTreeDepth = 32

// pathSeparator joins breadcrumb segments root to leaf.
const pathSeparator = " > "

type CategoryService struct {
	DB *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{DB: db}
}

// CategoryInput carries category create/update fields. Pointer fields
// distinguish "not submitted" from zero values on update; Name and Slug are
// required on create and so never clearable.
type CategoryInput struct {
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     *string   `json:"description"`
	MetaTitle       *string   `json:"meta_title"`
	MetaDescription *string   `json:"meta_description"`
	ParentID        ParentRef `json:"parent_id"`
	IsActive        *bool     `json:"is_active"`
	SortOrder       *int      `json:"sort_order"`
}

// ParentRef distinguishes an omitted parent_id (leave unchanged) from an
// explicit null (move to root). A plain *uuid.UUID cannot tell the two
// apart after JSON decoding.
type ParentRef struct {
	Set bool
	ID  *uuid.UUID
}

func (p *ParentRef) UnmarshalJSON(data []byte) error {
	p.Set = true
	if string(data) == "null" {
		p.ID = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	p.ID = &id
	return nil
}

func (p ParentRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ID)
}

// Get returns a non-deleted category in the tenant's scope.
func (s *CategoryService) Get(tenantID, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := s.DB.Where("id = ? AND tenant_id = ?", id, tenantID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category")
		}
		return nil, err
	}
	return &category, nil
}

// getTrashed also matches soft-deleted rows, for restore/force-delete.
func (s *CategoryService) getTrashed(tenantID, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := s.DB.Unscoped().Where("id = ? AND tenant_id = ?", id, tenantID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category")
		}
		return nil, err
	}
	return &category, nil
}

// Create inserts a category. The slug defaults from the name when omitted;
// the id is pre-assigned so the parent check can reject self-parenting
// before insertion.
func (s *CategoryService) Create(tenantID uuid.UUID, input *CategoryInput) (*models.Category, error) {
	verr := apperrors.NewValidationError()

	if strings.TrimSpace(input.Name) == "" {
		verr.Add("name", "required")
	} else if len(input.Name) > 255 {
		verr.Add("name", "max_length")
	}

	slug := input.Slug
	if slug == "" {
		slug = utils.Slugify(input.Name)
	}
	if slug == "" {
		verr.Add("slug", "required")
	} else if s.slugTaken(tenantID, slug, nil) {
		verr.Add("slug", "unique")
	}

	id := uuid.New()
	if input.ParentID.ID != nil {
		if err := s.checkParent(tenantID, id, *input.ParentID.ID, verr); err != nil {
			return nil, err
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}

	category := models.Category{
		ID:        id,
		TenantID:  tenantID,
		Name:      input.Name,
		Slug:      slug,
		ParentID:  input.ParentID.ID,
		IsActive:  true,
		SortOrder: 0,
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.MetaTitle != nil {
		category.MetaTitle = *input.MetaTitle
	}
	if input.MetaDescription != nil {
		category.MetaDescription = *input.MetaDescription
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}

	if err := s.DB.Create(&category).Error; err != nil {
		if isUniqueViolation(err) {
			verr.Add("slug", "unique")
			return nil, verr
		}
		return nil, err
	}
	return &category, nil
}

// Update edits a category. An existing slug is never regenerated on name
// change; an explicitly submitted slug always wins.
func (s *CategoryService) Update(tenantID, id uuid.UUID, input *CategoryInput) (*models.Category, error) {
	category, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()

	if input.Name != "" {
		if len(input.Name) > 255 {
			verr.Add("name", "max_length")
		} else {
			category.Name = input.Name
		}
	}
	if input.Slug != "" && input.Slug != category.Slug {
		if s.slugTaken(tenantID, input.Slug, &id) {
			verr.Add("slug", "unique")
		} else {
			category.Slug = input.Slug
		}
	}

	if input.ParentID.Set {
		if input.ParentID.ID != nil {
			if err := s.checkParent(tenantID, id, *input.ParentID.ID, verr); err != nil {
				return nil, err
			}
		}
		if !verr.HasErrors() {
			// An explicit null moves the category back to the root
			category.ParentID = input.ParentID.ID
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}

	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.MetaTitle != nil {
		category.MetaTitle = *input.MetaTitle
	}
	if input.MetaDescription != nil {
		category.MetaDescription = *input.MetaDescription
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}

	if err := s.DB.Save(category).Error; err != nil {
		if isUniqueViolation(err) {
			verr.Add("slug", "unique")
			return nil, verr
		}
		return nil, err
	}
	return category, nil
}

// checkParent validates a requested parent link: the parent must exist in
// the same tenant, must not be the category itself, and must not be one of
// its descendants. Runs before any insert/update touches the row.
func (s *CategoryService) checkParent(tenantID, categoryID, parentID uuid.UUID, verr *apperrors.ValidationError) error {
	if parentID == categoryID {
		verr.Add("parent_id", "cycle")
		return nil
	}

	var count int64
	if err := s.DB.Model(&models.Category{}).
		Where("id = ? AND tenant_id = ?", parentID, tenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		verr.Add("parent_id", "exists")
		return nil
	}

	descendants, err := s.Descendants(tenantID, categoryID)
	if err != nil {
		return err
	}
	for _, d := range descendants {
		if d.ID == parentID {
			verr.Add("parent_id", "cycle")
			return nil
		}
	}
	return nil
}

// Delete soft-deletes a category. Blocked while it has any non-deleted
// product directly assigned or any non-deleted child.
func (s *CategoryService) Delete(tenantID, id uuid.UUID) error {
	category, err := s.Get(tenantID, id)
	if err != nil {
		return err
	}

	var productCount int64
	if err := s.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
		return err
	}
	if productCount > 0 {
		return apperrors.Conflict("cannot delete a category with %d associated products", productCount)
	}

	var childCount int64
	if err := s.DB.Model(&models.Category{}).Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
		return err
	}
	if childCount > 0 {
		return apperrors.Conflict("cannot delete a category with %d child categories", childCount)
	}

	return s.DB.Delete(category).Error
}

// Restore undoes a soft delete. If the slug was reused by a live category
// while this one was trashed, the unique index rejects the restore and the
// caller gets a ValidationError, not a storage error.
func (s *CategoryService) Restore(tenantID, id uuid.UUID) (*models.Category, error) {
	category, err := s.getTrashed(tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Unscoped().Model(category).Update("deleted_at", nil).Error; err != nil {
		if isUniqueViolation(err) {
			verr := apperrors.NewValidationError()
			verr.Add("slug", "unique")
			return nil, verr
		}
		return nil, err
	}
	category.DeletedAt = gorm.DeletedAt{}
	return category, nil
}

// ForceDelete permanently removes a category and its attribute schema.
// Blocked while any product references it, soft-deleted products included.
func (s *CategoryService) ForceDelete(tenantID, id uuid.UUID) error {
	category, err := s.getTrashed(tenantID, id)
	if err != nil {
		return err
	}

	var productCount int64
	if err := s.DB.Unscoped().Model(&models.Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
		return err
	}
	if productCount > 0 {
		return apperrors.Conflict("cannot permanently delete a category that has product references")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var attributeIDs []uuid.UUID
		if err := tx.Unscoped().Model(&models.CategoryAttribute{}).
			Where("category_id = ?", id).Pluck("id", &attributeIDs).Error; err != nil {
			return err
		}
		if len(attributeIDs) > 0 {
			if err := tx.Where("attribute_id IN ?", attributeIDs).Delete(&models.AttributeOption{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("category_id = ?", id).Delete(&models.CategoryAttribute{}).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(category).Error
	})
}

// FullPath walks the parent chain and joins names root to leaf. The walk is
// bounded; exceeding the bound or revisiting a node means corrupted data.
func (s *CategoryService) FullPath(tenantID uuid.UUID, category *models.Category) (string, error) {
	names := []string{category.Name}
	seen := map[uuid.UUID]bool{category.ID: true}

	current := category
	for depth := 0; current.ParentID != nil; depth++ {
		if depth >= maxTreeDepth {
			return "", apperrors.Integrity("category ancestry exceeds depth %d at %s", maxTreeDepth, category.ID)
		}
		parent, err := s.lookupAncestor(tenantID, *current.ParentID)
		if err != nil {
			return "", err
		}
		if seen[parent.ID] {
			return "", apperrors.Integrity("cycle detected in category ancestry at %s", parent.ID)
		}
		seen[parent.ID] = true
		names = append([]string{parent.Name}, names...)
		current = parent
	}
	return strings.Join(names, pathSeparator), nil
}

// Depth counts ancestors to the root (root = 0), with the same cycle guard
// as FullPath.
func (s *CategoryService) Depth(tenantID uuid.UUID, category *models.Category) (int, error) {
	seen := map[uuid.UUID]bool{category.ID: true}

	depth := 0
	current := category
	for current.ParentID != nil {
		if depth >= maxTreeDepth {
			return 0, apperrors.Integrity("category ancestry exceeds depth %d at %s", maxTreeDepth, category.ID)
		}
		parent, err := s.lookupAncestor(tenantID, *current.ParentID)
		if err != nil {
			return 0, err
		}
		if seen[parent.ID] {
			return 0, apperrors.Integrity("cycle detected in category ancestry at %s", parent.ID)
		}
		seen[parent.ID] = true
		depth++
		current = parent
	}
	return depth, nil
}

func (s *CategoryService) lookupAncestor(tenantID, id uuid.UUID) (*models.Category, error) {
	var parent models.Category
	err := s.DB.Where("id = ? AND tenant_id = ?", id, tenantID).First(&parent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Integrity("dangling parent reference %s", id)
		}
		return nil, err
	}
	return &parent, nil
}

// Descendants collects every category transitively reachable via child
// links, depth-first. Children are visited in (sort_order, name) order so
// the output is deterministic for identical input.
func (s *CategoryService) Descendants(tenantID, id uuid.UUID) ([]models.Category, error) {
	visited := map[uuid.UUID]bool{id: true}
	var result []models.Category

	var walk func(parentID uuid.UUID, depth int) error
	walk = func(parentID uuid.UUID, depth int) error {
		if depth >= maxTreeDepth {
			return apperrors.Integrity("category tree exceeds depth %d under %s", maxTreeDepth, id)
		}
		var children []models.Category
		if err := s.DB.
			Where("parent_id = ? AND tenant_id = ?", parentID, tenantID).
			Order("sort_order, name").
			Find(&children).Error; err != nil {
			return err
		}
		for i := range children {
			child := children[i]
			if visited[child.ID] {
				return apperrors.Integrity("cycle detected in category tree at %s", child.ID)
			}
			visited[child.ID] = true
			result = append(result, child)
			if err := walk(child.ID, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(id, 0); err != nil {
		return nil, err
	}
	return result, nil
}

// ListFilter is the admin listing query: substring search over
// name/description, parent filter ("root" or a specific id), active state,
// pagination.
type ListFilter struct {
	Search   string
	ParentID string
	Status   string
	Page     int
	PerPage  int
}

// CategoryPage is one page of the admin listing with pre-aggregated product
// counts.
type CategoryPage struct {
	Items   []CategoryListItem `json:"items"`
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
}

type CategoryListItem struct {
	models.Category
	Deleted      bool  `json:"deleted"`
	ProductCount int64 `json:"product_count"`
}

// List returns the admin listing. Soft-deleted rows are included by
// default; ordering is (sort_order, name) ascending.
func (s *CategoryService) List(tenantID uuid.UUID, filter ListFilter) (*CategoryPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 15
	}

	query := s.DB.Unscoped().Model(&models.Category{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}
	switch filter.ParentID {
	case "":
	case "root":
		query = query.Where("parent_id IS NULL")
	default:
		query = query.Where("parent_id = ?", filter.ParentID)
	}
	switch filter.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := query.
		Order("sort_order, name").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&categories).Error; err != nil {
		return nil, err
	}

	counts, err := s.productCounts(categories)
	if err != nil {
		return nil, err
	}

	items := make([]CategoryListItem, 0, len(categories))
	for _, c := range categories {
		items = append(items, CategoryListItem{
			Category:     c,
			Deleted:      c.DeletedAt.Valid,
			ProductCount: counts[c.ID],
		})
	}

	return &CategoryPage{Items: items, Total: total, Page: filter.Page, PerPage: filter.PerPage}, nil
}

func (s *CategoryService) productCounts(categories []models.Category) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(categories))
	if len(categories) == 0 {
		return counts, nil
	}

	ids := make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}

	var rows []struct {
		CategoryID uuid.UUID
		Count      int64
	}
	err := s.DB.Model(&models.Product{}).
		Select("category_id, COUNT(*) as count").
		Where("category_id IN ?", ids).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	return counts, nil
}

func (s *CategoryService) slugTaken(tenantID uuid.UUID, slug string, excludeID *uuid.UUID) bool {
	query := s.DB.Model(&models.Category{}).
		Where("tenant_id = ? AND slug = ?", tenantID, slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	query.Count(&count)
	return count > 0
}

// isUniqueViolation matches the unique-constraint errors the postgres and
// sqlite drivers produce, so a storage-level collision surfaces as a
// ValidationError rather than a 500.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique failed")
}
