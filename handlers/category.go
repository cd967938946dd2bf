package handlers

import (
	"net/http"
	"strconv"

	"storefront-backend/catalog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	Service    *catalog.CategoryService
	Attributes *catalog.AttributeService
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{
		Service:    catalog.NewCategoryService(db),
		Attributes: catalog.NewAttributeService(db),
	}
}

// List returns one page of the admin category listing, soft-deleted rows
// included, with per-category product counts.
func (h *CategoryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	filter := catalog.ListFilter{
		Search:   c.Query("search"),
		ParentID: c.Query("parent_id"),
		Status:   c.Query("status"),
		Page:     page,
		PerPage:  perPage,
	}

	result, err := h.Service.List(tenantID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns one category with its computed breadcrumb path, depth and
// direct children.
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tenant := tenantID(c)

	category, err := h.Service.Get(tenant, id)
	if err != nil {
		respondError(c, err)
		return
	}

	fullPath, err := h.Service.FullPath(tenant, category)
	if err != nil {
		respondError(c, err)
		return
	}
	depth, err := h.Service.Depth(tenant, category)
	if err != nil {
		respondError(c, err)
		return
	}
	attrs, err := h.Attributes.List(tenant, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":   category,
		"full_path":  fullPath,
		"depth":      depth,
		"attributes": attrs,
	})
}

// Descendants returns every category transitively below the given one, in
// deterministic depth-first order.
func (h *CategoryHandler) Descendants(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tenant := tenantID(c)

	if _, err := h.Service.Get(tenant, id); err != nil {
		respondError(c, err)
		return
	}

	descendants, err := h.Service.Descendants(tenant, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"descendants": descendants})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var input catalog.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	category, err := h.Service.Create(tenantID(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input catalog.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	category, err := h.Service.Update(tenantID(c), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(tenantID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

func (h *CategoryHandler) Restore(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	category, err := h.Service.Restore(tenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) ForceDelete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.Service.ForceDelete(tenantID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category permanently deleted"})
}
