package handlers

import (
	"net/http"
	"strconv"

	"storefront-backend/attributes"
	"storefront-backend/catalog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProductHandler struct {
	Service *catalog.ProductService
	Values  *attributes.ValueStore
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{
		Service: catalog.NewProductService(db),
		Values:  attributes.NewValueStore(db),
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	filter := catalog.ProductFilter{
		Search:     c.Query("search"),
		CategoryID: c.Query("category_id"),
		Status:     c.Query("status"),
		Type:       c.Query("type"),
		Page:       page,
		PerPage:    perPage,
	}

	result, err := h.Service.List(tenantID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns one product with every schema attribute of its category
// projected alongside the product's typed and formatted value.
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.Service.Get(tenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	projections, err := h.Values.ValuesForCategory(product)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":             product,
		"attributes":          projections,
		"has_discount":        product.HasDiscount(),
		"discount_percentage": product.DiscountPercentage(),
		"is_in_stock":         product.IsInStock(),
		"is_low_stock":        product.IsLowStock(),
		"can_be_ordered":      product.CanBeOrdered(),
	})
}

func (h *ProductHandler) Create(c *gin.Context) {
	var sub attributes.ProductSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	product, err := h.Service.Create(tenantID(c), &sub)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var sub attributes.ProductSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	product, err := h.Service.Update(tenantID(c), id, &sub)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(tenantID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
