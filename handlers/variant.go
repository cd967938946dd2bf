package handlers

import (
	"net/http"

	"storefront-backend/catalog"
	"storefront-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type VariantHandler struct {
	Service  *catalog.VariantService
	Products *catalog.ProductService
}

func NewVariantHandler(db *gorm.DB) *VariantHandler {
	return &VariantHandler{
		Service:  catalog.NewVariantService(db),
		Products: catalog.NewProductService(db),
	}
}

// variantView decorates a variant with the price resolved against the
// product's base price and the stock state.
func variantView(v models.ProductVariant, basePrice float64) gin.H {
	return gin.H{
		"variant":     v,
		"final_price": v.FinalPrice(basePrice),
		"is_in_stock": v.IsInStock(),
	}
}

func (h *VariantHandler) List(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	tenant := tenantID(c)

	product, err := h.Products.Get(tenant, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	variants, err := h.Service.List(tenant, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]gin.H, 0, len(variants))
	for _, v := range variants {
		views = append(views, variantView(v, product.Price))
	}
	c.JSON(http.StatusOK, gin.H{"variants": views})
}

func (h *VariantHandler) Get(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	variantID, ok := parseID(c, "variant_id")
	if !ok {
		return
	}
	tenant := tenantID(c)

	product, err := h.Products.Get(tenant, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	variant, err := h.Service.Get(tenant, productID, variantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, variantView(*variant, product.Price))
}

func (h *VariantHandler) Create(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input catalog.VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	variant, err := h.Service.Create(tenantID(c), productID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"variant": variant})
}

func (h *VariantHandler) Update(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	variantID, ok := parseID(c, "variant_id")
	if !ok {
		return
	}

	var input catalog.VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	variant, err := h.Service.Update(tenantID(c), productID, variantID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variant": variant})
}

func (h *VariantHandler) Delete(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	variantID, ok := parseID(c, "variant_id")
	if !ok {
		return
	}

	if err := h.Service.Delete(tenantID(c), productID, variantID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Variant deleted"})
}
