package handlers

import (
	"net/http"

	"storefront-backend/catalog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AttributeHandler struct {
	Service *catalog.AttributeService
}

func NewAttributeHandler(db *gorm.DB) *AttributeHandler {
	return &AttributeHandler{Service: catalog.NewAttributeService(db)}
}

func (h *AttributeHandler) List(c *gin.Context) {
	categoryID, ok := parseID(c, "id")
	if !ok {
		return
	}

	attrs, err := h.Service.List(tenantID(c), categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attributes": attrs})
}

func (h *AttributeHandler) Get(c *gin.Context) {
	categoryID, ok := parseID(c, "id")
	if !ok {
		return
	}
	attributeID, ok := parseID(c, "attribute_id")
	if !ok {
		return
	}

	attr, err := h.Service.Get(tenantID(c), categoryID, attributeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attribute": attr})
}

func (h *AttributeHandler) Create(c *gin.Context) {
	categoryID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input catalog.AttributeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	attr, err := h.Service.Create(tenantID(c), categoryID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attribute": attr})
}

func (h *AttributeHandler) Update(c *gin.Context) {
	categoryID, ok := parseID(c, "id")
	if !ok {
		return
	}
	attributeID, ok := parseID(c, "attribute_id")
	if !ok {
		return
	}

	var input catalog.AttributeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	attr, err := h.Service.Update(tenantID(c), categoryID, attributeID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attribute": attr})
}

func (h *AttributeHandler) Delete(c *gin.Context) {
	categoryID, ok := parseID(c, "id")
	if !ok {
		return
	}
	attributeID, ok := parseID(c, "attribute_id")
	if !ok {
		return
	}

	if err := h.Service.Delete(tenantID(c), categoryID, attributeID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attribute deleted"})
}
