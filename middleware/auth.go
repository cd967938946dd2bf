package middleware

import (
	"net/http"
	"strings"

	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and stores the caller's
// identity, role and tenant on the request context. Every downstream
// handler reads the tenant id from here and threads it explicitly into
// service calls.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Set("tenant_id", claims.TenantID)
		c.Next()
	}
}

// roleCapabilities maps each role to the admin actions it may perform.
var roleCapabilities = map[string]map[string]bool{
	"admin": {
		"category_create": true, "category_edit": true, "category_delete": true,
		"category_force_delete": true, "attribute_manage": true,
		"product_create": true, "product_edit": true, "product_delete": true,
	},
	"manager": {
		"category_create": true, "category_edit": true, "category_delete": true,
		"attribute_manage": true,
		"product_create": true, "product_edit": true, "product_delete": true,
	},
	"viewer": {},
}

// Can is the capability check gating every mutation.
func Can(role, action string) bool {
	caps, ok := roleCapabilities[role]
	return ok && caps[action]
}

// RequireCapability rejects the request before any mutation when the
// caller's role lacks the named capability.
func RequireCapability(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || !Can(role.(string), action) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions for " + action})
			c.Abort()
			return
		}
		c.Next()
	}
}
