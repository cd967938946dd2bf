package routes

import (
	"net/http"
	"time"

	"storefront-backend/handlers"
	"storefront-backend/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB) {
	authHandler := handlers.NewAuthHandler(db)
	categoryHandler := handlers.NewCategoryHandler(db)
	attributeHandler := handlers.NewAttributeHandler(db)
	productHandler := handlers.NewProductHandler(db)
	variantHandler := handlers.NewVariantHandler(db)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimiter.Middleware(), authHandler.Login)
			auth.GET("/profile", middleware.AuthMiddleware(), authHandler.GetProfile)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware())
		{
			categories := admin.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.GET("/:id", categoryHandler.Get)
				categories.GET("/:id/descendants", categoryHandler.Descendants)
				categories.POST("", middleware.RequireCapability("category_create"), categoryHandler.Create)
				categories.PUT("/:id", middleware.RequireCapability("category_edit"), categoryHandler.Update)
				categories.DELETE("/:id", middleware.RequireCapability("category_delete"), categoryHandler.Delete)
				categories.POST("/:id/restore", middleware.RequireCapability("category_delete"), categoryHandler.Restore)
				categories.DELETE("/:id/force", middleware.RequireCapability("category_force_delete"), categoryHandler.ForceDelete)

				attrs := categories.Group("/:id/attributes")
				{
					attrs.GET("", attributeHandler.List)
					attrs.GET("/:attribute_id", attributeHandler.Get)
					attrs.POST("", middleware.RequireCapability("attribute_manage"), attributeHandler.Create)
					attrs.PUT("/:attribute_id", middleware.RequireCapability("attribute_manage"), attributeHandler.Update)
					attrs.DELETE("/:attribute_id", middleware.RequireCapability("attribute_manage"), attributeHandler.Delete)
				}
			}

			products := admin.Group("/products")
			{
				products.GET("", productHandler.List)
				products.GET("/:id", productHandler.Get)
				products.POST("", middleware.RequireCapability("product_create"), productHandler.Create)
				products.PUT("/:id", middleware.RequireCapability("product_edit"), productHandler.Update)
				products.DELETE("/:id", middleware.RequireCapability("product_delete"), productHandler.Delete)

				variants := products.Group("/:id/variants")
				{
					variants.GET("", variantHandler.List)
					variants.GET("/:variant_id", variantHandler.Get)
					variants.POST("", middleware.RequireCapability("product_edit"), variantHandler.Create)
					variants.PUT("/:variant_id", middleware.RequireCapability("product_edit"), variantHandler.Update)
					variants.DELETE("/:variant_id", middleware.RequireCapability("product_edit"), variantHandler.Delete)
				}
			}
		}
	}
}
