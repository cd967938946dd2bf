package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")

	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	// Limit to 1 open connection to prevent SQLite concurrent access issues
	// with in-memory databases.
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)

	// Create tables using raw SQLite-compatible SQL instead of AutoMigrate,
	// because the GORM model tags use PostgreSQL-specific defaults like gen_random_uuid().
	if err := createSQLiteTables(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}

	code := m.Run()
	os.Exit(code)
}

// freshDB returns a clean database for each test by deleting all rows.
func freshDB() *gorm.DB {
	// Delete in correct order to respect foreign keys
	testDB.Exec("DELETE FROM product_variants")
	testDB.Exec("DELETE FROM product_attribute_values")
	testDB.Exec("DELETE FROM product_categories")
	testDB.Exec("DELETE FROM products")
	testDB.Exec("DELETE FROM attribute_options")
	testDB.Exec("DELETE FROM category_attributes")
	testDB.Exec("DELETE FROM categories")
	testDB.Exec("DELETE FROM users")
	testDB.Exec("DELETE FROM tenants")
	return testDB
}

// createSQLiteTables creates all tables with SQLite-compatible DDL. The
// partial unique indexes mirror the ones database.Migrate creates on
// PostgreSQL.
func createSQLiteTables(db *gorm.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS "tenants" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL,
			"slug" TEXT NOT NULL UNIQUE,
			"domain" TEXT,
			"plan" TEXT DEFAULT 'standard',
			"status" TEXT DEFAULT 'active',
			"max_users" INTEGER DEFAULT 10,
			"max_products" INTEGER DEFAULT 1000,
			"expires_at" DATETIME,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tenants_deleted_at ON "tenants"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY,
			"tenant_id" TEXT NOT NULL,
			"email" TEXT NOT NULL UNIQUE,
			"password" TEXT NOT NULL,
			"name" TEXT,
			"role" TEXT DEFAULT 'viewer',
			"is_blocked" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME,
			CONSTRAINT fk_users_tenant FOREIGN KEY ("tenant_id") REFERENCES "tenants"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_deleted_at ON "users"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_users_tenant_id ON "users"("tenant_id")`,

		`CREATE TABLE IF NOT EXISTS "categories" (
			"id" TEXT PRIMARY KEY,
			"tenant_id" TEXT NOT NULL,
			"name" TEXT NOT NULL,
			"slug" TEXT NOT NULL,
			"description" TEXT,
			"meta_title" TEXT,
			"meta_description" TEXT,
			"parent_id" TEXT,
			"is_active" INTEGER DEFAULT 1,
			"sort_order" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME,
			CONSTRAINT fk_categories_tenant FOREIGN KEY ("tenant_id") REFERENCES "tenants"("id"),
			CONSTRAINT fk_categories_parent FOREIGN KEY ("parent_id") REFERENCES "categories"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_deleted_at ON "categories"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_categories_tenant_id ON "categories"("tenant_id")`,
		`CREATE INDEX IF NOT EXISTS idx_categories_parent_id ON "categories"("parent_id")`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_categories_tenant_slug
			ON "categories"("tenant_id","slug") WHERE "deleted_at" IS NULL`,

		`CREATE TABLE IF NOT EXISTS "category_attributes" (
			"id" TEXT PRIMARY KEY,
			"category_id" TEXT NOT NULL,
			"name" TEXT NOT NULL,
			"slug" TEXT NOT NULL,
			"type" TEXT NOT NULL,
			"description" TEXT,
			"unit" TEXT,
			"default_value" TEXT,
			"constraints" TEXT,
			"is_required" INTEGER DEFAULT 0,
			"is_filterable" INTEGER DEFAULT 0,
			"is_searchable" INTEGER DEFAULT 0,
			"show_in_listing" INTEGER DEFAULT 0,
			"sort_order" INTEGER DEFAULT 0,
			"is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME,
			CONSTRAINT fk_category_attributes_category FOREIGN KEY ("category_id") REFERENCES "categories"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_category_attributes_deleted_at ON "category_attributes"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_category_attributes_category_id ON "category_attributes"("category_id")`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_category_attributes_category_slug
			ON "category_attributes"("category_id","slug") WHERE "deleted_at" IS NULL`,

		`CREATE TABLE IF NOT EXISTS "attribute_options" (
			"id" TEXT PRIMARY KEY,
			"attribute_id" TEXT NOT NULL,
			"label" TEXT NOT NULL,
			"value" TEXT NOT NULL,
			"color" TEXT,
			"sort_order" INTEGER DEFAULT 0,
			"is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			CONSTRAINT fk_attribute_options_attribute FOREIGN KEY ("attribute_id") REFERENCES "category_attributes"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attribute_options_attribute_id ON "attribute_options"("attribute_id")`,

		`CREATE TABLE IF NOT EXISTS "products" (
			"id" TEXT PRIMARY KEY,
			"tenant_id" TEXT NOT NULL,
			"category_id" TEXT NOT NULL,
			"name" TEXT NOT NULL,
			"slug" TEXT NOT NULL,
			"sku" TEXT NOT NULL,
			"model" TEXT,
			"description" TEXT,
			"meta_title" TEXT,
			"meta_description" TEXT,
			"type" TEXT DEFAULT 'physical',
			"visibility" TEXT DEFAULT 'public',
			"available_from" DATETIME,
			"available_until" DATETIME,
			"price" REAL NOT NULL,
			"compare_at_price" REAL,
			"cost_price" REAL,
			"stock_quantity" INTEGER DEFAULT 0,
			"track_inventory" INTEGER DEFAULT 1,
			"low_stock_threshold" INTEGER DEFAULT 0,
			"allow_backorder" INTEGER DEFAULT 0,
			"weight" REAL,
			"length" REAL,
			"width" REAL,
			"height" REAL,
			"download_url" TEXT,
			"download_limit" INTEGER,
			"download_expiry_days" INTEGER,
			"is_active" INTEGER DEFAULT 1,
			"is_featured" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME,
			CONSTRAINT fk_products_tenant FOREIGN KEY ("tenant_id") REFERENCES "tenants"("id"),
			CONSTRAINT fk_products_category FOREIGN KEY ("category_id") REFERENCES "categories"("id")
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_deleted_at ON "products"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_products_tenant_id ON "products"("tenant_id")`,
		`CREATE INDEX IF NOT EXISTS idx_products_category_id ON "products"("category_id")`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_products_tenant_sku
			ON "products"("tenant_id","sku") WHERE "deleted_at" IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_products_tenant_slug
			ON "products"("tenant_id","slug") WHERE "deleted_at" IS NULL`,

		`CREATE TABLE IF NOT EXISTS "product_categories" (
			"product_id" TEXT NOT NULL,
			"category_id" TEXT NOT NULL,
			"is_primary" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			PRIMARY KEY ("product_id","category_id"),
			CONSTRAINT fk_product_categories_product FOREIGN KEY ("product_id") REFERENCES "products"("id"),
			CONSTRAINT fk_product_categories_category FOREIGN KEY ("category_id") REFERENCES "categories"("id")
		)`,

		`CREATE TABLE IF NOT EXISTS "product_attribute_values" (
			"id" TEXT PRIMARY KEY,
			"product_id" TEXT NOT NULL,
			"attribute_id" TEXT NOT NULL,
			"value" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			CONSTRAINT fk_product_attribute_values_product FOREIGN KEY ("product_id") REFERENCES "products"("id"),
			CONSTRAINT fk_product_attribute_values_attribute FOREIGN KEY ("attribute_id") REFERENCES "category_attributes"("id")
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_product_attribute
			ON "product_attribute_values"("product_id","attribute_id")`,

		`CREATE TABLE IF NOT EXISTS "product_variants" (
			"id" TEXT PRIMARY KEY,
			"tenant_id" TEXT NOT NULL,
			"product_id" TEXT NOT NULL,
			"name" TEXT NOT NULL,
			"sku" TEXT,
			"price_modifier" REAL DEFAULT 0,
			"stock_quantity" INTEGER DEFAULT 0,
			"attributes" TEXT,
			"is_active" INTEGER DEFAULT 1,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME,
			CONSTRAINT fk_product_variants_product FOREIGN KEY ("product_id") REFERENCES "products"("id")
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_product_variants_tenant_sku
			ON "product_variants"("tenant_id","sku") WHERE "deleted_at" IS NULL AND "sku" IS NOT NULL`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedTenant creates a test tenant.
func seedTenant(db *gorm.DB, slug string) models.Tenant {
	tenant := models.Tenant{
		ID:     uuid.New(),
		Name:   "Tenant " + slug,
		Slug:   slug,
		Plan:   "standard",
		Status: "active",
	}
	db.Create(&tenant)
	return tenant
}

// seedTestUser creates a user with the given role and returns it along with a valid JWT token.
func seedTestUser(db *gorm.DB, tenant models.Tenant, email, role string) (models.User, string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := models.User{
		ID:       uuid.New(),
		TenantID: tenant.ID,
		Email:    email,
		Password: string(hashed),
		Name:     "Test User",
		Role:     role,
	}
	db.Create(&user)

	token, _ := utils.GenerateToken(user.ID, user.TenantID, user.Email, user.Role)
	return user, token
}

// seedCategory creates a test category. parentID may be nil for a root.
func seedCategory(db *gorm.DB, tenant models.Tenant, name, slug string, parentID *uuid.UUID) models.Category {
	cat := models.Category{
		ID:       uuid.New(),
		TenantID: tenant.ID,
		Name:     name,
		Slug:     slug,
		ParentID: parentID,
		IsActive: true,
	}
	db.Create(&cat)
	return cat
}

// seedAttribute creates an attribute with optional select options.
func seedAttribute(db *gorm.DB, categoryID uuid.UUID, name, slug, attrType string, required bool, optionValues ...string) models.CategoryAttribute {
	attr := models.CategoryAttribute{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Name:       name,
		Slug:       slug,
		Type:       attrType,
		IsRequired: required,
		IsActive:   true,
	}
	db.Create(&attr)
	for i, value := range optionValues {
		opt := models.AttributeOption{
			ID:          uuid.New(),
			AttributeID: attr.ID,
			Label:       value,
			Value:       value,
			SortOrder:   i,
			IsActive:    true,
		}
		db.Create(&opt)
	}
	return attr
}

// seedProduct creates a test product in the given category.
func seedProduct(db *gorm.DB, tenant models.Tenant, categoryID uuid.UUID, name, sku string, price float64) models.Product {
	prod := models.Product{
		ID:            uuid.New(),
		TenantID:      tenant.ID,
		CategoryID:    categoryID,
		Name:          name,
		Slug:          "slug-" + uuid.New().String()[:8],
		SKU:           sku,
		Price:         price,
		StockQuantity: 10,
		Type:          models.ProductTypePhysical,
		Visibility:    models.VisibilityPublic,
		IsActive:      true,
	}
	db.Create(&prod)
	db.Create(&models.ProductCategory{ProductID: prod.ID, CategoryID: categoryID, IsPrimary: true})
	return prod
}

// seedVariant creates a test variant of the given product.
func seedVariant(db *gorm.DB, tenant models.Tenant, productID uuid.UUID, name string, sku *string, modifier float64) models.ProductVariant {
	variant := models.ProductVariant{
		ID:            uuid.New(),
		TenantID:      tenant.ID,
		ProductID:     productID,
		Name:          name,
		SKU:           sku,
		PriceModifier: modifier,
		StockQuantity: 5,
		IsActive:      true,
	}
	db.Create(&variant)
	return variant
}

// ==================== Router Setup Helpers ====================

// setupAuthRouter sets up routes for auth handler tests.
func setupAuthRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	authHandler := NewAuthHandler(db)

	api := r.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/auth/profile", authHandler.GetProfile)

	return r
}

// setupCategoryRouter sets up routes for category handler tests.
func setupCategoryRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	categoryHandler := NewCategoryHandler(db)

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.GET("/categories", categoryHandler.List)
	admin.GET("/categories/:id", categoryHandler.Get)
	admin.GET("/categories/:id/descendants", categoryHandler.Descendants)
	admin.POST("/categories", middleware.RequireCapability("category_create"), categoryHandler.Create)
	admin.PUT("/categories/:id", middleware.RequireCapability("category_edit"), categoryHandler.Update)
	admin.DELETE("/categories/:id", middleware.RequireCapability("category_delete"), categoryHandler.Delete)
	admin.POST("/categories/:id/restore", middleware.RequireCapability("category_delete"), categoryHandler.Restore)
	admin.DELETE("/categories/:id/force", middleware.RequireCapability("category_force_delete"), categoryHandler.ForceDelete)

	return r
}

// setupAttributeRouter sets up routes for attribute handler tests.
func setupAttributeRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	attributeHandler := NewAttributeHandler(db)

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware())
	attrs := admin.Group("/categories/:id/attributes")
	attrs.GET("", attributeHandler.List)
	attrs.GET("/:attribute_id", attributeHandler.Get)
	attrs.POST("", middleware.RequireCapability("attribute_manage"), attributeHandler.Create)
	attrs.PUT("/:attribute_id", middleware.RequireCapability("attribute_manage"), attributeHandler.Update)
	attrs.DELETE("/:attribute_id", middleware.RequireCapability("attribute_manage"), attributeHandler.Delete)

	return r
}

// setupProductRouter sets up routes for product handler tests.
func setupProductRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	productHandler := NewProductHandler(db)

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.GET("/products", productHandler.List)
	admin.GET("/products/:id", productHandler.Get)
	admin.POST("/products", middleware.RequireCapability("product_create"), productHandler.Create)
	admin.PUT("/products/:id", middleware.RequireCapability("product_edit"), productHandler.Update)
	admin.DELETE("/products/:id", middleware.RequireCapability("product_delete"), productHandler.Delete)

	return r
}

// setupVariantRouter sets up routes for variant handler tests.
func setupVariantRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	variantHandler := NewVariantHandler(db)

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware())
	variants := admin.Group("/products/:id/variants")
	variants.GET("", variantHandler.List)
	variants.GET("/:variant_id", variantHandler.Get)
	variants.POST("", middleware.RequireCapability("product_edit"), variantHandler.Create)
	variants.PUT("/:variant_id", middleware.RequireCapability("product_edit"), variantHandler.Update)
	variants.DELETE("/:variant_id", middleware.RequireCapability("product_edit"), variantHandler.Delete)

	return r
}

// ==================== Request Helpers ====================

// jsonRequest creates an HTTP request with JSON body.
func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// authRequest creates an HTTP request with JSON body and Authorization header.
func authRequest(method, url string, body interface{}, token string) *http.Request {
	req := jsonRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// ==================== Response Helpers ====================

// parseResponse reads the response body into a map.
func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// fieldErrors extracts the validation "fields" map from a 422 response.
func fieldErrors(w *httptest.ResponseRecorder) map[string]interface{} {
	resp := parseResponse(w)
	fields, _ := resp["fields"].(map[string]interface{})
	return fields
}

// hasRule reports whether a field carries the given violated rule name.
func hasRule(fields map[string]interface{}, field, rule string) bool {
	raw, ok := fields[field].([]interface{})
	if !ok {
		return false
	}
	for _, r := range raw {
		if r == rule {
			return true
		}
	}
	return false
}
