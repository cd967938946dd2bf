package database

import (
	"fmt"
	"log"
	"os"

	"storefront-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=storefront port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Category{},
		&models.CategoryAttribute{},
		&models.AttributeOption{},
		&models.Product{},
		&models.ProductCategory{},
		&models.ProductAttributeValue{},
		&models.ProductVariant{},
	); err != nil {
		return err
	}

	return createPartialUniqueIndexes(db)
}

// createPartialUniqueIndexes enforces the slug/sku uniqueness invariants at
// the storage layer, scoped to non-deleted rows so a soft-deleted entity
// frees its slug. Application-level pre-checks only exist for friendly
// error messages; these indexes are what holds under concurrent creates.
func createPartialUniqueIndexes(db *gorm.DB) error {
	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_categories_tenant_slug
			ON categories (tenant_id, slug) WHERE deleted_at IS NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_category_attributes_category_slug
			ON category_attributes (category_id, slug) WHERE deleted_at IS NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_products_tenant_sku
			ON products (tenant_id, sku) WHERE deleted_at IS NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_products_tenant_slug
			ON products (tenant_id, slug) WHERE deleted_at IS NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_product_variants_tenant_sku
			ON product_variants (tenant_id, sku) WHERE deleted_at IS NULL AND sku IS NOT NULL;`,
	}

	for _, ddl := range indexes {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("failed to create unique index: %w", err)
		}
	}
	return nil
}

// CreateDefaultTenant ensures a tenant exists for first-boot logins.
func CreateDefaultTenant(db *gorm.DB) (*models.Tenant, error) {
	slug := os.Getenv("DEFAULT_TENANT_SLUG")
	if slug == "" {
		slug = "default"
	}

	var tenant models.Tenant
	if err := db.Where("slug = ?", slug).First(&tenant).Error; err == nil {
		return &tenant, nil
	}

	tenant = models.Tenant{
		Name:   "Default Store",
		Slug:   slug,
		Plan:   "standard",
		Status: "active",
	}
	if err := db.Create(&tenant).Error; err != nil {
		return nil, err
	}

	log.Printf("Default tenant created: %s", slug)
	return &tenant, nil
}

// CreateDefaultAdmin ensures an admin user exists in the given tenant.
func CreateDefaultAdmin(db *gorm.DB, tenant *models.Tenant) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@storefront.local"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existing models.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		// Admin already exists
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		TenantID: tenant.ID,
		Email:    adminEmail,
		Password: string(hashed),
		Role:     "admin",
		Name:     "Admin User",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}
