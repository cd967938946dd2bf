package attributes

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront-backend/logger"
	"storefront-backend/metrics"
	"storefront-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValueStore reads and writes the sparse (product, attribute) value rows.
// It holds no type knowledge beyond string storage; all interpretation goes
// through Coerce/Format. Construct it over a transaction handle to make a
// batch of writes atomic.
type ValueStore struct {
	DB *gorm.DB
}

func NewValueStore(db *gorm.DB) *ValueStore {
	return &ValueStore{DB: db}
}

// resolveAttribute finds an active attribute of the product's category by
// slug. A nil result with nil error means the slug is not part of the
// schema.
func (s *ValueStore) resolveAttribute(product *models.Product, slug string) (*models.CategoryAttribute, error) {
	var attr models.CategoryAttribute
	err := s.DB.
		Where("category_id = ? AND slug = ? AND is_active = ?", product.CategoryID, slug, true).
		First(&attr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attr, nil
}

// SetValue converts and upserts one value row. A slug that does not resolve
// against the product's category schema is a no-op; it is logged so
// operators can tell schema drift from a successful write.
func (s *ValueStore) SetValue(product *models.Product, slug string, value interface{}) error {
	attr, err := s.resolveAttribute(product, slug)
	if err != nil {
		return err
	}
	if attr == nil {
		metrics.SchemaMissWrites.Inc()
		logger.Get().Warn("attribute value ignored: slug not in category schema",
			zap.String("product_id", product.ID.String()),
			zap.String("category_id", product.CategoryID.String()),
			zap.String("slug", slug))
		return nil
	}

	raw, err := encodeValue(attr.Type, value)
	if err != nil {
		return err
	}

	row := models.ProductAttributeValue{
		ID:          uuid.New(),
		ProductID:   product.ID,
		AttributeID: attr.ID,
		Value:       raw,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "attribute_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// SetValues applies a slug -> value map in deterministic order.
func (s *ValueStore) SetValues(product *models.Product, values map[string]interface{}) error {
	slugs := make([]string, 0, len(values))
	for slug := range values {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		if err := s.SetValue(product, slug, values[slug]); err != nil {
			return err
		}
	}
	return nil
}

// GetValue returns the coerced value for a slug, or nil when no row exists
// or the slug does not resolve.
func (s *ValueStore) GetValue(product *models.Product, slug string) (*Value, error) {
	attr, err := s.resolveAttribute(product, slug)
	if err != nil || attr == nil {
		return nil, err
	}

	var row models.ProductAttributeValue
	err = s.DB.Where("product_id = ? AND attribute_id = ?", product.ID, attr.ID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	v := Coerce(attr.Type, row.Value)
	return &v, nil
}

// AttributeProjection is the read-side view of one attribute for a product:
// the definition plus the product's current typed and formatted value.
type AttributeProjection struct {
	Attribute models.CategoryAttribute `json:"attribute"`
	Value     *Value                   `json:"value"`
	Formatted string                   `json:"formatted_value"`
}

// ValuesForCategory projects every active attribute of the product's
// category, annotated with the product's current value (nil/empty when
// unset). Used for display and attribute-driven filtering.
func (s *ValueStore) ValuesForCategory(product *models.Product) ([]AttributeProjection, error) {
	var attrs []models.CategoryAttribute
	err := s.DB.
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order")
		}).
		Where("category_id = ? AND is_active = ?", product.CategoryID, true).
		Order("sort_order, name").
		Find(&attrs).Error
	if err != nil {
		return nil, err
	}

	var rows []models.ProductAttributeValue
	if err := s.DB.Where("product_id = ?", product.ID).Find(&rows).Error; err != nil {
		return nil, err
	}
	byAttribute := make(map[uuid.UUID]string, len(rows))
	for _, row := range rows {
		byAttribute[row.AttributeID] = row.Value
	}

	projections := make([]AttributeProjection, 0, len(attrs))
	for _, attr := range attrs {
		proj := AttributeProjection{Attribute: attr}
		if raw, ok := byAttribute[attr.ID]; ok {
			v := Coerce(attr.Type, raw)
			proj.Value = &v
			proj.Formatted = Format(&v, attr.Unit)
		}
		projections = append(projections, proj)
	}
	return projections, nil
}

// encodeValue converts a submitted value to its storage string per the
// attribute type: multiselect arrays JSON-encoded, booleans "1"/"0", dates
// as calendar-date strings, everything else stringified.
func encodeValue(attrType string, value interface{}) (string, error) {
	switch attrType {
	case TypeMultiSelect:
		switch v := value.(type) {
		case string:
			if v == "" {
				return "[]", nil
			}
			// A scalar choice wraps into a one-element array; only a valid
			// JSON string array is stored verbatim.
			var items []string
			if json.Unmarshal([]byte(v), &items) == nil {
				return v, nil
			}
			raw, err := json.Marshal([]string{v})
			if err != nil {
				return "", fmt.Errorf("encode multiselect value: %w", err)
			}
			return string(raw), nil
		case nil:
			return "[]", nil
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("encode multiselect value: %w", err)
			}
			return string(raw), nil
		}
	case TypeBoolean:
		switch v := value.(type) {
		case bool:
			if v {
				return "1", nil
			}
			return "0", nil
		case string:
			if Truthy(v) {
				return "1", nil
			}
			return "0", nil
		default:
			return "0", nil
		}
	case TypeDate:
		switch v := value.(type) {
		case time.Time:
			return v.Format(storedDateFormat), nil
		case string:
			// Normalize timestamp strings to the calendar-date storage form
			if d, err := time.Parse(time.RFC3339, v); err == nil {
				return d.Format(storedDateFormat), nil
			}
			return v, nil
		default:
			return fmt.Sprint(value), nil
		}
	default:
		switch v := value.(type) {
		case string:
			return v, nil
		case float64:
			// JSON numbers arrive as float64; keep integers unpadded
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v)), nil
			}
			return fmt.Sprint(v), nil
		default:
			return fmt.Sprint(value), nil
		}
	}
}
