// Package attributes implements the dynamic attribute schema engine: the
// closed registry of value types, the typed validation rules compiled from a
// category's live schema, and the sparse per-product value store.
package attributes

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// The closed set of attribute value types.
const (
	TypeText        = "text"
	TypeTextarea    = "textarea"
	TypeNumber      = "number"
	TypeDecimal     = "decimal"
	TypeBoolean     = "boolean"
	TypeSelect      = "select"
	TypeMultiSelect = "multiselect"
	TypeDate        = "date"
	TypeURL         = "url"
	TypeEmail       = "email"
)

// Types returns the registry's type tags in declaration order.
func Types() []string {
	return []string{
		TypeText, TypeTextarea, TypeNumber, TypeDecimal, TypeBoolean,
		TypeSelect, TypeMultiSelect, TypeDate, TypeURL, TypeEmail,
	}
}

// IsValidType reports whether t is one of the supported type tags.
func IsValidType(t string) bool {
	switch t {
	case TypeText, TypeTextarea, TypeNumber, TypeDecimal, TypeBoolean,
		TypeSelect, TypeMultiSelect, TypeDate, TypeURL, TypeEmail:
		return true
	}
	return false
}

// HasOptions reports whether the type draws its valid values from an option
// set.
func HasOptions(t string) bool {
	return t == TypeSelect || t == TypeMultiSelect
}

// storedDateFormat is how date values are persisted; displayDateFormat is
// how they render.
const (
	storedDateFormat  = "2006-01-02"
	displayDateFormat = "02/01/2006"
)

// Kind tags the variants of a coerced attribute value.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDecimal
	KindBool
	KindDate
	KindMultiSelect
)

// Value is the tagged union produced by coercing a raw stored string through
// the owning attribute's declared type. Untyped strings never leave the
// value store without passing through here.
type Value struct {
	Kind    Kind
	Text    string
	Number  int64
	Decimal float64
	Bool    bool
	Date    time.Time
	Multi   []string
}

// MarshalJSON renders the natural JSON for the variant, so API responses
// carry typed values rather than raw strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Number)
	case KindDecimal:
		return json.Marshal(v.Decimal)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindDate:
		return json.Marshal(v.Date.Format(storedDateFormat))
	case KindMultiSelect:
		if v.Multi == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.Multi)
	default:
		return json.Marshal(v.Text)
	}
}

// Truthy parses the boolean tokens accepted for boolean attributes. Any
// other string is false.
func Truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Coerce interprets a raw stored string according to the attribute type.
// Coercion is best-effort: validation has already run by the time values are
// stored, so unparseable leftovers degrade to zero values (or the raw text
// for dates) instead of failing reads. Malformed multiselect JSON yields an
// empty slice, never an error.
func Coerce(attrType, raw string) Value {
	switch attrType {
	case TypeNumber:
		n, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		return Value{Kind: KindNumber, Number: n}
	case TypeDecimal:
		f, _ := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		return Value{Kind: KindDecimal, Decimal: f}
	case TypeBoolean:
		return Value{Kind: KindBool, Bool: Truthy(raw)}
	case TypeDate:
		if d, err := time.Parse(storedDateFormat, raw); err == nil {
			return Value{Kind: KindDate, Date: d}
		}
		if d, err := time.Parse(time.RFC3339, raw); err == nil {
			return Value{Kind: KindDate, Date: d}
		}
		return Value{Kind: KindText, Text: raw}
	case TypeMultiSelect:
		var items []string
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &items); err != nil {
				items = nil
			}
		}
		if items == nil {
			items = []string{}
		}
		return Value{Kind: KindMultiSelect, Multi: items}
	default:
		return Value{Kind: KindText, Text: raw}
	}
}

var numberPrinter = message.NewPrinter(language.English)

// Format renders a coerced value for display. unit is the attribute's unit
// suffix ("" when unset). A nil value formats to the empty string.
func Format(v *Value, unit string) string {
	if v == nil {
		return ""
	}

	suffix := ""
	if unit != "" {
		suffix = " " + unit
	}

	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "Yes"
		}
		return "No"
	case KindNumber:
		return numberPrinter.Sprintf("%d", v.Number) + suffix
	case KindDecimal:
		return numberPrinter.Sprintf("%.2f", v.Decimal) + suffix
	case KindMultiSelect:
		return strings.Join(v.Multi, ", ")
	case KindDate:
		return v.Date.Format(displayDateFormat)
	default:
		if v.Text == "" {
			return ""
		}
		return v.Text + suffix
	}
}
