package attributes

import (
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"storefront-backend/models"
)

// RuleKind enumerates the closed set of validation rule variants. Rules are
// always built programmatically from schema rows, never parsed from strings.
type RuleKind int

const (
	RuleRequired RuleKind = iota
	RuleInteger
	RuleNumeric
	RuleBoolean
	RuleEmail
	RuleURL
	RuleDate
	RuleEnumerated
	RuleMin
	RuleMax
	RuleMaxLength
	RulePattern
)

// Rule is one acceptance predicate. Only the fields relevant to its kind
// are set.
type Rule struct {
	Kind    RuleKind
	Bound   float64
	Length  int
	Allowed []string
	Pattern *regexp.Regexp
}

// Name returns the rule's wire name, used in field-keyed violation lists.
func (r Rule) Name() string {
	switch r.Kind {
	case RuleRequired:
		return "required"
	case RuleInteger:
		return "integer"
	case RuleNumeric:
		return "numeric"
	case RuleBoolean:
		return "boolean"
	case RuleEmail:
		return "email"
	case RuleURL:
		return "url"
	case RuleDate:
		return "date"
	case RuleEnumerated:
		return "in"
	case RuleMin:
		return "min"
	case RuleMax:
		return "max"
	case RuleMaxLength:
		return "max_length"
	case RulePattern:
		return "pattern"
	}
	return "unknown"
}

// RulesFor derives the rule fragment for one attribute from its current
// definition. For choice types the allowed set is read from the attribute's
// loaded options, so changing options changes subsequent validation without
// code changes.
func RulesFor(attr *models.CategoryAttribute) []Rule {
	var rules []Rule

	if attr.IsRequired {
		rules = append(rules, Rule{Kind: RuleRequired})
	}

	switch attr.Type {
	case TypeNumber:
		rules = append(rules, Rule{Kind: RuleInteger})
	case TypeDecimal:
		rules = append(rules, Rule{Kind: RuleNumeric})
	case TypeEmail:
		rules = append(rules, Rule{Kind: RuleEmail})
	case TypeURL:
		rules = append(rules, Rule{Kind: RuleURL})
	case TypeDate:
		rules = append(rules, Rule{Kind: RuleDate})
	case TypeBoolean:
		rules = append(rules, Rule{Kind: RuleBoolean})
	case TypeSelect, TypeMultiSelect:
		if allowed := attr.ActiveOptionValues(); len(allowed) > 0 {
			rules = append(rules, Rule{Kind: RuleEnumerated, Allowed: allowed})
		}
	default:
		if attr.Constraints != nil && attr.Constraints.MaxLength != nil {
			rules = append(rules, Rule{Kind: RuleMaxLength, Length: *attr.Constraints.MaxLength})
		}
	}

	if attr.Constraints != nil {
		if attr.Constraints.Min != nil {
			rules = append(rules, Rule{Kind: RuleMin, Bound: *attr.Constraints.Min})
		}
		if attr.Constraints.Max != nil {
			rules = append(rules, Rule{Kind: RuleMax, Bound: *attr.Constraints.Max})
		}
		if attr.Constraints.Pattern != "" {
			if re, err := regexp.Compile(attr.Constraints.Pattern); err == nil {
				rules = append(rules, Rule{Kind: RulePattern, Pattern: re})
			}
		}
	}

	return rules
}

// Evaluate walks the rule list against a submitted value and returns the
// names of every violated rule. present is false when the field was absent
// from the submission entirely. An absent or empty value only violates
// Required; every other rule treats it as nullable.
func Evaluate(rules []Rule, value interface{}, present bool) []string {
	if !present || isEmpty(value) {
		for _, r := range rules {
			if r.Kind == RuleRequired {
				return []string{r.Name()}
			}
		}
		return nil
	}

	var violated []string
	for _, r := range rules {
		if !satisfies(r, value) {
			violated = append(violated, r.Name())
		}
	}
	return violated
}

func satisfies(r Rule, value interface{}) bool {
	switch r.Kind {
	case RuleRequired:
		return true // presence already established
	case RuleInteger:
		return isInteger(value)
	case RuleNumeric:
		_, ok := asFloat(value)
		return ok
	case RuleBoolean:
		return isBoolean(value)
	case RuleEmail:
		s, ok := asString(value)
		if !ok {
			return false
		}
		addr, err := mail.ParseAddress(s)
		return err == nil && addr.Address == s
	case RuleURL:
		s, ok := asString(value)
		if !ok {
			return false
		}
		u, err := url.Parse(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	case RuleDate:
		s, ok := asString(value)
		if !ok {
			return false
		}
		return isDate(s)
	case RuleEnumerated:
		return isMember(r.Allowed, value)
	case RuleMin:
		if f, ok := asFloat(value); ok {
			return f >= r.Bound
		}
		s, ok := asString(value)
		return ok && float64(len(s)) >= r.Bound
	case RuleMax:
		if f, ok := asFloat(value); ok {
			return f <= r.Bound
		}
		s, ok := asString(value)
		return ok && float64(len(s)) <= r.Bound
	case RuleMaxLength:
		s, ok := asString(value)
		return ok && len(s) <= r.Length
	case RulePattern:
		s, ok := asString(value)
		return ok && r.Pattern.MatchString(s)
	}
	return true
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func asString(value interface{}) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func isInteger(value interface{}) bool {
	switch v := value.(type) {
	case int, int64:
		return true
	case float64:
		return v == float64(int64(v))
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return err == nil
	}
	return false
}

func isBoolean(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return true
	case float64:
		return v == 0 || v == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "1", "true", "false":
			return true
		}
	}
	return false
}

func isDate(s string) bool {
	for _, layout := range []string{storedDateFormat, time.RFC3339} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// isMember checks enumerated membership: every element of an array value
// (or the scalar itself) must be in the allowed set.
func isMember(allowed []string, value interface{}) bool {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}

	switch v := value.(type) {
	case string:
		return set[v]
	case []string:
		for _, item := range v {
			if !set[item] {
				return false
			}
		}
		return true
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok || !set[s] {
				return false
			}
		}
		return true
	case float64:
		return set[strconv.FormatFloat(v, 'f', -1, 64)]
	}
	return false
}
