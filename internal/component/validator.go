package component

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pagecraft/backend/internal/models"
)

// Issue is a single validation finding on one field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult reports the outcome of validating one component.
// Validation is advisory: mutators apply updates regardless and surface the
// result separately.
type ValidationResult struct {
	IsValid  bool    `json:"isValid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

func (r *ValidationResult) addError(field, msg string) {
	r.Errors = append(r.Errors, Issue{Field: field, Message: msg})
	r.IsValid = false
}

func (r *ValidationResult) addWarning(field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Field: field, Message: msg})
}

// Validate checks a component's properties against the per-type rules plus
// cross-field checks. It never mutates the component.
func (f *Factory) Validate(c *models.Component) ValidationResult {
	res := ValidationResult{IsValid: true, Errors: []Issue{}, Warnings: []Issue{}}
	if c == nil {
		res.addError("component", "component is nil")
		return res
	}
	if !models.IsKnownType(c.Type) {
		res.addError("type", fmt.Sprintf("unknown component type %q", c.Type))
		return res
	}

	rules := f.rules.FieldRules(c.Type)
	for field, rule := range rules {
		value, present := c.Props[field]
		if !present || value == nil || value == "" {
			if rule.Required {
				res.addError(field, "required property is missing or empty")
			}
			continue
		}
		checkRule(&res, field, rule, value)
	}

	checkCrossField(&res, c)
	return res
}

func checkRule(res *ValidationResult, field string, rule *FieldRule, value any) {
	if rule.Min != nil || rule.Max != nil {
		num, ok := asNumber(value)
		if !ok {
			res.addError(field, "expected a numeric value")
			return
		}
		if rule.Min != nil && num < *rule.Min {
			res.addError(field, fmt.Sprintf("value %v below minimum %v", num, *rule.Min))
		}
		if rule.Max != nil && num > *rule.Max {
			res.addError(field, fmt.Sprintf("value %v above maximum %v", num, *rule.Max))
		}
	}

	if rule.compiled != nil {
		str, ok := value.(string)
		if !ok || !rule.compiled.MatchString(str) {
			res.addError(field, fmt.Sprintf("value %v does not match pattern %s", value, rule.Pattern))
		}
	}

	if len(rule.Enum) > 0 {
		str := stringify(value)
		found := false
		for _, allowed := range rule.Enum {
			if str == allowed {
				found = true
				break
			}
		}
		if !found {
			res.addError(field, fmt.Sprintf("value %v not one of %v", value, rule.Enum))
		}
	}
}

// checkCrossField applies checks spanning multiple properties.
func checkCrossField(res *ValidationResult, c *models.Component) {
	if c.Type == models.TypeButton {
		bg, _ := c.Props["backgroundColor"].(string)
		fg, _ := c.Props["textColor"].(string)
		if bg != "" && bg == fg {
			res.addWarning("backgroundColor", "background color equals text color; button text will be unreadable")
		}
	}
	if c.Type == models.TypeImage {
		if src, _ := c.Props["src"].(string); src == "" {
			res.addWarning("src", "image has no source and will render as a placeholder")
		}
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
