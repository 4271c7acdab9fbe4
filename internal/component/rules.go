package component

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/pagecraft/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// HexColorPattern matches #RRGGBB colors.
const HexColorPattern = `^#[0-9A-Fa-f]{6}$`

var hexColorRe = regexp.MustCompile(HexColorPattern)

// FieldRule describes the validation constraints for one property field.
type FieldRule struct {
	Required bool     `yaml:"required"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	Pattern  string   `yaml:"pattern"`
	Enum     []string `yaml:"enum"`

	compiled *regexp.Regexp
}

// RuleSet maps component type -> field name -> rule.
type RuleSet struct {
	Types map[models.ComponentType]map[string]*FieldRule `yaml:"types"`
}

func f(v float64) *float64 { return &v }

// DefaultRules returns the built-in per-type validation rules.
func DefaultRules() *RuleSet {
	rs := &RuleSet{Types: map[models.ComponentType]map[string]*FieldRule{
		models.TypeText: {
			"content":    {Required: true},
			"fontSize":   {Min: f(8), Max: f(72)},
			"fontWeight": {Enum: []string{"400", "700"}},
			"color":      {Pattern: HexColorPattern},
		},
		models.TypeTextArea: {
			"fontSize":   {Min: f(8), Max: f(72)},
			"lineHeight": {Min: f(1), Max: f(3)},
			"color":      {Pattern: HexColorPattern},
		},
		models.TypeImage: {
			"src":          {Required: true},
			"objectFit":    {Enum: []string{"cover", "contain", "fill"}},
			"borderRadius": {Min: f(0), Max: f(50)},
		},
		models.TypeButton: {
			"label":           {Required: true},
			"fontSize":        {Min: f(8), Max: f(72)},
			"padding":         {Min: f(0), Max: f(64)},
			"backgroundColor": {Pattern: HexColorPattern},
			"textColor":       {Pattern: HexColorPattern},
			"borderRadius":    {Min: f(0), Max: f(50)},
		},
	}}
	if err := rs.compile(); err != nil {
		// Built-in patterns are constants; a failure here is a programming error.
		panic(err)
	}
	return rs
}

// compile pre-compiles every pattern in the set.
func (rs *RuleSet) compile() error {
	for t, fields := range rs.Types {
		for name, rule := range fields {
			if rule.Pattern == "" {
				continue
			}
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return fmt.Errorf("rule %s.%s: invalid pattern %q: %w", t, name, rule.Pattern, err)
			}
			rule.compiled = re
		}
	}
	return nil
}

// FieldRules returns the rules for one component type, or nil.
func (rs *RuleSet) FieldRules(t models.ComponentType) map[string]*FieldRule {
	if rs == nil {
		return nil
	}
	return rs.Types[t]
}

// ParseRules parses a YAML rule override file.
func ParseRules(filePath string) (*RuleSet, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseRulesFromReader(file)
}

// ParseRulesFromReader parses a rule set from an io.Reader. Types or fields
// absent from the file keep no rules; callers usually merge onto
// DefaultRules with Merge.
func ParseRulesFromReader(r io.Reader) (*RuleSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, err
	}
	if rs.Types == nil {
		rs.Types = make(map[models.ComponentType]map[string]*FieldRule)
	}
	if err := rs.compile(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Merge overlays other onto rs, field by field, and returns rs.
func (rs *RuleSet) Merge(other *RuleSet) *RuleSet {
	if other == nil {
		return rs
	}
	for t, fields := range other.Types {
		if rs.Types[t] == nil {
			rs.Types[t] = make(map[string]*FieldRule)
		}
		for name, rule := range fields {
			rs.Types[t][name] = rule
		}
	}
	return rs
}
