// Package component creates, clones and validates canvas components.
package component

import (
	"github.com/pagecraft/backend/internal/models"
)

// Default size limits applied when a component carries none of its own.
const (
	DefaultMinWidth  = 50.0
	DefaultMinHeight = 30.0
	DefaultMaxWidth  = 2000.0
	DefaultMaxHeight = 2000.0
)

// CloneOffset is the position delta applied when duplicating a component so
// the copy does not exactly overlap the original.
const CloneOffset = 20.0

// defaultDimensions returns the initial size for each component type.
func defaultDimensions(t models.ComponentType) models.Dimensions {
	switch t {
	case models.TypeText:
		return models.Dimensions{Width: 200, Height: 40}
	case models.TypeTextArea:
		return models.Dimensions{Width: 300, Height: 120}
	case models.TypeImage:
		return models.Dimensions{Width: 200, Height: 150}
	case models.TypeButton:
		return models.Dimensions{Width: 140, Height: 48}
	default:
		return models.Dimensions{Width: 100, Height: 100}
	}
}

// defaultProps returns the initial property map for each component type.
// Defaults always validate cleanly.
func defaultProps(t models.ComponentType) map[string]any {
	switch t {
	case models.TypeText:
		return map[string]any{
			"content":    "Text",
			"fontSize":   float64(16),
			"fontWeight": float64(400),
			"color":      "#000000",
		}
	case models.TypeTextArea:
		return map[string]any{
			"content":    "",
			"fontSize":   float64(14),
			"lineHeight": float64(1.5),
			"color":      "#000000",
		}
	case models.TypeImage:
		return map[string]any{
			"src":          "",
			"alt":          "",
			"objectFit":    "cover",
			"borderRadius": float64(0),
		}
	case models.TypeButton:
		return map[string]any{
			"label":           "Button",
			"url":             "",
			"fontSize":        float64(14),
			"padding":         float64(12),
			"backgroundColor": "#2563EB",
			"textColor":       "#FFFFFF",
			"borderRadius":    float64(6),
		}
	default:
		return map[string]any{}
	}
}
