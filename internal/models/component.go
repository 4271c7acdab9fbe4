package models

// ComponentType identifies one of the supported palette component kinds.
type ComponentType string

const (
	TypeText     ComponentType = "text"
	TypeTextArea ComponentType = "textarea"
	TypeImage    ComponentType = "image"
	TypeButton   ComponentType = "button"
)

// KnownTypes lists every component type the editor can place.
var KnownTypes = []ComponentType{TypeText, TypeTextArea, TypeImage, TypeButton}

// IsKnownType reports whether t is one of the supported component types.
func IsKnownType(t ComponentType) bool {
	for _, k := range KnownTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Position is a top-left canvas coordinate in pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions holds a component's size and optional per-component size limits.
type Dimensions struct {
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
	MinWidth  *float64 `json:"minWidth,omitempty"`
	MinHeight *float64 `json:"minHeight,omitempty"`
	MaxWidth  *float64 `json:"maxWidth,omitempty"`
	MaxHeight *float64 `json:"maxHeight,omitempty"`
}

// Constraints control which interactions are allowed on a component.
type Constraints struct {
	Movable   bool `json:"movable"`
	Resizable bool `json:"resizable"`
	Deletable bool `json:"deletable"`
	Copyable  bool `json:"copyable"`
}

// DefaultConstraints returns the all-true constraint set new components get.
func DefaultConstraints() Constraints {
	return Constraints{Movable: true, Resizable: true, Deletable: true, Copyable: true}
}

// Metadata tracks component lifecycle bookkeeping. Timestamps are epoch
// milliseconds; Version starts at 1 and increments on every mutation.
type Metadata struct {
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
	Version   int   `json:"version"`
}

// Component is a single placed element on the canvas.
type Component struct {
	ID          string         `json:"id"`
	Type        ComponentType  `json:"type"`
	Position    Position       `json:"position"`
	Dimensions  Dimensions     `json:"dimensions"`
	ZIndex      int            `json:"zIndex"`
	Props       map[string]any `json:"props"`
	Constraints Constraints    `json:"constraints"`
	Metadata    Metadata       `json:"metadata"`
}

// Touch bumps the component version and updated timestamp. now is epoch ms.
func (c *Component) Touch(now int64) {
	c.Metadata.UpdatedAt = now
	c.Metadata.Version++
}

// Clone returns a deep copy of the component. Props values are copied
// recursively so snapshots never alias live state.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	dup := *c
	dup.Dimensions = c.Dimensions.clone()
	dup.Props = CloneProps(c.Props)
	return &dup
}

func (d Dimensions) clone() Dimensions {
	out := d
	out.MinWidth = cloneFloat(d.MinWidth)
	out.MinHeight = cloneFloat(d.MinHeight)
	out.MaxWidth = cloneFloat(d.MaxWidth)
	out.MaxHeight = cloneFloat(d.MaxHeight)
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CloneProps deep-copies a property map, including nested maps and slices.
func CloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneProps(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
