package models

// CanvasSize is the fixed pixel size of the editing surface.
type CanvasSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Viewport is the visible window over the canvas.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Grid holds the snapping grid settings.
type Grid struct {
	Enabled    bool    `json:"enabled"`
	Size       float64 `json:"size"`
	SnapToGrid bool    `json:"snapToGrid"`
	Visible    bool    `json:"visible"`
}

// Boundaries is the rectangle components must stay fully inside. Move and
// resize operations clamp against it.
type Boundaries struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Zoom limits for the canvas.
const (
	MinZoom = 0.1
	MaxZoom = 5.0
)

// ClampZoom clamps z into [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// Snapshot is an immutable point-in-time copy of canvas state. The
// component store and selection are value copies, never aliases of live
// state; History depends on that.
type Snapshot struct {
	ID          string          `json:"id"`
	Timestamp   int64           `json:"timestamp"`
	Components  *ComponentStore `json:"components"`
	SelectedIDs []string        `json:"selectedComponentIds"`
	Dimensions  CanvasSize      `json:"dimensions"`
	Viewport    Viewport        `json:"viewport"`
	Zoom        float64         `json:"zoom"`
	Description string          `json:"description,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	dup := *s
	dup.Components = s.Components.Clone()
	dup.SelectedIDs = append([]string(nil), s.SelectedIDs...)
	return &dup
}
