// handlers_component.go - Component CRUD and canvas interaction handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pagecraft/backend/internal/component"
	"github.com/pagecraft/backend/internal/models"
)

// HandleCreateComponent creates a component on the session's canvas.
func (h *Handler) HandleCreateComponent(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	var req struct {
		Type       models.ComponentType `json:"type"`
		Position   models.Position      `json:"position"`
		Props      map[string]any       `json:"props,omitempty"`
		Dimensions *models.Dimensions   `json:"dimensions,omitempty"`
		ZIndex     *int                 `json:"zIndex,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid component payload", err)
	}
	if req.Type == "" {
		return NewValidationError("type")
	}

	opts := &component.CreateOptions{
		Props:      req.Props,
		Dimensions: req.Dimensions,
		ZIndex:     req.ZIndex,
	}
	created := s.Doc.CreateComponent(req.Type, req.Position, opts, true)
	return c.JSON(http.StatusCreated, created)
}

// HandleUpdateComponent merges a partial property update. The response
// carries the advisory validation result; the update is applied regardless.
func (h *Handler) HandleUpdateComponent(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	var req struct {
		Props map[string]any `json:"props"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid update payload", err)
	}

	id := c.Param("componentId")
	result := s.Doc.UpdateComponent(id, req.Props, true)
	if result == nil {
		return NewNotFoundError("component", id)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":         id,
		"validation": result,
	})
}

// HandleDeleteComponent removes a component from the canvas.
func (h *Handler) HandleDeleteComponent(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}
	s.Doc.RemoveComponent(c.Param("componentId"), true)
	return c.NoContent(http.StatusNoContent)
}

// HandleMoveComponent moves a component; the position is clamped to the
// canvas boundaries.
func (h *Handler) HandleMoveComponent(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	var req struct {
		Position models.Position `json:"position"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid move payload", err)
	}
	s.Doc.MoveComponent(c.Param("componentId"), req.Position, true)
	return c.JSON(http.StatusOK, s.Doc.State())
}

// HandleResizeComponent resizes a component within its size limits.
func (h *Handler) HandleResizeComponent(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	var req struct {
		Dimensions models.Dimensions `json:"dimensions"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid resize payload", err)
	}
	s.Doc.ResizeComponent(c.Param("componentId"), req.Dimensions, true)
	return c.JSON(http.StatusOK, s.Doc.State())
}

// HandleReorderComponent sets a component's zIndex.
func (h *Handler) HandleReorderComponent(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	var req struct {
		ZIndex int `json:"zIndex"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid reorder payload", err)
	}
	s.Doc.ReorderComponent(c.Param("componentId"), req.ZIndex, true)
	return c.JSON(http.StatusOK, s.Doc.State())
}

// HandleDuplicateComponent clones a component with a position offset.
func (h *Handler) HandleDuplicateComponent(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	id := c.Param("componentId")
	dup := s.Doc.DuplicateComponent(id, true)
	if dup == nil {
		return NewNotFoundError("component", id)
	}
	return c.JSON(http.StatusCreated, dup)
}

// HandleValidateComponent runs advisory validation without changing state.
func (h *Handler) HandleValidateComponent(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	id := c.Param("componentId")
	state := s.Doc.State()
	comp, ok := state.Components.Get(id)
	if !ok {
		return NewNotFoundError("component", id)
	}
	result := s.Doc.Factory().Validate(comp)
	return c.JSON(http.StatusOK, result)
}

// HandleSelectComponent selects a component, optionally adding to the
// current selection.
func (h *Handler) HandleSelectComponent(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	var req struct {
		MultiSelect bool `json:"multiSelect"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid select payload", err)
	}
	s.Doc.SelectComponent(c.Param("componentId"), req.MultiSelect)
	return c.JSON(http.StatusOK, s.Doc.State())
}

// HandleDeselectComponent removes a component from the selection.
func (h *Handler) HandleDeselectComponent(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}
	s.Doc.DeselectComponent(c.Param("componentId"))
	return c.JSON(http.StatusOK, s.Doc.State())
}

// HandleClearSelection empties the selection.
func (h *Handler) HandleClearSelection(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}
	s.Doc.ClearSelection()
	return c.JSON(http.StatusOK, s.Doc.State())
}

// HandleSetZoom sets the canvas zoom, clamped to the allowed range.
func (h *Handler) HandleSetZoom(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	var req struct {
		Zoom float64 `json:"zoom"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid zoom payload", err)
	}
	s.Doc.SetZoom(req.Zoom)
	return c.JSON(http.StatusOK, map[string]float64{"zoom": s.Doc.State().Zoom})
}

// HandleSetViewport replaces the viewport.
func (h *Handler) HandleSetViewport(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	var req models.Viewport
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid viewport payload", err)
	}
	s.Doc.SetViewport(req)
	return c.NoContent(http.StatusNoContent)
}

// HandleSetGrid replaces the grid settings.
func (h *Handler) HandleSetGrid(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	var req models.Grid
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid grid payload", err)
	}
	s.Doc.SetGrid(req)
	return c.NoContent(http.StatusNoContent)
}
