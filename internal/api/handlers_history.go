// handlers_history.go - Undo/redo handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HandleUndo steps history back one snapshot. Undoing with empty history is
// a no-op, not an error.
func (h *Handler) HandleUndo(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}
	applied := s.Doc.Undo()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"applied": applied,
		"history": s.Doc.History().Info(),
		"canvas":  s.Doc.State(),
	})
}

// HandleRedo steps history forward one snapshot.
func (h *Handler) HandleRedo(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}
	applied := s.Doc.Redo()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"applied": applied,
		"history": s.Doc.History().Info(),
		"canvas":  s.Doc.State(),
	})
}

// HandleHistoryInfo returns the history counters without touching state.
func (h *Handler) HandleHistoryInfo(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Doc.History().Info())
}

// HandleClearHistory drops past and future, keeping the present snapshot.
func (h *Handler) HandleClearHistory(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}
	s.Doc.History().Clear()
	return c.JSON(http.StatusOK, s.Doc.History().Info())
}

// HandleSetHistorySize changes the history depth limit.
func (h *Handler) HandleSetHistorySize(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	var req struct {
		MaxSize int `json:"maxSize"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid history size payload", err)
	}
	s.Doc.History().SetMaxSize(req.MaxSize)
	return c.JSON(http.StatusOK, s.Doc.History().Info())
}
