// handlers_session.go - Editor session lifecycle handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HandleCreateSession starts a new editor session with an empty canvas.
func (h *Handler) HandleCreateSession(c echo.Context) error {
	s := h.sessions.Create()
	if s == nil {
		return NewServiceUnavailableError("session limit reached")
	}
	return c.JSON(http.StatusCreated, s.Info())
}

// HandleListSessions returns summaries of all active sessions.
func (h *Handler) HandleListSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.List())
}

// HandleGetSession returns one session summary.
func (h *Handler) HandleGetSession(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Info())
}

// HandleDeleteSession ends a session. Unsaved changes are discarded.
func (h *Handler) HandleDeleteSession(c echo.Context) error {
	id := c.Param("sessionId")
	if !h.sessions.Delete(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSessionKeepAlive bumps the keep-alive timestamp so the cleanup loop
// leaves the session alone.
func (h *Handler) HandleSessionKeepAlive(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":             s.ID,
		"lastAccessedAt": s.LastAccessedAt.UnixMilli(),
	})
}

// HandleGetCanvas returns the full canvas state of a session.
func (h *Handler) HandleGetCanvas(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Doc.State())
}
