package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pagecraft/backend/internal/project"
	"github.com/pagecraft/backend/internal/serialize"
	"github.com/pagecraft/backend/internal/session"
	"github.com/pagecraft/backend/internal/storage"
)

// Handler handles API requests.
type Handler struct {
	sessions *session.Manager
	projects *project.Manager
	store    *storage.Manager
	recovery *project.RecoveryMonitor
	ser      *serialize.Service
	version  string
}

// NewHandler creates a new API handler.
func NewHandler(sessions *session.Manager, projects *project.Manager, store *storage.Manager, recovery *project.RecoveryMonitor, version string) *Handler {
	return &Handler{
		sessions: sessions,
		projects: projects,
		store:    store,
		recovery: recovery,
		ser:      serialize.NewService(),
		version:  version,
	}
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  h.version,
		"sessions": h.sessions.Len(),
		"storage":  h.store.ValidateStorage(),
	})
}

// getSession resolves the :sessionId param or fails with 404.
func (h *Handler) getSession(c echo.Context) (*session.Session, error) {
	id := c.Param("sessionId")
	s, ok := h.sessions.Get(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	return s, nil
}
