// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/pagecraft/backend/internal/project"
	"github.com/pagecraft/backend/internal/session"
	"github.com/pagecraft/backend/internal/storage"
)

// Dependencies holds all handler dependencies.
type Dependencies struct {
	Sessions *session.Manager
	Projects *project.Manager
	Store    *storage.Manager
	Recovery *project.RecoveryMonitor
	Version  string
}

// NewHandlers creates the handler and websocket handler instances.
func NewHandlers(deps *Dependencies) (*Handler, *WebSocketHandler) {
	h := NewHandler(deps.Sessions, deps.Projects, deps.Store, deps.Recovery, deps.Version)
	return h, NewWebSocketHandler(h)
}

// RegisterRoutes registers all API routes with the Echo instance.
func RegisterRoutes(e *echo.Echo, h *Handler, wsh *WebSocketHandler) {
	// Health check
	e.GET("/health", h.HandleHealth)

	// Session lifecycle
	sessionGroup := e.Group("/api/sessions")
	sessionGroup.POST("", h.HandleCreateSession)
	sessionGroup.GET("", h.HandleListSessions)
	sessionGroup.GET("/:sessionId", h.HandleGetSession)
	sessionGroup.DELETE("/:sessionId", h.HandleDeleteSession)
	sessionGroup.POST("/:sessionId/keepalive", h.HandleSessionKeepAlive)

	// Canvas state and components
	canvasGroup := e.Group("/api/sessions/:sessionId/canvas")
	canvasGroup.GET("", h.HandleGetCanvas)
	canvasGroup.GET("/msgpack", h.HandleGetCanvasMsgpack)
	canvasGroup.POST("/zoom", h.HandleSetZoom)
	canvasGroup.POST("/viewport", h.HandleSetViewport)
	canvasGroup.POST("/grid", h.HandleSetGrid)
	canvasGroup.POST("/selection/clear", h.HandleClearSelection)

	componentGroup := e.Group("/api/sessions/:sessionId/components")
	componentGroup.POST("", h.HandleCreateComponent)
	componentGroup.PUT("/:componentId", h.HandleUpdateComponent)
	componentGroup.DELETE("/:componentId", h.HandleDeleteComponent)
	componentGroup.POST("/:componentId/move", h.HandleMoveComponent)
	componentGroup.POST("/:componentId/resize", h.HandleResizeComponent)
	componentGroup.POST("/:componentId/reorder", h.HandleReorderComponent)
	componentGroup.POST("/:componentId/duplicate", h.HandleDuplicateComponent)
	componentGroup.POST("/:componentId/select", h.HandleSelectComponent)
	componentGroup.POST("/:componentId/deselect", h.HandleDeselectComponent)
	componentGroup.GET("/:componentId/validate", h.HandleValidateComponent)

	// History
	historyGroup := e.Group("/api/sessions/:sessionId/history")
	historyGroup.GET("", h.HandleHistoryInfo)
	historyGroup.POST("/undo", h.HandleUndo)
	historyGroup.POST("/redo", h.HandleRedo)
	historyGroup.POST("/clear", h.HandleClearHistory)
	historyGroup.PUT("/size", h.HandleSetHistorySize)

	// Project persistence
	sessionGroup.POST("/:sessionId/save", h.HandleSaveProject)
	sessionGroup.POST("/:sessionId/load/:projectId", h.HandleLoadProject)
	sessionGroup.POST("/:sessionId/autosave/:projectId", h.HandleLoadAutosave)

	projectGroup := e.Group("/api/projects")
	projectGroup.GET("", h.HandleListProjects)
	projectGroup.DELETE("/:projectId", h.HandleDeleteProject)
	projectGroup.POST("/:projectId/backup", h.HandleBackupProject)
	projectGroup.GET("/:projectId/backup", h.HandleRestoreBackup)
	projectGroup.GET("/:projectId/export", h.HandleExportProject)
	projectGroup.POST("/import", h.HandleImportProject)

	// Crash recovery
	e.GET("/api/recovery", h.HandleCheckRecovery)

	// Storage maintenance
	storageGroup := e.Group("/api/storage")
	storageGroup.GET("/info", h.HandleStorageInfo)
	storageGroup.GET("/warnings", h.HandleStorageWarnings)
	storageGroup.POST("/cleanup", h.HandleStorageCleanup)
	storageGroup.GET("/optimizations", h.HandleStorageOptimizations)
	storageGroup.GET("/validate", h.HandleStorageValidate)

	// WebSocket state push
	e.GET("/api/ws/sessions/:sessionId", wsh.HandleWebSocket)
}
