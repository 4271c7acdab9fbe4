// handlers_storage.go - Storage capacity and maintenance handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HandleStorageInfo returns the per-item storage breakdown.
func (h *Handler) HandleStorageInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.GetDetailedStorageInfo())
}

// HandleStorageWarnings maps current usage onto the capacity taxonomy.
func (h *Handler) HandleStorageWarnings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.CheckCapacityWarnings())
}

// HandleStorageCleanup frees cleanup-eligible data down to the target
// percentage (default 70).
func (h *Handler) HandleStorageCleanup(c echo.Context) error {
	var req struct {
		TargetPercent float64 `json:"targetPercent"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid cleanup payload", err)
	}
	if req.TargetPercent <= 0 || req.TargetPercent >= 100 {
		req.TargetPercent = 70
	}
	return c.JSON(http.StatusOK, h.store.PerformAutomaticCleanup(req.TargetPercent))
}

// HandleStorageOptimizations returns heuristic suggestions about what is
// consuming space.
func (h *Handler) HandleStorageOptimizations(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"suggestions": h.store.SuggestOptimizations(),
	})
}

// HandleStorageValidate round-trips a probe key to confirm the substrate
// works.
func (h *Handler) HandleStorageValidate(c echo.Context) error {
	ok := h.store.ValidateStorage()
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]bool{"usable": ok})
}
