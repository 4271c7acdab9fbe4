// handlers_project.go - Project persistence handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pagecraft/backend/internal/serialize"
)

// HandleSaveProject saves the session's canvas as a project. With a
// projectId in the body the existing project is updated; otherwise a new one
// is created.
func (h *Handler) HandleSaveProject(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	var req struct {
		ProjectID   string `json:"projectId,omitempty"`
		Name        string `json:"name,omitempty"`
		Description string `json:"description,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid save payload", err)
	}

	snap := s.Doc.Snapshot("")
	p := h.projects.NewProject(req.Name, req.Description, snap)
	if req.ProjectID != "" {
		existing, lerr := h.projects.Load(req.ProjectID)
		if lerr != nil {
			return NewNotFoundError("project", req.ProjectID)
		}
		// Back up the previous payload before overwriting it.
		h.projects.Backup(req.ProjectID)
		existing.Canvas = snap
		if req.Name != "" {
			existing.Name = req.Name
		}
		if req.Description != "" {
			existing.Description = req.Description
		}
		p = existing
	}
	if p.Name == "" {
		p.Name = "Untitled"
	}

	if err := h.projects.Save(p); err != nil {
		s.Persist.LastError = err.Error()
		return NewInternalError("project save failed", err)
	}

	s.Doc.MarkClean()
	s.Persist.CurrentProjectID = p.ID
	s.Persist.LastSaved = time.Now().UnixMilli()
	s.Persist.LastError = ""
	h.recovery.SetCurrentProject(p.ID)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"projectId": p.ID,
		"name":      p.Name,
		"updatedAt": p.UpdatedAt,
	})
}

// HandleLoadProject loads a project into the session, replacing the canvas
// and resetting history.
func (h *Handler) HandleLoadProject(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	id := c.Param("projectId")
	p, lerr := h.projects.Load(id)
	if lerr != nil {
		return NewNotFoundError("project", id)
	}

	s.Doc.Restore(p.Canvas)
	s.Doc.MarkClean()
	s.Persist.CurrentProjectID = p.ID
	s.Persist.LastError = ""
	h.recovery.SetCurrentProject(p.ID)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"project": p,
		"canvas":  s.Doc.State(),
	})
}

// HandleListProjects enumerates saved projects, newest first.
func (h *Handler) HandleListProjects(c echo.Context) error {
	return c.JSON(http.StatusOK, h.projects.List())
}

// HandleDeleteProject removes a project and its associated data.
func (h *Handler) HandleDeleteProject(c echo.Context) error {
	id := c.Param("projectId")
	if !h.projects.Delete(id) {
		return NewInternalError("project delete failed", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleBackupProject copies the stored project payload to its backup slot.
func (h *Handler) HandleBackupProject(c echo.Context) error {
	id := c.Param("projectId")
	if !h.projects.Backup(id) {
		return NewNotFoundError("project", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleRestoreBackup loads the backup copy of a project.
func (h *Handler) HandleRestoreBackup(c echo.Context) error {
	id := c.Param("projectId")
	p, err := h.projects.RestoreBackup(id)
	if err != nil {
		return NewNotFoundError("project backup", id)
	}
	return c.JSON(http.StatusOK, p)
}

// HandleExportProject returns the project as a portable serialized string.
func (h *Handler) HandleExportProject(c echo.Context) error {
	id := c.Param("projectId")
	p, err := h.projects.Load(id)
	if err != nil {
		return NewNotFoundError("project", id)
	}
	payload, serr := h.ser.SerializeProject(p)
	if serr != nil {
		return NewInternalError("project export failed", serr)
	}
	return c.JSON(http.StatusOK, map[string]string{"data": payload})
}

// HandleImportProject accepts a serialized project string and stores it
// under a fresh id.
func (h *Handler) HandleImportProject(c echo.Context) error {
	var req struct {
		Data string `json:"data"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid import payload", err)
	}

	p, err := h.ser.DeserializeProject(req.Data)
	if err != nil {
		if recovered := h.ser.AttemptDataRecovery(req.Data); recovered == nil {
			return NewImportCorruptError(err)
		}
		return NewBadRequestError("import data is damaged; recovery could not produce a project", err)
	}

	imported := h.projects.NewProject(p.Name, p.Description, p.Canvas)
	imported.UIState = p.UIState
	if err := h.projects.Save(imported); err != nil {
		return NewInternalError("imported project save failed", err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"projectId": imported.ID})
}

// HandleGetCanvasMsgpack returns the session canvas as a msgpack snapshot
// for bandwidth-sensitive transfers.
func (h *Handler) HandleGetCanvasMsgpack(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}
	data, merr := serialize.EncodeSnapshotMsgpack(s.Doc.Snapshot(""))
	if merr != nil {
		return NewInternalError("snapshot encoding failed", merr)
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

// HandleCheckRecovery reports whether the previous run crashed and what it
// left behind.
func (h *Handler) HandleCheckRecovery(c echo.Context) error {
	return c.JSON(http.StatusOK, h.recovery.CheckForCrash())
}

// HandleLoadAutosave restores the autosave snapshot for a project into the
// session.
func (h *Handler) HandleLoadAutosave(c echo.Context) error {
	s, err := h.getSession(c)
	if err != nil {
		return err
	}

	id := c.Param("projectId")
	snap := h.projects.LoadAutosave(id)
	if snap == nil {
		return NewNotFoundError("autosave", id)
	}
	s.Doc.Restore(snap)
	s.Persist.CurrentProjectID = id
	return c.JSON(http.StatusOK, s.Doc.State())
}
