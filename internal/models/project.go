package models

// ProjectMetadata summarizes a project for listings without deserializing
// the full canvas.
type ProjectMetadata struct {
	ComponentCount int        `json:"componentCount"`
	SizeEstimate   int64      `json:"sizeEstimate"`
	Tags           *StringSet `json:"tags,omitempty"`
}

// UIState is the slice of editor chrome state persisted with a project.
type UIState struct {
	Zoom        float64  `json:"zoom"`
	PanOffset   Position `json:"panOffset"`
	ActivePanel string   `json:"activePanel,omitempty"`
	ShowGrid    bool     `json:"showGrid"`
}

// Project is the persisted unit: one named design plus its canvas snapshot.
type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Version     string          `json:"version"`
	CreatedAt   int64           `json:"createdAt"`
	UpdatedAt   int64           `json:"updatedAt"`
	Canvas      *Snapshot       `json:"canvas"`
	UIState     UIState         `json:"uiState"`
	Metadata    ProjectMetadata `json:"metadata"`
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	dup := *p
	dup.Canvas = p.Canvas.Clone()
	dup.Metadata.Tags = p.Metadata.Tags.Clone()
	return &dup
}

// ProjectInfo is the listing entry stored under metadata:<id>.
type ProjectInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Version        string `json:"version"`
	UpdatedAt      int64  `json:"updatedAt"`
	ComponentCount int    `json:"componentCount"`
	SizeEstimate   int64  `json:"sizeEstimate"`
}

// PersistState is the persistence status exposed to the UI layer.
type PersistState struct {
	IsDirty          bool   `json:"isDirty"`
	LastSaved        int64  `json:"lastSaved,omitempty"`
	AutoSaveEnabled  bool   `json:"autoSaveEnabled"`
	CurrentProjectID string `json:"currentProjectId,omitempty"`
	LastError        string `json:"lastError,omitempty"`
}
