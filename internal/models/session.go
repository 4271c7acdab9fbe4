package models

// SessionInfo is the JSON-facing summary of an editor session.
type SessionInfo struct {
	ID             string       `json:"id"`
	CreatedAt      int64        `json:"createdAt"`
	LastAccessedAt int64        `json:"lastAccessedAt"`
	ComponentCount int          `json:"componentCount"`
	CanUndo        bool         `json:"canUndo"`
	CanRedo        bool         `json:"canRedo"`
	Persist        PersistState `json:"persist"`
}

// HistoryInfo is the read-only view of history state for the UI.
type HistoryInfo struct {
	CanUndo        bool `json:"canUndo"`
	CanRedo        bool `json:"canRedo"`
	PastLength     int  `json:"pastLength"`
	FutureLength   int  `json:"futureLength"`
	MaxHistorySize int  `json:"maxHistorySize"`
}
