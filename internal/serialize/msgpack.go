package serialize

import (
	"fmt"

	"github.com/pagecraft/backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// wireSnapshot is the msgpack transfer shape for a canvas snapshot. The
// component store is flattened to ordered pairs; msgpack is used only for
// compact UI transfer, never for durable storage.
type wireSnapshot struct {
	ID          string             `msgpack:"id"`
	Timestamp   int64              `msgpack:"timestamp"`
	Order       []string           `msgpack:"order"`
	Components  []models.Component `msgpack:"components"`
	SelectedIDs []string           `msgpack:"selectedComponentIds"`
	Dimensions  models.CanvasSize  `msgpack:"dimensions"`
	Viewport    models.Viewport    `msgpack:"viewport"`
	Zoom        float64            `msgpack:"zoom"`
}

// EncodeSnapshotMsgpack encodes a snapshot in MessagePack for compact
// frontend transfer.
func EncodeSnapshotMsgpack(snap *models.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, fmt.Errorf("encoding snapshot: snapshot is nil")
	}
	wire := wireSnapshot{
		ID:          snap.ID,
		Timestamp:   snap.Timestamp,
		SelectedIDs: snap.SelectedIDs,
		Dimensions:  snap.Dimensions,
		Viewport:    snap.Viewport,
		Zoom:        snap.Zoom,
	}
	snap.Components.Range(func(id string, c *models.Component) bool {
		wire.Order = append(wire.Order, id)
		wire.Components = append(wire.Components, *c)
		return true
	})
	return msgpack.Marshal(wire)
}

// DecodeSnapshotMsgpack reverses EncodeSnapshotMsgpack, rebuilding the
// ordered component store.
func DecodeSnapshotMsgpack(data []byte) (*models.Snapshot, error) {
	var wire wireSnapshot
	if err := msgpack.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	snap := &models.Snapshot{
		ID:          wire.ID,
		Timestamp:   wire.Timestamp,
		Components:  models.NewComponentStore(),
		SelectedIDs: wire.SelectedIDs,
		Dimensions:  wire.Dimensions,
		Viewport:    wire.Viewport,
		Zoom:        wire.Zoom,
	}
	for i := range wire.Components {
		c := wire.Components[i]
		snap.Components.Set(&c)
	}
	return snap, nil
}
