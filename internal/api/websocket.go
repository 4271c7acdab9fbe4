package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pagecraft/backend/internal/canvas"
	"github.com/pagecraft/backend/internal/serialize"
)

// WebSocket message types for the canvas state channel
const (
	// Client -> Server messages
	MsgTypePing        = "ping"
	MsgTypePull        = "canvas:pull"
	MsgTypeSetEncoding = "canvas:encoding"

	// Server -> Client messages
	MsgTypePong      = "pong"
	MsgTypeConnected = "connected"
	MsgTypeState     = "canvas:state"
	MsgTypeHistory   = "history:state"
	MsgTypeError     = "error"
)

// WSMessage is the JSON frame exchanged on the channel.
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSErrorResponse reports a channel-level error to the client.
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// statePushInterval is how often the push loop checks for canvas changes.
const statePushInterval = 250 * time.Millisecond

// wsConn serializes writes; the push goroutine and the read loop both send
// frames on the same connection.
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteJSON(v)
}

func (c *wsConn) writeBinary(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteMessage(websocket.BinaryMessage, data)
}

// WebSocketHandler pushes canvas state to connected editor clients.
type WebSocketHandler struct {
	handler  *Handler
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates the canvas state channel handler.
func NewWebSocketHandler(h *Handler) *WebSocketHandler {
	return &WebSocketHandler{
		handler: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		logger: slog.Default().With("component", "websocket"),
	}
}

// HandleWebSocket upgrades the connection and streams canvas state for one
// session. Pushes happen whenever a mutation lands; the client can also pull
// explicitly or switch the snapshot encoding to msgpack.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	s, err := wsh.handler.getSession(c)
	if err != nil {
		return err
	}

	raw, uerr := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if uerr != nil {
		return uerr
	}
	ws := &wsConn{Conn: raw}
	defer ws.Close()

	wsh.logger.Info("client connected", "session", s.ID)
	wsh.sendMessage(ws, WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()})

	var useMsgpack atomic.Bool

	// Push loop: watch the history engine's present snapshot id; a new id
	// means a mutation was committed.
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(statePushInterval)
		defer ticker.Stop()
		lastSnapshotID := ""
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				present := s.Doc.History().Present()
				if present == nil || present.ID == lastSnapshotID {
					continue
				}
				lastSnapshotID = present.ID
				wsh.pushState(ws, s.Doc, useMsgpack.Load())
			}
		}
	}()
	defer close(done)

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				wsh.logger.Warn("connection error", "session", s.ID, "error", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			wsh.sendMessage(ws, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		case MsgTypePull:
			wsh.pushState(ws, s.Doc, useMsgpack.Load())
		case MsgTypeSetEncoding:
			var payload struct {
				Encoding string `json:"encoding"`
			}
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				wsh.sendError(ws, "invalid encoding payload: "+err.Error(), "INVALID_PAYLOAD")
				continue
			}
			useMsgpack.Store(payload.Encoding == "msgpack")
		default:
			wsh.sendError(ws, "unknown message type: "+msg.Type, "INVALID_TYPE")
		}
	}

	wsh.logger.Info("client disconnected", "session", s.ID)
	return nil
}

// pushState sends the current canvas and history state. With msgpack
// enabled the snapshot goes out as a binary frame instead of JSON.
func (wsh *WebSocketHandler) pushState(ws *wsConn, doc *canvas.Document, useMsgpack bool) {
	if useMsgpack {
		data, err := serialize.EncodeSnapshotMsgpack(doc.Snapshot(""))
		if err != nil {
			wsh.sendError(ws, "snapshot encoding failed: "+err.Error(), "ENCODE_ERROR")
			return
		}
		if err := ws.writeBinary(data); err != nil {
			wsh.logger.Warn("failed to send binary frame", "error", err)
		}
	} else {
		wsh.sendMessage(ws, WSMessage{
			Type:      MsgTypeState,
			Timestamp: time.Now().UnixMilli(),
			Payload:   mustJSON(doc.State()),
		})
	}
	wsh.sendMessage(ws, WSMessage{
		Type:      MsgTypeHistory,
		Timestamp: time.Now().UnixMilli(),
		Payload:   mustJSON(doc.History().Info()),
	})
}

// sendMessage writes a JSON frame, logging on failure.
func (wsh *WebSocketHandler) sendMessage(ws *wsConn, msg WSMessage) {
	if err := ws.writeJSON(msg); err != nil {
		wsh.logger.Warn("failed to send message", "error", err)
	}
}

func (wsh *WebSocketHandler) sendError(ws *wsConn, message, code string) {
	wsh.sendMessage(ws, WSMessage{
		Type:      MsgTypeError,
		Timestamp: time.Now().UnixMilli(),
		Payload:   mustJSON(WSErrorResponse{Message: message, Code: code}),
	})
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
