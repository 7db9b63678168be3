package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"log/slog"

	"chat-relay/internal/chat"
)

// envelope is the wire framing for every event in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub owns the live connections and bridges the wire protocol to the
// chat coordinator. It is the coordinator's Emitter.
type Hub struct {
	log   *slog.Logger
	coord *chat.Coordinator

	mu    sync.RWMutex
	conns map[string]*Conn // live connections by session id
}

// NewHub sets up the hub; Attach must be called before serving
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{log: logger, conns: map[string]*Conn{}}
}

// Attach binds the coordinator after construction. The hub and the
// coordinator reference each other, so one side attaches late.
func (h *Hub) Attach(coord *chat.Coordinator) { h.coord = coord }

// Emit marshals one event for one connection and queues it. Unknown or
// saturated connections are skipped.
func (h *Hub) Emit(_ context.Context, connID, event string, payload any) {
	h.mu.RLock()
	c := h.conns[connID]
	h.mu.RUnlock()
	if c == nil {
		return
	}

	raw, err := json.Marshal(outEnvelope{Event: event, Data: payload})
	if err != nil {
		h.log.Error("ws.marshal", "event", event, "conn", connID, "err", err)
		return
	}
	if !c.Send(raw) {
		h.log.Warn("ws.send.dropped", "event", event, "conn", connID)
	}
}

// ServeWS handles a new /ws connection for its whole lifetime
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sock, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	c := NewConn(uuid.NewString(), sock)
	h.register(c)
	h.coord.HandleConnect(c.ID())

	go c.WriteLoop(ctx)

	for {
		frame, ok := c.Read(ctx)
		if !ok {
			break
		}
		h.dispatch(ctx, c.ID(), frame)
	}

	h.coord.HandleDisconnect(c.ID())
	h.unregister(c)
	_ = c.Close()
}

// dispatch decodes one inbound frame and routes it to the coordinator.
// Frames that don't decode are dropped, never answered with an error.
func (h *Hub) dispatch(ctx context.Context, connID string, frame []byte) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		h.log.Debug("ws.frame.dropped", "conn", connID, "err", err)
		return
	}

	switch env.Event {
	case chat.EventJoin:
		var req chat.JoinRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.log.Debug("ws.payload.dropped", "event", env.Event, "conn", connID, "err", err)
			return
		}
		h.coord.HandleJoin(ctx, connID, req)

	case chat.EventLeave:
		var req chat.LeaveRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.log.Debug("ws.payload.dropped", "event", env.Event, "conn", connID, "err", err)
			return
		}
		h.coord.HandleLeave(ctx, connID, req)

	case chat.EventMessage:
		var req chat.MessageRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			h.log.Debug("ws.payload.dropped", "event", env.Event, "conn", connID, "err", err)
			return
		}
		h.coord.HandleMessage(ctx, connID, req)

	default:
		h.log.Debug("ws.event.unknown", "event", env.Event, "conn", connID)
	}
}

func (h *Hub) register(c *Conn) {
	h.mu.Lock()
	h.conns[c.ID()] = c
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Conn) {
	h.mu.Lock()
	delete(h.conns, c.ID())
	h.mu.Unlock()
}
