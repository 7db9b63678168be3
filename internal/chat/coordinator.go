package chat

import (
	"context"
	"time"

	"log/slog"

	"chat-relay/internal/history"
	"chat-relay/pkg/metrics"
)

// Emitter delivers one outbound event to one connection. Implemented by
// the websocket hub; delivery is best effort and must not block.
type Emitter interface {
	Emit(ctx context.Context, connID, event string, payload any)
}

// Coordinator orchestrates connection events over the registry, the
// history store, and the transport. It holds no state of its own.
type Coordinator struct {
	log      *slog.Logger
	registry *Registry
	store    history.Store
	emitter  Emitter
}

// NewCoordinator wires the coordinator's collaborators
func NewCoordinator(log *slog.Logger, reg *Registry, store history.Store, em Emitter) *Coordinator {
	return &Coordinator{log: log, registry: reg, store: store, emitter: em}
}

// HandleConnect records a fresh connection
func (c *Coordinator) HandleConnect(connID string) {
	c.log.Info("client.connected", "conn", connID)
	metrics.ConnectionsActive.Inc()
}

// HandleJoin adds the connection to the room, replays recent history to
// it, and announces it to the other members. A join without a room is
// dropped.
func (c *Coordinator) HandleJoin(ctx context.Context, connID string, req JoinRequest) {
	if req.Room == "" {
		c.log.Debug("event.dropped", "event", EventJoin, "conn", connID, "reason", "empty room")
		return
	}
	username := req.Username
	if username == "" {
		username = AnonymousUsername
	}
	metrics.EventsTotal.WithLabelValues(EventJoin).Inc()

	// Replay and confirm before the registry mutation. Broadcasts only
	// reach registry members, so nothing can land in the joiner's queue
	// ahead of the replay while the history read is in flight. A failed
	// read degrades to an empty replay.
	recent, err := c.store.Recent(ctx, req.Room, history.DefaultRecentLimit)
	if err != nil {
		c.log.Error("history.read", "event", EventJoin, "room", req.Room, "conn", connID, "err", err)
		recent = nil
	}
	if recent == nil {
		recent = []history.Record{}
	}
	c.emitter.Emit(ctx, connID, EventRoomHistory, RoomHistory{Messages: recent})
	c.emitter.Emit(ctx, connID, EventJoinSuccess, JoinSuccess{Room: req.Room})

	c.registry.Join(req.Room, connID)
	c.log.Info("room.joined", "conn", connID, "room", req.Room, "username", username)

	c.broadcast(ctx, req.Room, connID, EventUserJoined, UserJoined{Username: username})
}

// HandleLeave removes the connection from the room and notifies the
// remaining members. The leave payload carries no username, so the
// notification uses a placeholder.
func (c *Coordinator) HandleLeave(ctx context.Context, connID string, req LeaveRequest) {
	if req.Room == "" {
		c.log.Debug("event.dropped", "event", EventLeave, "conn", connID, "reason", "empty room")
		return
	}
	metrics.EventsTotal.WithLabelValues(EventLeave).Inc()

	c.registry.Leave(req.Room, connID)
	c.log.Info("room.left", "conn", connID, "room", req.Room)

	c.broadcast(ctx, req.Room, "", EventUserLeft, UserLeft{Username: leftPlaceholder})
}

// HandleMessage appends the message to the room's history and relays it
// to every member except the sender. History failure is logged and does
// not stop the relay.
func (c *Coordinator) HandleMessage(ctx context.Context, connID string, req MessageRequest) {
	if req.Room == "" || req.Message == "" {
		c.log.Debug("event.dropped", "event", EventMessage, "conn", connID, "reason", "missing field")
		return
	}
	metrics.EventsTotal.WithLabelValues(EventMessage).Inc()

	ts := time.Now().UTC().Format(time.RFC3339)
	rec := history.Record{
		Username:  req.Username,
		Message:   req.Message,
		Timestamp: ts,
		Room:      req.Room,
	}
	if err := c.store.Append(ctx, req.Room, rec); err != nil {
		metrics.HistoryErrors.Inc()
		c.log.Error("history.append", "event", EventMessage, "room", req.Room, "conn", connID, "err", err)
	}

	c.broadcast(ctx, req.Room, connID, EventNewMessage, NewMessage{
		Sender:    req.Username,
		Message:   req.Message,
		Timestamp: ts,
	})
}

// HandleDisconnect drops the connection from every room it joined.
// Other members are not notified; only an explicit leave announces.
func (c *Coordinator) HandleDisconnect(connID string) {
	c.registry.RemoveEverywhere(connID)
	c.log.Info("client.disconnected", "conn", connID)
	metrics.ConnectionsActive.Dec()
}

// broadcast emits event to every member of room except the excluded
// connection. Per-member delivery is isolated at the transport.
func (c *Coordinator) broadcast(ctx context.Context, room, except, event string, payload any) {
	for _, id := range c.registry.Members(room, except) {
		c.emitter.Emit(ctx, id, event, payload)
		metrics.BroadcastsTotal.Inc()
	}
}
