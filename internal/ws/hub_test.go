package ws

import (
	"context"
	"io"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-relay/internal/chat"
	"chat-relay/internal/history"
)

type nopStore struct{}

func (nopStore) Append(context.Context, string, history.Record) error { return nil }

func (nopStore) Recent(context.Context, string, int) ([]history.Record, error) {
	return nil, nil
}

func newTestHub() (*Hub, *chat.Registry) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := chat.NewRegistry()
	hub := NewHub(logger)
	hub.Attach(chat.NewCoordinator(logger, reg, nopStore{}, hub))
	return hub, reg
}

func TestDispatchJoinUpdatesRegistry(t *testing.T) {
	hub, reg := newTestHub()

	hub.dispatch(context.Background(), "c1", []byte(`{"event":"join","data":{"room":"lobby","username":"alice"}}`))

	assert.Contains(t, reg.Members("lobby", ""), "c1")
}

func TestDispatchLeaveUpdatesRegistry(t *testing.T) {
	hub, reg := newTestHub()
	reg.Join("lobby", "c1")

	hub.dispatch(context.Background(), "c1", []byte(`{"event":"leave","data":{"room":"lobby"}}`))

	assert.Empty(t, reg.Members("lobby", ""))
}

func TestDispatchDropsMalformedFrames(t *testing.T) {
	hub, reg := newTestHub()
	ctx := context.Background()

	hub.dispatch(ctx, "c1", []byte(`not json`))
	hub.dispatch(ctx, "c1", []byte(`{"event":"join","data":"not an object"}`))
	hub.dispatch(ctx, "c1", []byte(`{"event":"no_such_event","data":{}}`))

	assert.Empty(t, reg.ActiveRooms())
}

func TestSendDropsWhenQueueFull(t *testing.T) {
	c := NewConn("c1", nil)

	for i := 0; i < cap(c.out); i++ {
		require.True(t, c.Send([]byte("frame")))
	}
	assert.False(t, c.Send([]byte("overflow")))
	assert.Len(t, c.out, cap(c.out))
}

func TestEmitSkipsSaturatedConn(t *testing.T) {
	hub, _ := newTestHub()
	ctx := context.Background()

	slow := NewConn("slow", nil)
	for slow.Send([]byte("backlog")) {
	}
	healthy := NewConn("healthy", nil)
	hub.register(slow)
	hub.register(healthy)

	// The saturated recipient is skipped; delivery elsewhere proceeds.
	hub.Emit(ctx, "slow", chat.EventNewMessage, chat.NewMessage{Sender: "alice", Message: "hi"})
	hub.Emit(ctx, "healthy", chat.EventNewMessage, chat.NewMessage{Sender: "alice", Message: "hi"})

	assert.Len(t, slow.out, cap(slow.out))
	assert.Len(t, healthy.out, 1)
}

func TestEmitToUnknownConnIsNoop(t *testing.T) {
	hub, _ := newTestHub()

	// Must not panic or block.
	hub.Emit(context.Background(), "ghost", chat.EventJoinSuccess, chat.JoinSuccess{Room: "lobby"})
}
