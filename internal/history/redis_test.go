package history

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRedisWithClient(rdb, logger), mr
}

func TestAppendAndRecentRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "lobby", Record{
		Username: "alice", Message: "first", Timestamp: "2026-01-02T15:04:05Z", Room: "lobby",
	}))
	require.NoError(t, store.Append(ctx, "lobby", Record{
		Username: "bob", Message: "second", Timestamp: "2026-01-02T15:04:06Z", Room: "lobby",
	}))

	recs, err := store.Recent(ctx, "lobby", 50)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// Chronological: oldest first.
	assert.Equal(t, "first", recs[0].Message)
	assert.Equal(t, "second", recs[1].Message)
	assert.Equal(t, "alice", recs[0].Username)
	assert.Equal(t, "lobby", recs[0].Room)
}

func TestAppendTruncatesToCap(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		require.NoError(t, store.Append(ctx, "busy", Record{
			Username: "alice",
			Message:  fmt.Sprintf("msg-%d", i),
			Room:     "busy",
		}))
	}

	recs, err := store.Recent(ctx, "busy", MaxPerRoom)
	require.NoError(t, err)
	require.Len(t, recs, MaxPerRoom)
	// Only the newest 100 survive, oldest of those first.
	assert.Equal(t, "msg-50", recs[0].Message)
	assert.Equal(t, "msg-149", recs[len(recs)-1].Message)
}

func TestRecentLimitsResult(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, store.Append(ctx, "lobby", Record{Message: fmt.Sprintf("msg-%d", i)}))
	}

	recs, err := store.Recent(ctx, "lobby", 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	// The newest 3, still chronological.
	assert.Equal(t, "msg-7", recs[0].Message)
	assert.Equal(t, "msg-9", recs[2].Message)
}

func TestRecentUnknownRoomIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	recs, err := store.Recent(context.Background(), "ghost", 50)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecentSkipsMalformedEntries(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "lobby", Record{Username: "alice", Message: "ok"}))
	// Corrupt entry pushed straight into the backing list.
	_, err := mr.Lpush("chat:history:lobby", "{not json")
	require.NoError(t, err)

	recs, err := store.Recent(ctx, "lobby", 50)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ok", recs[0].Message)
}

func TestAppendRefreshesRetention(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "lobby", Record{Message: "hi"}))
	assert.Equal(t, Retention, mr.TTL("chat:history:lobby"))

	// Age the key, append again, expiry resets.
	mr.FastForward(12 * time.Hour)
	require.NoError(t, store.Append(ctx, "lobby", Record{Message: "again"}))
	assert.Equal(t, Retention, mr.TTL("chat:history:lobby"))
}

func TestEntriesExpireAfterRetention(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "lobby", Record{Message: "hi"}))
	mr.FastForward(Retention + time.Minute)

	recs, err := store.Recent(ctx, "lobby", 50)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
