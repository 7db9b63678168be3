package history

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"log/slog"

	"chat-relay/internal/app"
)

type Redis struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewRedis connects to redis and verifies connectivity
func NewRedis(ctx context.Context, cfg app.Config, log *slog.Logger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{rdb: rdb, log: log}, nil
}

// NewRedisWithClient wraps an existing client (tests)
func NewRedisWithClient(rdb *redis.Client, log *slog.Logger) *Redis {
	return &Redis{rdb: rdb, log: log}
}

// Append pushes rec to the head of room's list, trims to MaxPerRoom,
// and resets the key's expiry. The three commands are issued in that
// fixed order; they are pipelined but not transactional.
func (r *Redis) Append(ctx context.Context, room string, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key(room), raw)
		p.LTrim(ctx, key(room), 0, MaxPerRoom-1)
		p.Expire(ctx, key(room), Retention)
		return nil
	})
	return err
}

// Recent reads the newest limit entries and returns them oldest first.
// Entries that fail to decode are skipped.
func (r *Redis) Recent(ctx context.Context, room string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	raws, err := r.rdb.LRange(ctx, key(room), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(raws))
	// List is newest first; walk backwards for chronological order.
	for i := len(raws) - 1; i >= 0; i-- {
		var rec Record
		if err := json.Unmarshal([]byte(raws[i]), &rec); err != nil {
			r.log.Warn("history.decode.skip", "room", room, "err", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close shuts down the redis connection
func (r *Redis) Close() { _ = r.rdb.Close() }

// key namespacing for per-room logs
func key(room string) string { return "chat:history:" + room }
