package history

import (
	"context"
	"time"
)

const (
	// MaxPerRoom caps how many records a room's log retains.
	MaxPerRoom = 100
	// Retention is how long a room's log survives after its last append.
	Retention = 24 * time.Hour
	// DefaultRecentLimit is used when a caller asks for history without a limit.
	DefaultRecentLimit = 50
)

// Record is one chat message as stored and as replayed to joining clients.
type Record struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"` // RFC 3339, server clock
	Room      string `json:"room"`
}

// Store is the bounded per-room message log.
type Store interface {
	// Append inserts rec at the head of room's log, trims the log to
	// MaxPerRoom entries, and refreshes the log's retention window.
	Append(ctx context.Context, room string, rec Record) error
	// Recent returns up to limit records for room, oldest first.
	// An unknown room yields an empty slice, not an error.
	Recent(ctx context.Context, room string, limit int) ([]Record, error)
}
