package httpx

import (
	_ "embed"
	"net/http"

	"log/slog"

	"chat-relay/internal/app"
	"chat-relay/internal/chat"
	"chat-relay/internal/history"
	"chat-relay/internal/ws"
	"chat-relay/pkg/metrics"
)

//go:embed index.html
var indexPage []byte

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, hub *ws.Hub, reg *chat.Registry, store history.Store) http.Handler {
	mw := NewMiddleware(cfg)
	api := &RoomsAPI{Registry: reg, Store: store, Log: logger}

	mux := http.NewServeMux()

	// Client page
	mux.Handle("GET /{$}", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexPage)
	}))

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// Read-only room state
	mux.Handle("GET /api/rooms", http.HandlerFunc(api.Rooms))
	mux.Handle("GET /api/rooms/{room}/history", http.HandlerFunc(api.History))

	// CORS + rate limit applied globally
	return mw.Wrap(mux)
}
