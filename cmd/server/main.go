package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "chat-relay/internal/app"
	"chat-relay/internal/chat"
	"chat-relay/internal/history"
	httpx "chat-relay/internal/http"
	"chat-relay/internal/ws"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Redis-backed message history
	store, err := history.NewRedis(ctx, cfg, logger)
	if err != nil {
		logger.Error("redis connect", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	// Room membership + event orchestration
	registry := chat.NewRegistry()
	hub := ws.NewHub(logger)
	coord := chat.NewCoordinator(logger, registry, store, hub)
	hub.Attach(coord)

	// HTTP + WS router
	router := httpx.NewRouter(cfg, logger, hub, registry, store)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}
