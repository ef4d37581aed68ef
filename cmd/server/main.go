package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-relay/internal/auth"
	"chat-relay/internal/config"
	"chat-relay/internal/database"
	"chat-relay/internal/handlers"
	"chat-relay/internal/services"
	"chat-relay/internal/session"
	"chat-relay/internal/websocket"
	"chat-relay/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Setup(cfg.Env, cfg.LogLevel)

	if cfg.IsDevelopment() && string(cfg.JWT.Secret) == config.DefaultJWTSecret {
		logger.Warn("JWT_SECRET not set, using the development default")
	}

	// Initialize database
	db := openDatabase(cfg)
	defer db.Close()

	// Shared realtime state
	tokens := auth.NewTokenManager(cfg.JWT.Secret)
	registry := session.NewRegistry()
	hub := websocket.NewHub()

	// Initialize services
	authService := auth.NewService(db, tokens, cfg.JWT.ExpiresIn)
	relayService := services.NewRelayService(db, hub, cfg.Relay.StoreTimeout)
	presenceService := services.NewPresenceService(registry, hub)
	historyService := services.NewHistoryService(db)

	// Initialize handlers
	router := handlers.NewRouter(handlers.RouterDeps{
		Tokens:   tokens,
		Auth:     handlers.NewAuthHandlers(authService),
		Messages: handlers.NewMessageHandlers(historyService),
		WebSocket: handlers.NewWebSocketHandlers(
			tokens, hub, registry, relayService, presenceService,
			cfg.Server.CORSOrigins, cfg.Relay.SendBuffer,
		),
		Store:          db,
		AllowedOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info("Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("WebSocket endpoint: ws://localhost%s/ws?token=<jwt>", cfg.Server.Port)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown; closing
	// their send queues makes every write pump send a close frame.
	hub.Shutdown()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error: %v", err)
	}
}

func openDatabase(cfg *config.Config) database.Database {
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set, messages are kept in memory only")
		return database.NewMemoryDB()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to prepare database: %v", err)
	}
	return db
}
