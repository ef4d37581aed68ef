package handlers

import (
	"context"
	"net/http"
	"time"

	"chat-relay/internal/auth"
	"chat-relay/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDeps struct {
	Tokens         *auth.TokenManager
	Auth           *AuthHandlers
	Messages       *MessageHandlers
	WebSocket      *WebSocketHandlers
	Store          Pinger
	AllowedOrigins []string
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestMetrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger.GlobalLogger.Zerolog()))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Server is running!"))
	})
	r.Get("/health", healthHandler(deps.Store))
	r.Handle("/metrics", promhttp.Handler())

	// Realtime admission happens inside the handler, before the upgrade.
	r.Get("/ws", deps.WebSocket.HandleWebSocket)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", deps.Auth.Signup)
		r.Post("/login", deps.Auth.Login)
	})

	r.Route("/api/messages", func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Tokens))
		r.Get("/search/{recipientId}", deps.Messages.Search)
		r.Get("/{recipientId}", deps.Messages.GetConversation)
	})

	return r
}

func healthHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
