package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"chat-relay/internal/auth"
	"chat-relay/internal/metrics"
	"chat-relay/internal/models"
	"chat-relay/internal/services"
	"chat-relay/internal/session"
	ws "chat-relay/internal/websocket"
	"chat-relay/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	tokens     *auth.TokenManager
	hub        *ws.Hub
	registry   *session.Registry
	relay      *services.RelayService
	presence   *services.PresenceService
	sendBuffer int
	upgrader   websocket.Upgrader
}

func NewWebSocketHandlers(
	tokens *auth.TokenManager,
	hub *ws.Hub,
	registry *session.Registry,
	relay *services.RelayService,
	presence *services.PresenceService,
	allowedOrigins []string,
	sendBuffer int,
) *WebSocketHandlers {
	return &WebSocketHandlers{
		tokens:     tokens,
		hub:        hub,
		registry:   registry,
		relay:      relay,
		presence:   presence,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

// HandleWebSocket admits a realtime connection. The token travels in the
// handshake query string; nothing is upgraded until it verifies.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, err := h.tokens.Verify(r.URL.Query().Get("token"))
	if err != nil {
		if errors.Is(err, auth.ErrMissingToken) {
			metrics.Admissions.WithLabelValues("missing_token").Inc()
			logger.Warn("No token provided in socket handshake")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Authentication error: No token"})
			return
		}
		metrics.Admissions.WithLabelValues("invalid_token").Inc()
		logger.Warn("Token verification failed: %v", err)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Authentication error: Invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := ws.NewClient(conn, identity, h.sendBuffer)
	if !h.hub.Add(client) {
		conn.Close()
		return
	}
	metrics.Admissions.WithLabelValues("admitted").Inc()

	h.registry.Register(client.ID(), identity)
	h.hub.Join(client.ID(), identity)
	logger.Info("User %s connected on %s", identity, client.ID())

	go client.WritePump()
	go client.ReadPump(h)
}

// HandleEvent processes one inbound event for client. Failures are logged and
// never reach other connections. Message appends run on a background context
// so a message already accepted is stored even if its sender disconnects
// mid-append.
func (h *WebSocketHandlers) HandleEvent(client *ws.Client, env models.Envelope) {
	switch env.Event {
	case models.EventIdentify:
		var displayName string
		if err := json.Unmarshal(env.Data, &displayName); err != nil {
			logger.Warn("Invalid identify payload from %s: %v", client.ID(), err)
			return
		}
		if !h.registry.Identify(client.ID(), displayName) {
			return
		}
		client.MarkIdentified()
		h.presence.Broadcast()

	case models.EventJoin:
		var room string
		if err := json.Unmarshal(env.Data, &room); err != nil {
			logger.Warn("Invalid join payload from %s: %v", client.ID(), err)
			return
		}
		if room != client.Identity() {
			logger.Warn("Connection %s of %s may not join room %s", client.ID(), client.Identity(), room)
			return
		}
		h.hub.Join(client.ID(), room)

	case models.EventMessage:
		var msg models.ChatMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			logger.Warn("Dropping message from %s: %v", client.ID(), services.ErrInvalidMessageFormat)
			metrics.MessagesRelayed.WithLabelValues("invalid").Inc()
			return
		}
		if msg.Sender != "" && msg.Sender != client.Identity() {
			logger.Warn("Dropping message from %s: %v", client.ID(), services.ErrSenderMismatch)
			metrics.MessagesRelayed.WithLabelValues("invalid").Inc()
			return
		}
		if _, err := h.relay.Relay(context.Background(), &msg); err != nil {
			logger.Error("Error relaying message from %s: %v", client.ID(), err)
		}

	case models.EventPing:
		h.hub.Send(client.ID(), models.EventPong, nil)

	default:
		logger.Warn("Unknown event %q from %s", env.Event, client.ID())
	}
}

// HandleDisconnect tears the connection down once, whatever state it was in.
func (h *WebSocketHandlers) HandleDisconnect(client *ws.Client) {
	if !client.MarkDisconnected() {
		return
	}
	h.hub.Remove(client.ID())
	h.registry.Unregister(client.ID())
	h.presence.Broadcast()
	logger.Info("User %s disconnected from %s", client.Identity(), client.ID())
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and browser requests from the configured origins. "*" allows all.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, candidate := range allowed {
			if candidate == "*" || candidate == origin {
				return true
			}
		}
		return false
	}
}
