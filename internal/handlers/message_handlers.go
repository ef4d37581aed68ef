package handlers

import (
	"net/http"

	"chat-relay/internal/auth"
	"chat-relay/internal/services"
	"chat-relay/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// MessageHandlers serves conversation history. Routes sit behind
// auth.RequireAuth, so the caller's identity is always on the context.
type MessageHandlers struct {
	history *services.HistoryService
}

func NewMessageHandlers(history *services.HistoryService) *MessageHandlers {
	return &MessageHandlers{history: history}
}

func (h *MessageHandlers) GetConversation(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	peer := chi.URLParam(r, "recipientId")

	messages, err := h.history.Conversation(r.Context(), identity, peer)
	if err != nil {
		logger.Error("Error retrieving messages: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	logger.Debug("Retrieved %d messages for user %s and %s", len(messages), identity, peer)
	writeJSON(w, http.StatusOK, messages)
}

func (h *MessageHandlers) Search(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	peer := chi.URLParam(r, "recipientId")
	query := r.URL.Query().Get("query")

	messages, err := h.history.Search(r.Context(), identity, peer, query)
	if err != nil {
		logger.Error("Error searching messages: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	logger.Debug("Found %d messages matching search for user %s and %s", len(messages), identity, peer)
	writeJSON(w, http.StatusOK, messages)
}
