package services

import (
	"context"
	"errors"

	"chat-relay/internal/database"
	"chat-relay/internal/models"
)

var ErrMissingPeer = errors.New("recipient is required")

// HistoryService reads conversations back out of the message store.
type HistoryService struct {
	store database.MessageRepository
}

func NewHistoryService(store database.MessageRepository) *HistoryService {
	return &HistoryService{store: store}
}

func (s *HistoryService) Conversation(ctx context.Context, identity, peer string) ([]*models.PersistedMessage, error) {
	return s.Search(ctx, identity, peer, "")
}

// Search returns the conversation filtered to messages containing query.
func (s *HistoryService) Search(ctx context.Context, identity, peer, query string) ([]*models.PersistedMessage, error) {
	if peer == "" {
		return nil, ErrMissingPeer
	}
	return s.store.QueryConversation(ctx, identity, peer, query)
}
