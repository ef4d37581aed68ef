package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat-relay/internal/database"
	"chat-relay/internal/metrics"
	"chat-relay/internal/models"
	"chat-relay/pkg/logger"
)

var (
	ErrInvalidMessageFormat = errors.New("invalid message format: missing required fields")
	ErrSenderMismatch       = errors.New("sender does not match authenticated identity")
	ErrStore                = errors.New("message store unavailable")
)

// Emitter delivers an event to every connection joined to a room.
type Emitter interface {
	Emit(room string, event models.EventType, payload interface{}) (int, error)
}

type RelayService struct {
	store   database.MessageRepository
	rooms   Emitter
	timeout time.Duration
}

func NewRelayService(store database.MessageRepository, rooms Emitter, timeout time.Duration) *RelayService {
	return &RelayService{
		store:   store,
		rooms:   rooms,
		timeout: timeout,
	}
}

// Relay validates, persists and then fans the message out to the sender's
// room and, when different, the recipient's room. Nothing is emitted unless
// the store accepted the write.
func (s *RelayService) Relay(ctx context.Context, msg *models.ChatMessage) (*models.PersistedMessage, error) {
	if msg == nil || msg.Sender == "" || msg.Recipient == "" || msg.Content == "" {
		metrics.MessagesRelayed.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidMessageFormat
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	saved, err := s.store.AppendMessage(ctx, msg)
	metrics.StoreLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MessagesRelayed.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	if _, err := s.rooms.Emit(saved.Sender, models.EventMessage, saved); err != nil {
		return saved, fmt.Errorf("emit to %s: %w", saved.Sender, err)
	}
	if saved.Recipient != saved.Sender {
		if _, err := s.rooms.Emit(saved.Recipient, models.EventMessage, saved); err != nil {
			return saved, fmt.Errorf("emit to %s: %w", saved.Recipient, err)
		}
	}

	metrics.MessagesRelayed.WithLabelValues("delivered").Inc()
	logger.Debug("Relayed message %s from %s to %s", saved.ID, saved.Sender, saved.Recipient)
	return saved, nil
}
