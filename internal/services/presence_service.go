package services

import (
	"sync"

	"chat-relay/internal/metrics"
	"chat-relay/internal/models"
	"chat-relay/internal/session"
	"chat-relay/pkg/logger"
)

// Broadcaster delivers an event to every live connection.
type Broadcaster interface {
	Broadcast(event models.EventType, payload interface{}) (int, error)
}

type PresenceService struct {
	// mu orders pushes so the last frame a client sees is the latest roster.
	mu       sync.Mutex
	registry *session.Registry
	clients  Broadcaster
}

func NewPresenceService(registry *session.Registry, clients Broadcaster) *PresenceService {
	return &PresenceService{
		registry: registry,
		clients:  clients,
	}
}

// Broadcast pushes the current roster to every connected client. Delivery is
// best effort per connection.
func (s *PresenceService) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.registry.Snapshot()
	delivered, err := s.clients.Broadcast(models.EventOnlineUsers, snapshot)
	if err != nil {
		logger.Error("Error broadcasting online users: %v", err)
		return
	}
	metrics.PresenceBroadcasts.Inc()
	logger.Debug("Pushed %d online users to %d connections", len(snapshot), delivered)
}
