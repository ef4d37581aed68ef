package websocket

import (
	"sync"

	"chat-relay/internal/metrics"
	"chat-relay/internal/models"
	"chat-relay/pkg/logger"
)

// Hub owns every live connection and the rooms they joined. Room names are
// identities: a connection's own room is named after the identity it was
// admitted with. Rooms exist only while they have members.
type Hub struct {
	mu          sync.Mutex
	clients     map[string]*Client
	rooms       map[string]map[string]*Client
	memberships map[string]map[string]struct{}
	closed      bool
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		rooms:       make(map[string]map[string]*Client),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Add makes the client reachable by Broadcast. It reports false once the hub
// has been shut down.
func (h *Hub) Add(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[client.id] = client
	metrics.ConnectionsActive.Set(float64(len(h.clients)))
	return true
}

// Join adds the connection to room. Joining twice is harmless; joining with
// an unknown connection id reports false.
func (h *Hub) Join(connectionID, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connectionID]
	if !ok {
		return false
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[connectionID] = client

	joined, ok := h.memberships[connectionID]
	if !ok {
		joined = make(map[string]struct{})
		h.memberships[connectionID] = joined
	}
	joined[room] = struct{}{}
	return true
}

// Emit queues the event for every member of room and returns how many
// members it reached. An empty room is not an error. Frames are queued under
// the hub lock so each member sees a room's emits in call order.
func (h *Hub) Emit(room string, event models.EventType, payload interface{}) (int, error) {
	frame, err := models.NewEnvelope(event, payload)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for _, client := range h.rooms[room] {
		if h.deliverLocked(client, frame) {
			delivered++
		}
	}
	return delivered, nil
}

// Broadcast queues the event for every live connection.
func (h *Hub) Broadcast(event models.EventType, payload interface{}) (int, error) {
	frame, err := models.NewEnvelope(event, payload)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for _, client := range h.clients {
		if h.deliverLocked(client, frame) {
			delivered++
		}
	}
	return delivered, nil
}

// Send queues the event for a single connection.
func (h *Hub) Send(connectionID string, event models.EventType, payload interface{}) bool {
	frame, err := models.NewEnvelope(event, payload)
	if err != nil {
		logger.Error("Error marshaling %s event: %v", event, err)
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connectionID]
	if !ok {
		return false
	}
	return h.deliverLocked(client, frame)
}

// Remove drops the connection from every room it joined and closes its send
// queue. Removing an unknown or already removed connection is a no-op.
func (h *Hub) Remove(connectionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connectionID]
	if !ok {
		return false
	}
	h.removeLocked(client)
	return true
}

// Shutdown closes every connection's send queue and refuses new clients.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, client := range h.clients {
		h.removeLocked(client)
	}
}

// deliverLocked queues frame without blocking. A client whose queue is full
// is too slow to keep up and gets evicted.
func (h *Hub) deliverLocked(client *Client, frame []byte) bool {
	select {
	case client.send <- frame:
		return true
	default:
		logger.Warn("Send queue full for connection %s, dropping it", client.id)
		h.removeLocked(client)
		return false
	}
}

func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client.id]; !ok {
		return
	}
	delete(h.clients, client.id)
	for room := range h.memberships[client.id] {
		members := h.rooms[room]
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.memberships, client.id)
	close(client.send)
	metrics.ConnectionsActive.Set(float64(len(h.clients)))
}
