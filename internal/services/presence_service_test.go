package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"chat-relay/internal/models"
	"chat-relay/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	events   []models.EventType
	payloads []interface{}
	err      error
}

func (b *recordingBroadcaster) Broadcast(event models.EventType, payload interface{}) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	b.events = append(b.events, event)
	b.payloads = append(b.payloads, payload)
	return 1, nil
}

func TestPresence_BroadcastsCurrentSnapshot(t *testing.T) {
	registry := session.NewRegistry()
	registry.Register("c1", "alice")
	registry.Register("c2", "bob")
	registry.Identify("c1", "Alice")

	clients := &recordingBroadcaster{}
	presence := NewPresenceService(registry, clients)

	presence.Broadcast()
	registry.Unregister("c1")
	presence.Broadcast()

	require.Len(t, clients.events, 2)
	assert.Equal(t, models.EventOnlineUsers, clients.events[0])
	assert.Equal(t, []models.OnlineEntry{{UserID: "alice", Username: "Alice"}, {UserID: "bob"}}, clients.payloads[0])
	assert.Equal(t, []models.OnlineEntry{{UserID: "bob"}}, clients.payloads[1])
}

func TestPresence_BroadcastErrorIsSwallowed(t *testing.T) {
	presence := NewPresenceService(session.NewRegistry(), &recordingBroadcaster{err: errors.New("encode")})

	assert.NotPanics(t, presence.Broadcast)
}

// stallingBroadcaster holds its first push until release is closed.
type stallingBroadcaster struct {
	mu       sync.Mutex
	calls    int
	entered  chan struct{}
	release  chan struct{}
	payloads []interface{}
}

func (b *stallingBroadcaster) Broadcast(event models.EventType, payload interface{}) (int, error) {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()

	if first {
		close(b.entered)
		<-b.release
	}

	b.mu.Lock()
	b.payloads = append(b.payloads, payload)
	b.mu.Unlock()
	return 1, nil
}

func TestPresence_LastPushReflectsLatestRoster(t *testing.T) {
	registry := session.NewRegistry()
	registry.Register("c1", "alice")
	registry.Register("c2", "bob")

	clients := &stallingBroadcaster{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	presence := NewPresenceService(registry, clients)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		presence.Broadcast()
	}()
	<-clients.entered

	registry.Unregister("c1")
	wg.Add(1)
	go func() {
		defer wg.Done()
		presence.Broadcast()
	}()

	time.Sleep(20 * time.Millisecond)
	close(clients.release)
	wg.Wait()

	clients.mu.Lock()
	defer clients.mu.Unlock()
	require.Len(t, clients.payloads, 2)
	assert.Equal(t, registry.Snapshot(), clients.payloads[1])
	assert.Equal(t, []models.OnlineEntry{{UserID: "bob"}}, clients.payloads[1])
}
