// Package session tracks which connections are currently admitted and the
// display name each one announced.
package session

import (
	"sync"

	"chat-relay/internal/models"
	"chat-relay/pkg/logger"
)

type entry struct {
	connectionID string
	identity     string
	displayName  string
}

// Registry is the process-wide table of live connections. Entries keep
// registration order, one per connection.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	index   map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]*entry)}
}

// Register records connectionID as belonging to identity. Registering an id
// twice keeps its position and overwrites the identity.
func (r *Registry) Register(connectionID, identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.index[connectionID]; ok {
		e.identity = identity
		return
	}
	e := &entry{connectionID: connectionID, identity: identity}
	r.entries = append(r.entries, e)
	r.index[connectionID] = e
}

// Identify sets the display name of a registered connection. It reports
// false, and changes nothing, when the connection is unknown.
func (r *Registry) Identify(connectionID, displayName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.index[connectionID]
	if !ok {
		logger.Warn("identify for unregistered connection %s ignored", connectionID)
		return false
	}
	e.displayName = displayName
	return true
}

// Unregister removes the connection. It reports whether anything was removed.
func (r *Registry) Unregister(connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.index[connectionID]
	if !ok {
		return false
	}
	delete(r.index, connectionID)
	for i, candidate := range r.entries {
		if candidate == e {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot returns the current roster in registration order.
func (r *Registry) Snapshot() []models.OnlineEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.OnlineEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, models.OnlineEntry{UserID: e.identity, Username: e.displayName})
	}
	return out
}
