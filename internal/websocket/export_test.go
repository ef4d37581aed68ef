package websocket

// Rooms returns the rooms the connection currently belongs to.
func (h *Hub) Rooms(connectionID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, 0, len(h.memberships[connectionID]))
	for room := range h.memberships[connectionID] {
		out = append(out, room)
	}
	return out
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
