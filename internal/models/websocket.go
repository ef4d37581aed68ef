package models

import "encoding/json"

type EventType string

// Client to server.
const (
	EventIdentify EventType = "identify"
	EventJoin     EventType = "join"
	EventPing     EventType = "ping"
)

// Server to client.
const (
	EventOnlineUsers EventType = "onlineUsers"
	EventPong        EventType = "pong"
)

// EventMessage travels both ways: a ChatMessage inbound, a PersistedMessage outbound.
const EventMessage EventType = "message"

// Envelope is the frame exchanged over the realtime connection.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope encodes payload as the envelope data. A nil payload leaves
// data empty.
func NewEnvelope(event EventType, payload interface{}) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}
