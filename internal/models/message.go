package models

import "time"

// ChatMessage is a message accepted for relay but not yet persisted.
type ChatMessage struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
}

// PersistedMessage is the record returned by the store. Timestamp is assigned
// by the store at append time.
type PersistedMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type OnlineEntry struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}
