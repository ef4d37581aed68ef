package database

import (
	"context"
	"errors"

	"chat-relay/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
}

// MessageRepository is the append-only message store. AppendMessage assigns
// the id and timestamp; records are never rewritten by the relay.
type MessageRepository interface {
	AppendMessage(ctx context.Context, msg *models.ChatMessage) (*models.PersistedMessage, error)
	// QueryConversation returns messages exchanged between a and b in either
	// direction, oldest first. A non-empty filter keeps only messages whose
	// content contains it, ignoring case.
	QueryConversation(ctx context.Context, a, b, filter string) ([]*models.PersistedMessage, error)
}

type Database interface {
	UserRepository
	MessageRepository
	Ping(ctx context.Context) error
	Close() error
}
