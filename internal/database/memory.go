package database

import (
	"context"
	"strings"
	"sync"
	"time"

	"chat-relay/internal/models"

	"github.com/google/uuid"
)

// MemoryDB keeps users and messages in process memory. It backs local
// development runs without DATABASE_URL and the test suites.
type MemoryDB struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	messages []*models.PersistedMessage
	now      func() time.Time
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users: make(map[string]*models.User),
		now:   time.Now,
	}
}

func (db *MemoryDB) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (db *MemoryDB) Close() error {
	return nil
}

func (db *MemoryDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	user, ok := db.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (db *MemoryDB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.users[username]; exists {
		return nil, ErrDuplicate
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    db.now(),
	}
	db.users[username] = user
	cp := *user
	return &cp, nil
}

func (db *MemoryDB) AppendMessage(ctx context.Context, msg *models.ChatMessage) (*models.PersistedMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	saved := &models.PersistedMessage{
		ID:        uuid.NewString(),
		Sender:    msg.Sender,
		Recipient: msg.Recipient,
		Content:   msg.Content,
		Timestamp: db.now(),
	}
	db.messages = append(db.messages, saved)
	cp := *saved
	return &cp, nil
}

func (db *MemoryDB) QueryConversation(ctx context.Context, a, b, filter string) ([]*models.PersistedMessage, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	filter = strings.ToLower(filter)
	out := []*models.PersistedMessage{}
	// Appends happen in timestamp order, so slice order is already ascending.
	for _, msg := range db.messages {
		between := (msg.Sender == a && msg.Recipient == b) || (msg.Sender == b && msg.Recipient == a)
		if !between {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(msg.Content), filter) {
			continue
		}
		cp := *msg
		out = append(out, &cp)
	}
	return out, nil
}
