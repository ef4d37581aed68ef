package database

import (
	"context"
	"errors"
	"fmt"

	"chat-relay/internal/models"
	"chat-relay/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS messages (
	id        TEXT PRIMARY KEY,
	sender    TEXT NOT NULL,
	recipient TEXT NOT NULL,
	content   TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	read      BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS messages_participants_idx ON messages (sender, recipient, timestamp);
`

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

// EnsureSchema creates the tables the relay and the credential issuer need.
func (db *PostgresDB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// User Repository Implementation
func (db *PostgresDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user, nil
}

func (db *PostgresDB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, username, password_hash, created_at`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, uuid.NewString(), username, passwordHash).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Message Repository Implementation
func (db *PostgresDB) AppendMessage(ctx context.Context, msg *models.ChatMessage) (*models.PersistedMessage, error) {
	query := `
		INSERT INTO messages (id, sender, recipient, content, timestamp, read)
		VALUES ($1, $2, $3, $4, NOW(), FALSE)
		RETURNING id, sender, recipient, content, timestamp, read`

	saved := &models.PersistedMessage{}
	err := db.pool.QueryRow(ctx, query, uuid.NewString(), msg.Sender, msg.Recipient, msg.Content).Scan(
		&saved.ID, &saved.Sender, &saved.Recipient, &saved.Content, &saved.Timestamp, &saved.Read,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return saved, nil
}

func (db *PostgresDB) QueryConversation(ctx context.Context, a, b, filter string) ([]*models.PersistedMessage, error) {
	query := `
		SELECT id, sender, recipient, content, timestamp, read
		FROM messages
		WHERE ((sender = $1 AND recipient = $2) OR (sender = $2 AND recipient = $1))
		  AND ($3 = '' OR strpos(lower(content), lower($3)) > 0)
		ORDER BY timestamp ASC, id ASC`

	rows, err := db.pool.Query(ctx, query, a, b, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*models.PersistedMessage{}
	for rows.Next() {
		msg := &models.PersistedMessage{}
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Recipient, &msg.Content, &msg.Timestamp, &msg.Read); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
