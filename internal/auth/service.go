package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-relay/internal/database"
	"chat-relay/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service is the credential issuer: it owns signup and login and is the only
// producer of tokens the relay accepts.
type Service struct {
	users     database.UserRepository
	tokens    *TokenManager
	expiresIn time.Duration
}

func NewService(users database.UserRepository, tokens *TokenManager, expiresIn time.Duration) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		expiresIn: expiresIn,
	}
}

func (s *Service) Signup(ctx context.Context, req *models.CredentialsRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.users.CreateUser(ctx, req.Username, string(hash)); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *Service) Login(ctx context.Context, req *models.CredentialsRequest) (*models.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.LoginResponse{
		Token:  token,
		UserID: user.ID,
	}, nil
}

func (s *Service) IssueToken(identity string) (string, error) {
	return s.tokens.Issue(identity, s.expiresIn)
}
