package users

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/stockpile-ims/stockpile/internal/shared"
)

// Service handles the user catalog and credential checks.
type Service struct {
	users  map[string]User
	logger *slog.Logger
}

// NewService builds an empty user catalog. Call Load to hydrate it from disk.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: make(map[string]User), logger: logger}
}

// Add hashes the password and stores a new account.
func (s *Service) Add(ctx context.Context, username, password, role string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || strings.TrimSpace(role) == "" {
		return fmt.Errorf("users: add: username, password, and role are required: %w", shared.ErrValidation)
	}
	if _, ok := s.users[username]; ok {
		return fmt.Errorf("users: user %s: %w", username, shared.ErrDuplicateKey)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("users: hash password: %w", err)
	}
	s.users[username] = User{Username: username, PasswordHash: string(hash), Role: strings.TrimSpace(role)}
	s.logger.Info("user added", slog.String("username", username), slog.String("role", role))
	return nil
}

// Find returns the account for a username.
func (s *Service) Find(ctx context.Context, username string) (User, error) {
	user, ok := s.users[username]
	if !ok {
		return User{}, fmt.Errorf("users: user %s: %w", username, shared.ErrNotFound)
	}
	return user, nil
}

// Authenticate verifies a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, ok := s.users[username]
	if !ok {
		return User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// All lists every account ordered by username.
func (s *Service) All(ctx context.Context) []User {
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// EnsureDefaultAdmin bootstraps the given admin account when it does not
// exist yet, so a fresh installation is never locked out.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	if _, ok := s.users[username]; ok {
		return nil
	}
	s.logger.Info("bootstrapping default admin user", slog.String("username", username))
	return s.Add(ctx, username, password, "Admin")
}
