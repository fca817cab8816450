package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwinston/pushpickup/internal/domain"
)

const (
	userPrefix           = "user:"
	sessionPrefix        = "session:"
	sessionByUserPrefix  = "idx:sessions:user:"  // For listing user sessions
	sessionByTokenPrefix = "idx:sessions:token:" // For refresh token lookups
)

// normalizeEmail lowercases and trims an address for index lookups.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// initUsers initializes the Users entity on the store.
// Every address a user carries is indexed case-insensitively, so login and
// notification lookups work against any of them.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, userPrefix).
		WithIndexTransform("email",
			func(u *domain.User) []string {
				keys := make([]string, 0, len(u.Emails))
				for _, e := range u.Emails {
					keys = append(keys, normalizeEmail(e.Address))
				}
				return keys
			},
			normalizeEmail, // Transform lookups to be case-insensitive
		).
		WithIndex("verify_token", func(u *domain.User) []string {
			if u.VerificationToken == "" {
				return nil
			}
			return []string{u.VerificationToken}
		})
}

// CreateUser creates a new user account.
// Fails if the ID or any of the user's addresses is already taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	user.InitTimestamps()

	err := s.Users.Create(ctx, user.ID, user)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAlreadyExists) {
		if strings.Contains(err.Error(), "index email") {
			return ErrEmailExists
		}
		return ErrUserExists
	}
	return fmt.Errorf("create user: %w", err)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUsersByIDs retrieves multiple users, skipping any missing IDs.
// Used for resolving notification recipients; a deleted account is not an error.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.GetUser(ctx, id)
		if errors.Is(err, ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// GetUserByEmail retrieves a user by any of their email addresses.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "email", email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	return user, nil
}

// GetUserByVerificationToken retrieves a user by a pending verification token.
func (s *Store) GetUserByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "verify_token", token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user by verification token: %w", err)
	}
	return user, nil
}

// UpdateUser updates an existing user, keeping email indexes in sync.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	user.Touch()

	err := s.Users.Update(ctx, user.ID, user)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrUserNotFound
	}
	if errors.Is(err, ErrAlreadyExists) {
		return ErrEmailExists
	}
	return fmt.Errorf("update user: %w", err)
}

// ListUsers returns all user accounts.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for user, err := range s.Users.List(ctx) {
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
