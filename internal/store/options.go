package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/dwinston/pushpickup/internal/domain"
)

const optionPrefix = "option:"

// GetOption retrieves the live value set for a game option, e.g. "type".
// Always read from the store, never cached: admins change legal values at runtime.
func (s *Store) GetOption(_ context.Context, name string) (*domain.GameOption, error) {
	key := []byte(optionPrefix + name)

	var opt domain.GameOption
	if err := s.get(key, &opt); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrOptionNotFound
		}
		return nil, fmt.Errorf("get option: %w", err)
	}

	return &opt, nil
}

// SetOption stores the value set for a game option.
func (s *Store) SetOption(_ context.Context, opt *domain.GameOption) error {
	opt.Touch()
	if opt.CreatedAt.IsZero() {
		opt.InitTimestamps()
	}

	key := []byte(optionPrefix + opt.Name)
	if err := s.set(key, opt); err != nil {
		return fmt.Errorf("set option: %w", err)
	}
	return nil
}

// EnsureDefaultOptions seeds the type and status options if absent.
// Called once at startup; existing values are left alone.
func (s *Store) EnsureDefaultOptions(ctx context.Context) error {
	defaults := []*domain.GameOption{
		{Name: "type", Values: domain.DefaultGameTypes},
		{Name: "status", Values: domain.DefaultGameStatuses},
	}

	for _, opt := range defaults {
		_, err := s.GetOption(ctx, opt.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrOptionNotFound) {
			return err
		}
		if err := s.SetOption(ctx, opt); err != nil {
			return err
		}
	}

	return nil
}
