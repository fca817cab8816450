package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dwinston/pushpickup/internal/domain"
	domainerrors "github.com/dwinston/pushpickup/internal/errors"
	"github.com/dwinston/pushpickup/internal/slug"
	"github.com/dwinston/pushpickup/internal/store"
)

// OptionsService manages the game option catalogs (game types, statuses).
// Options are read live on every validation, so admin edits apply
// immediately without a restart.
type OptionsService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewOptionsService creates a new options service.
func NewOptionsService(store *store.Store, logger *slog.Logger) *OptionsService {
	return &OptionsService{store: store, logger: logger}
}

// GetOption returns a named option catalog.
func (s *OptionsService) GetOption(ctx context.Context, name string) (*domain.GameOption, error) {
	option, err := s.store.GetOption(ctx, name)
	if err != nil {
		if domainerrors.Is(err, store.ErrOptionNotFound) {
			return nil, domainerrors.NotFoundf("option %q not found", name)
		}
		return nil, fmt.Errorf("get option: %w", err)
	}
	return option, nil
}

// UpdateOption replaces an option catalog. Admin only. Values are slugged
// so "Ultimate Frisbee" and "ultimate-frisbee" are the same game type.
func (s *OptionsService) UpdateOption(ctx context.Context, requesterID, name string, values []string) (*domain.GameOption, error) {
	if requesterID == "" {
		return nil, domainerrors.Unauthenticated("must be signed in")
	}
	user, err := s.store.GetUser(ctx, requesterID)
	if err != nil {
		return nil, domainerrors.Unauthenticated("must be signed in").WithCause(err)
	}
	if !user.IsAdmin {
		return nil, domainerrors.Forbidden("only admins may edit options")
	}

	if len(values) == 0 {
		return nil, domainerrors.Validation("option values must be non-empty")
	}

	slugged := make([]string, 0, len(values))
	seen := make(map[string]bool)
	for _, value := range values {
		v := slug.Make(value)
		if v == "" {
			return nil, domainerrors.Validationf("invalid option value %q", value)
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		slugged = append(slugged, v)
	}

	option := &domain.GameOption{Name: name, Values: slugged}
	if err := s.store.SetOption(ctx, option); err != nil {
		return nil, fmt.Errorf("set option: %w", err)
	}

	s.logger.Info("option updated", "name", name, "values", slugged, "by", user.ID)
	return option, nil
}

// EnsureDefaults seeds the default catalogs on first boot without
// overwriting admin edits.
func (s *OptionsService) EnsureDefaults(ctx context.Context) error {
	return s.store.EnsureDefaultOptions(ctx)
}
