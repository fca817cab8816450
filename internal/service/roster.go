package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dwinston/pushpickup/internal/domain"
	domainerrors "github.com/dwinston/pushpickup/internal/errors"
	"github.com/dwinston/pushpickup/internal/notify"
	"github.com/dwinston/pushpickup/internal/store"
)

// RosterService manages who is playing in a game: joining, adding friends,
// renaming entries, and leaving.
type RosterService struct {
	store      *store.Store
	games      *GameService
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewRosterService creates a new roster service.
func NewRosterService(store *store.Store, games *GameService, dispatcher *notify.Dispatcher, logger *slog.Logger) *RosterService {
	return &RosterService{
		store:      store,
		games:      games,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// AddSelf adds the requester to the game's roster. Returns false without
// error when they are already on it, so a double-tap on the join button is
// harmless. The display name defaults to the account name.
func (s *RosterService) AddSelf(ctx context.Context, requesterID, gameID, name string) (bool, error) {
	user, err := s.games.requester(ctx, requesterID)
	if err != nil {
		return false, err
	}

	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return false, err
	}
	if game.HasPlayerUser(user.ID) {
		return false, nil
	}

	if name == "" {
		name = user.Name()
	}

	player := domain.Player{UserID: user.ID, Name: name, RSVP: domain.RSVPIn}
	if _, err := s.store.PushPlayer(ctx, gameID, player); err != nil {
		return false, fmt.Errorf("add player: %w", err)
	}

	game, err = s.games.maybeMakeGameOn(ctx, gameID)
	if err != nil {
		return false, fmt.Errorf("check game status: %w", err)
	}

	s.dispatcher.Publish(notify.Event{
		Kind:      notify.PlayerJoined,
		Game:      game,
		ActorID:   user.ID,
		ActorName: name,
	})

	s.logger.Info("player joined", "game_id", gameID, "user_id", user.ID)
	return true, nil
}

// AddFriends adds roster entries for friends the requester is bringing.
// Friends have no account of their own; their entries carry the requester's
// ID as sponsor so leaving takes them along.
func (s *RosterService) AddFriends(ctx context.Context, requesterID, gameID string, names []string) (*domain.Game, error) {
	user, err := s.games.requester(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, domainerrors.Validation("at least one friend name is required")
	}
	for _, name := range names {
		if name == "" {
			return nil, domainerrors.Validation("friend names must be non-empty")
		}
	}

	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return nil, err
	}

	for _, name := range names {
		player := domain.Player{FriendID: user.ID, Name: name, RSVP: domain.RSVPIn}
		if _, err := s.store.PushPlayer(ctx, gameID, player); err != nil {
			return nil, fmt.Errorf("add friend: %w", err)
		}
	}

	game, err := s.games.maybeMakeGameOn(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("check game status: %w", err)
	}

	s.dispatcher.Publish(notify.Event{
		Kind:        notify.PlayerJoined,
		Game:        game,
		ActorID:     user.ID,
		ActorName:   user.Name(),
		FriendCount: len(names),
	})

	s.logger.Info("friends added",
		"game_id", gameID,
		"user_id", user.ID,
		"count", len(names),
	)
	return game, nil
}

// RenamePlayer changes the display name on the first roster entry the
// requester added under oldName.
func (s *RosterService) RenamePlayer(ctx context.Context, requesterID, gameID, oldName, newName string) (*domain.Game, error) {
	user, err := s.games.requester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if oldName == "" || newName == "" {
		return nil, domainerrors.Validation("player names must be non-empty")
	}

	game, err := s.store.RenamePlayer(ctx, gameID, user.ID, oldName, newName)
	if err != nil {
		if domainerrors.Is(err, store.ErrGameNotFound) {
			return nil, domainerrors.NotFound("game not found")
		}
		return nil, fmt.Errorf("rename player: %w", err)
	}
	return game, nil
}

// PullPlayer removes the requester's roster entries carrying the given name.
// If the requester added two entries under the same name, both are removed;
// the client warns before adding a duplicate name.
func (s *RosterService) PullPlayer(ctx context.Context, requesterID, gameID, name string) (*domain.Game, error) {
	user, err := s.games.requester(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	game, _, err := s.store.PullPlayers(ctx, gameID, func(p domain.Player) bool {
		return p.UserID == user.ID && p.Name == name
	})
	if err != nil {
		if domainerrors.Is(err, store.ErrGameNotFound) {
			return nil, domainerrors.NotFound("game not found")
		}
		return nil, fmt.Errorf("pull player: %w", err)
	}
	return game, nil
}

// LeaveGame removes the requester and every account-less friend they brought.
// The friend count for the organizer's notification is computed from the
// roster before the pull; the store reports affected documents, not removed
// entries.
func (s *RosterService) LeaveGame(ctx context.Context, requesterID, gameID string) error {
	user, err := s.games.requester(ctx, requesterID)
	if err != nil {
		return err
	}

	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	numFriends := game.FriendsOf(user.ID)

	_, _, err = s.store.PullPlayers(ctx, gameID, func(p domain.Player) bool {
		return p.UserID == user.ID
	})
	if err != nil {
		return fmt.Errorf("remove player: %w", err)
	}

	game, _, err = s.store.PullPlayers(ctx, gameID, func(p domain.Player) bool {
		return p.FriendID == user.ID && p.UserID == ""
	})
	if err != nil {
		return fmt.Errorf("remove friends: %w", err)
	}

	name := user.Name()
	if user.DisplayName == "" {
		name = "Someone"
	}

	s.dispatcher.Publish(notify.Event{
		Kind:        notify.PlayerLeft,
		Game:        game,
		ActorID:     user.ID,
		ActorName:   name,
		FriendCount: numFriends,
	})

	s.logger.Info("player left",
		"game_id", gameID,
		"user_id", user.ID,
		"friends_removed", numFriends,
	)
	return nil
}
