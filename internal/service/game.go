package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dwinston/pushpickup/internal/domain"
	domainerrors "github.com/dwinston/pushpickup/internal/errors"
	"github.com/dwinston/pushpickup/internal/id"
	"github.com/dwinston/pushpickup/internal/notify"
	"github.com/dwinston/pushpickup/internal/slug"
	"github.com/dwinston/pushpickup/internal/store"
)

const (
	maxLocationNameLength = 100
	maxNoteLengthOnAdd    = 250
	// Organizers get room to grow the note after creation (directions,
	// parking, what to bring).
	maxNoteLengthOnEdit = 1000
)

// GameService handles the game lifecycle: propose, edit, cancel, and the
// proposed-to-on transition.
type GameService struct {
	store      *store.Store
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewGameService creates a new game service.
func NewGameService(store *store.Store, dispatcher *notify.Dispatcher, logger *slog.Logger) *GameService {
	return &GameService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// LocationRequest is the game location payload.
type LocationRequest struct {
	Name      string  `json:"name" validate:"required"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
}

// GameRequest is the payload for creating or editing a game. Status is never
// client-supplied; it is derived from the requested player count.
type GameRequest struct {
	Type             string          `json:"type" validate:"required"`
	StartsAt         time.Time       `json:"starts_at" validate:"required,within_week"`
	UTCOffset        float64         `json:"utc_offset" validate:"utc_offset"`
	Location         LocationRequest `json:"location" validate:"required"`
	Note             string          `json:"note"`
	RequestedPlayers int             `json:"requested_players" validate:"min=0"`
}

// deriveStatus computes the game status from the requested player count:
// a game that needs nobody else is already on.
func deriveStatus(requestedPlayers int) domain.GameStatus {
	if requestedPlayers == 0 {
		return domain.GameOn
	}
	return domain.GameProposed
}

// checkPayloadLimits enforces the free-text size caps. These are payload
// limits, not validation failures, and map to 413.
func checkPayloadLimits(req GameRequest, maxNote int) error {
	if len(req.Location.Name) > maxLocationNameLength {
		return domainerrors.PayloadTooLarge("location name too long")
	}
	if len(req.Note) > maxNote {
		return domainerrors.PayloadTooLarge("game note too long")
	}
	return nil
}

// checkGameType verifies the type against the live game-type option so an
// admin's catalog edits apply without a restart.
func (s *GameService) checkGameType(ctx context.Context, gameType string) error {
	option, err := s.store.GetOption(ctx, "type")
	if err != nil {
		return fmt.Errorf("get game type option: %w", err)
	}
	if !option.Allows(gameType) {
		return domainerrors.Validationf("unknown game type %q", gameType)
	}
	return nil
}

// requester loads the calling user, translating a missing account to 401.
func (s *GameService) requester(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domainerrors.Unauthenticated("must be signed in")
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.Unauthenticated("must be signed in").WithCause(err)
	}
	return user, nil
}

// AddGame creates a new game with the requester as organizer.
func (s *GameService) AddGame(ctx context.Context, requesterID string, req GameRequest) (*domain.Game, error) {
	user, err := s.requester(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	req.Type = slug.Make(req.Type)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := checkPayloadLimits(req, maxNoteLengthOnAdd); err != nil {
		return nil, err
	}
	if err := s.checkGameType(ctx, req.Type); err != nil {
		return nil, err
	}

	gameID, err := id.Generate("game")
	if err != nil {
		return nil, fmt.Errorf("generate game ID: %w", err)
	}

	game := &domain.Game{
		ID:        gameID,
		Type:      req.Type,
		Status:    deriveStatus(req.RequestedPlayers),
		StartsAt:  req.StartsAt,
		UTCOffset: req.UTCOffset,
		Location: domain.Location{
			Name:     req.Location.Name,
			GeoPoint: domain.NewGeoPoint(req.Location.Longitude, req.Location.Latitude),
		},
		Note:      req.Note,
		Players:   []domain.Player{},
		Comments:  []domain.Comment{},
		Requested: domain.Requested{Players: req.RequestedPlayers},
		Creator:   domain.Creator{UserID: user.ID, Name: user.Name()},
	}

	if err := s.store.CreateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	s.logger.Info("game created",
		"game_id", gameID,
		"type", game.Type,
		"starts_at", game.StartsAt,
		"organizer", user.ID,
	)
	return game, nil
}

// EditGame updates a game's schedule, location, note, type, and requested
// player count. Only the organizer or an admin may edit. Players are notified
// about the fields that visibly changed.
func (s *GameService) EditGame(ctx context.Context, requesterID, gameID string, req GameRequest) (*domain.Game, error) {
	oldGame, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	user, err := s.requester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !oldGame.IsCreator(user.ID) && !user.IsAdmin {
		return nil, domainerrors.Forbidden("only the organizer may edit this game")
	}

	req.Type = slug.Make(req.Type)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := checkPayloadLimits(req, maxNoteLengthOnEdit); err != nil {
		return nil, err
	}
	if err := s.checkGameType(ctx, req.Type); err != nil {
		return nil, err
	}

	updated := &domain.Game{
		Timestamps: oldGame.Timestamps,
		ID:         oldGame.ID,
		Type:       req.Type,
		Status:     deriveStatus(req.RequestedPlayers),
		StartsAt:   req.StartsAt,
		UTCOffset:  req.UTCOffset,
		Location: domain.Location{
			Name:     req.Location.Name,
			GeoPoint: domain.NewGeoPoint(req.Location.Longitude, req.Location.Latitude),
		},
		Note: req.Note,
		// The roster is managed through its own operations and comments
		// are never edited here.
		Players:   oldGame.Players,
		Comments:  oldGame.Comments,
		Requested: domain.Requested{Players: req.RequestedPlayers},
		Creator:   oldGame.Creator,
	}

	changes := domain.Diff(oldGame, updated)

	// Every edit re-arms the organizer reminder; the next sweep picks the
	// game up again under its current schedule.
	updated.ReminderSent = false

	if err := s.store.UpdateGame(ctx, updated); err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}

	if !changes.Empty() {
		s.dispatcher.Publish(notify.Event{
			Kind:    notify.GameChanged,
			Game:    updated,
			ActorID: user.ID,
			Changes: changes,
		})
	}

	s.logger.Info("game edited",
		"game_id", gameID,
		"changed", changes.Fields(),
		"by", user.ID,
	)
	return updated, nil
}

// CancelGame removes a game permanently. Only the organizer or an admin may
// cancel. Players with verified emails are notified after the removal
// commits; the game ID is never reused.
func (s *GameService) CancelGame(ctx context.Context, requesterID, gameID string) error {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return err
	}

	user, err := s.requester(ctx, requesterID)
	if err != nil {
		return err
	}
	if !game.IsCreator(user.ID) && !user.IsAdmin {
		return domainerrors.Forbidden("only the organizer may cancel this game")
	}

	affected, err := s.store.DeleteGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if affected == 0 {
		return domainerrors.NotFound("game not found")
	}

	// The deleted document travels with the event; it is the only copy left.
	s.dispatcher.Publish(notify.Event{
		Kind: notify.GameCancelled,
		Game: game,
	})

	s.logger.Info("game cancelled", "game_id", gameID, "by", user.ID)
	return nil
}

// GetGame returns a single game.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*domain.Game, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		if domainerrors.Is(err, store.ErrGameNotFound) {
			return nil, domainerrors.NotFound("game not found")
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	return game, nil
}

// ListGames returns games ordered by start time with cursor pagination.
func (s *GameService) ListGames(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Game], error) {
	result, err := s.store.ListGamesPaginated(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return result, nil
}

// maybeMakeGameOn flips a proposed game to "on" once the roster reaches the
// requested player count. Runs as its own read-modify-write after roster
// changes; a missed flip is corrected by the next roster mutation.
func (s *GameService) maybeMakeGameOn(ctx context.Context, gameID string) (*domain.Game, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.ShouldTurnOn() {
		return game, nil
	}

	game, err = s.store.SetGameStatus(ctx, gameID, domain.GameOn)
	if err != nil {
		return nil, err
	}

	s.logger.Info("game is on", "game_id", gameID, "players", len(game.Players))
	return game, nil
}
