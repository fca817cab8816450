package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dwinston/pushpickup/internal/domain"
	domainerrors "github.com/dwinston/pushpickup/internal/errors"
	"github.com/dwinston/pushpickup/internal/notify"
	"github.com/dwinston/pushpickup/internal/ratelimit"
	"github.com/dwinston/pushpickup/internal/store"
)

// CommentService handles the discussion thread on a game. Commenters need
// not be on the roster; people often ask about a game before joining.
type CommentService struct {
	store      *store.Store
	games      *GameService
	dispatcher *notify.Dispatcher
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
}

// NewCommentService creates a new comment service. Posting is rate limited
// per user to keep notification volume sane.
func NewCommentService(store *store.Store, games *GameService, dispatcher *notify.Dispatcher, logger *slog.Logger) *CommentService {
	return &CommentService{
		store:      store,
		games:      games,
		dispatcher: dispatcher,
		limiter:    ratelimit.New(0.2, 5), // A burst of five, then one every 5s
		logger:     logger,
	}
}

// Stop releases the rate limiter's cleanup goroutine.
func (s *CommentService) Stop() {
	s.limiter.Stop()
}

// AddComment appends a comment to the game's thread and notifies players.
func (s *CommentService) AddComment(ctx context.Context, requesterID, gameID, message string) (*domain.Comment, error) {
	user, err := s.games.requester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if message == "" {
		return nil, domainerrors.Validation("comment message must be non-empty")
	}
	if !s.limiter.Allow(user.ID) {
		return nil, domainerrors.RateLimited("too many comments, slow down")
	}

	comment := domain.Comment{
		UserID:    user.ID,
		UserName:  user.Name(),
		Message:   message,
		Timestamp: time.Now(),
	}

	game, err := s.store.PushComment(ctx, gameID, comment)
	if err != nil {
		if domainerrors.Is(err, store.ErrGameNotFound) {
			return nil, domainerrors.NotFound("game not found")
		}
		return nil, fmt.Errorf("add comment: %w", err)
	}

	s.dispatcher.Publish(notify.Event{
		Kind:    notify.CommentAdded,
		Game:    game,
		ActorID: user.ID,
		Comment: &comment,
	})

	s.logger.Info("comment added", "game_id", gameID, "user_id", user.ID)
	return &comment, nil
}

// RemoveComment deletes a comment matched by full structural equality.
// The author, the organizer, and admins may remove; anyone else gets false
// rather than an error, matching the idempotent no-op convention.
func (s *CommentService) RemoveComment(ctx context.Context, requesterID, gameID string, comment domain.Comment) (bool, error) {
	user, err := s.games.requester(ctx, requesterID)
	if err != nil {
		return false, err
	}

	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return false, err
	}

	if user.ID != comment.UserID && !game.IsCreator(user.ID) && !user.IsAdmin {
		return false, nil
	}

	removed, err := s.store.PullComment(ctx, gameID, comment)
	if err != nil {
		return false, fmt.Errorf("remove comment: %w", err)
	}

	if removed {
		s.logger.Info("comment removed", "game_id", gameID, "by", user.ID)
	}
	return removed, nil
}
