package service

import (
	"context"
	"log/slog"

	domainerrors "github.com/dwinston/pushpickup/internal/errors"
	"github.com/dwinston/pushpickup/internal/notify"
	"github.com/dwinston/pushpickup/internal/store"
)

// FeedbackService forwards user feedback to the support inbox.
type FeedbackService struct {
	store      *store.Store
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(store *store.Store, dispatcher *notify.Dispatcher, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// FeedbackRequest is the feedback payload.
type FeedbackRequest struct {
	Type    string `json:"type" validate:"required,max=50"`
	Message string `json:"message" validate:"required,max=5000"`
}

// SendFeedback queues feedback for delivery to support. Works signed in or
// anonymous; a signed-in sender's name and address become the reply-to.
func (s *FeedbackService) SendFeedback(ctx context.Context, requesterID string, req FeedbackRequest) error {
	if err := validate.Validate(req); err != nil {
		return err
	}

	event := notify.Event{
		Kind:            notify.Feedback,
		FeedbackKind:    req.Type,
		FeedbackMessage: req.Message,
	}

	if requesterID != "" {
		user, err := s.store.GetUser(ctx, requesterID)
		if err != nil && !domainerrors.Is(err, store.ErrUserNotFound) {
			return err
		}
		if user != nil {
			event.ActorID = user.ID
			event.ActorName = user.DisplayName
			event.FeedbackFrom = user.PrimaryEmail()
		}
	}

	s.dispatcher.Publish(event)

	s.logger.Info("feedback sent", "type", req.Type, "user_id", requesterID)
	return nil
}
