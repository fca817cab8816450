package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/dwinston/pushpickup/internal/auth"
	"github.com/dwinston/pushpickup/internal/config"
	"github.com/dwinston/pushpickup/internal/logger"
	"github.com/dwinston/pushpickup/internal/mail"
	"github.com/dwinston/pushpickup/internal/service"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	mailer := do.MustInvoke[mail.Mailer](i)
	log := do.MustInvoke[*logger.Logger](i)

	from := fmt.Sprintf("%s <%s>", cfg.Server.Name, cfg.SMTP.From)
	return service.NewAuthService(storeHandle.Store, sessionService, mailer, cfg.App.BaseURL, from, log.Logger), nil
}

// ProvideGameService provides the game lifecycle service.
func ProvideGameService(i do.Injector) (*service.GameService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	dispatcherHandle := do.MustInvoke[*DispatcherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGameService(storeHandle.Store, dispatcherHandle.Dispatcher, log.Logger), nil
}

// ProvideRosterService provides the roster service.
func ProvideRosterService(i do.Injector) (*service.RosterService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gameService := do.MustInvoke[*service.GameService](i)
	dispatcherHandle := do.MustInvoke[*DispatcherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRosterService(storeHandle.Store, gameService, dispatcherHandle.Dispatcher, log.Logger), nil
}

// CommentServiceHandle wraps the comment service with shutdown capability
// for its per-user rate limiter.
type CommentServiceHandle struct {
	*service.CommentService
}

// Shutdown implements do.Shutdownable.
func (h *CommentServiceHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideCommentService provides the comment service.
func ProvideCommentService(i do.Injector) (*CommentServiceHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gameService := do.MustInvoke[*service.GameService](i)
	dispatcherHandle := do.MustInvoke[*DispatcherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewCommentService(storeHandle.Store, gameService, dispatcherHandle.Dispatcher, log.Logger)
	return &CommentServiceHandle{CommentService: svc}, nil
}

// ProvideOptionsService provides the game option catalog service.
func ProvideOptionsService(i do.Injector) (*service.OptionsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOptionsService(storeHandle.Store, log.Logger), nil
}

// ProvideFeedbackService provides the user feedback service.
func ProvideFeedbackService(i do.Injector) (*service.FeedbackService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	dispatcherHandle := do.MustInvoke[*DispatcherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedbackService(storeHandle.Store, dispatcherHandle.Dispatcher, log.Logger), nil
}
