// Package di provides dependency injection configuration for the Push Pickup server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/dwinston/pushpickup/internal/auth"
	"github.com/dwinston/pushpickup/internal/config"
	"github.com/dwinston/pushpickup/internal/di/providers"
	"github.com/dwinston/pushpickup/internal/logger"
	"github.com/dwinston/pushpickup/internal/mail"
	"github.com/dwinston/pushpickup/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Mail and notifications
	do.Provide(injector, providers.ProvideMailer)
	do.Provide(injector, providers.ProvideDispatcher)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideGameService)
	do.Provide(injector, providers.ProvideRosterService)
	do.Provide(injector, providers.ProvideCommentService)
	do.Provide(injector, providers.ProvideOptionsService)
	do.Provide(injector, providers.ProvideFeedbackService)

	// Workers
	do.Provide(injector, providers.ProvideReminderJob)
	do.Provide(injector, providers.ProvideCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[mail.Mailer](injector)
	_ = do.MustInvoke[*providers.DispatcherHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.GameService](injector)
	_ = do.MustInvoke[*service.RosterService](injector)
	_ = do.MustInvoke[*providers.CommentServiceHandle](injector)
	_ = do.MustInvoke[*service.OptionsService](injector)
	_ = do.MustInvoke[*service.FeedbackService](injector)

	// Workers
	_ = do.MustInvoke[*providers.ReminderJobHandle](injector)
	_ = do.MustInvoke[*providers.CleanupJobHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
