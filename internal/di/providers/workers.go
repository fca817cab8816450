package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/dwinston/pushpickup/internal/config"
	"github.com/dwinston/pushpickup/internal/logger"
	"github.com/dwinston/pushpickup/internal/service"
)

// ReminderJobHandle wraps the organizer reminder job with shutdown capability.
type ReminderJobHandle struct {
	*service.ReminderJob
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ReminderJobHandle) Shutdown() error {
	h.cancel()
	h.Stop()
	return nil
}

// ProvideReminderJob provides the periodic organizer reminder sweep.
func ProvideReminderJob(i do.Injector) (*ReminderJobHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	dispatcherHandle := do.MustInvoke[*DispatcherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	job := service.NewReminderJob(
		storeHandle.Store,
		dispatcherHandle.Dispatcher,
		cfg.Notify.ReminderLead,
		cfg.Notify.ReminderSweepInterval,
		log.Logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx)

	log.Info("Reminder job started",
		"lead", cfg.Notify.ReminderLead,
		"sweep_interval", cfg.Notify.ReminderSweepInterval,
	)

	return &ReminderJobHandle{
		ReminderJob: job,
		cancel:      cancel,
	}, nil
}

// CleanupJobHandle wraps the session cleanup job with shutdown capability.
type CleanupJobHandle struct {
	*service.CleanupJob
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CleanupJobHandle) Shutdown() error {
	h.cancel()
	h.Stop()
	return nil
}

// ProvideCleanupJob provides the periodic expired session cleanup.
func ProvideCleanupJob(i do.Injector) (*CleanupJobHandle, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	job := service.NewCleanupJob(sessionService, 1*time.Hour, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx)

	log.Info("Session cleanup job started")

	return &CleanupJobHandle{
		CleanupJob: job,
		cancel:     cancel,
	}, nil
}
