package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/dwinston/pushpickup/internal/config"
	"github.com/dwinston/pushpickup/internal/logger"
	"github.com/dwinston/pushpickup/internal/mail"
	"github.com/dwinston/pushpickup/internal/notify"
)

// DispatcherHandle wraps the notification dispatcher with its context for
// lifecycle management. Shutdown drains the queue before the workers exit.
type DispatcherHandle struct {
	*notify.Dispatcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *DispatcherHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Dispatcher.Shutdown(ctx)
	h.cancel()
	return err
}

// ProvideDispatcher provides the notification dispatcher.
func ProvideDispatcher(i do.Injector) (*DispatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	mailer := do.MustInvoke[mail.Mailer](i)

	dispatcher := notify.NewDispatcher(storeHandle.Store, mailer, log.Logger, notify.Options{
		From:           fmt.Sprintf("%s <%s>", cfg.Server.Name, cfg.SMTP.From),
		SupportAddress: cfg.SMTP.SupportAddress,
		BaseURL:        cfg.App.BaseURL,
		Workers:        cfg.Notify.Workers,
		QueueSize:      cfg.Notify.QueueSize,
	})

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher.Start(ctx)

	log.Info("Notification dispatcher started",
		"workers", cfg.Notify.Workers,
		"queue_size", cfg.Notify.QueueSize,
	)

	return &DispatcherHandle{
		Dispatcher: dispatcher,
		cancel:     cancel,
	}, nil
}
