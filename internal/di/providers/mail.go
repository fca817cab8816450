package providers

import (
	"github.com/samber/do/v2"

	"github.com/dwinston/pushpickup/internal/config"
	"github.com/dwinston/pushpickup/internal/logger"
	"github.com/dwinston/pushpickup/internal/mail"
)

// ProvideMailer provides the outgoing mail transport wrapped in the outbox.
// Without SMTP configuration mail is logged instead of sent, which keeps
// development setups working with no external dependencies.
func ProvideMailer(i do.Injector) (mail.Mailer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var transport mail.Mailer
	if cfg.SMTP.Host == "" {
		log.Info("SMTP not configured, logging outgoing mail instead")
		transport = mail.NewLogMailer(log.Logger)
	} else {
		smtp, err := mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
		if err != nil {
			return nil, err
		}
		log.Info("SMTP mailer configured", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)
		transport = smtp
	}

	renderHTML := cfg.App.Environment != "development"
	return mail.NewOutbox(transport, cfg.App.BaseURL, renderHTML), nil
}
