package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer delivers messages over SMTP.
type SMTPMailer struct {
	client *gomail.Client
}

// NewSMTPMailer creates an SMTP transport. Credentials are optional for
// servers that accept unauthenticated relay (local testing setups).
func NewSMTPMailer(host string, port int, username, password string) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(username),
			gomail.WithPassword(password),
		)
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPMailer{client: client}, nil
}

// Send delivers a single message.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	message := gomail.NewMsg()
	if err := message.From(msg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	for _, to := range msg.To {
		var err error
		if to.Name != "" {
			err = message.AddToFormat(to.Name, to.Address)
		} else {
			err = message.AddTo(to.Address)
		}
		if err != nil {
			return fmt.Errorf("set to address: %w", err)
		}
	}
	message.Subject(msg.Subject)
	message.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		message.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}

	if err := m.client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
