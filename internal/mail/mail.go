// Package mail provides outbound email delivery. Messages are composed as
// Markdown text; the outbox decorates them with an unsubscribe footer and,
// outside development, an HTML alternative body before handing them to the
// configured transport.
package mail

import "context"

// Recipient is a single addressee. Name may be empty.
type Recipient struct {
	Name    string
	Address string
}

// Message is a composed email ready for delivery.
type Message struct {
	From    string
	To      []Recipient
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
