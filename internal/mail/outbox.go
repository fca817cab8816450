package mail

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
)

// Outbox wraps a Mailer with the default decorations applied to every
// outbound message: a total-unsubscribe footer, and (when enabled) an HTML
// body rendered from the Markdown text body.
type Outbox struct {
	mailer     Mailer
	baseURL    string
	renderHTML bool
	markdown   goldmark.Markdown
}

// NewOutbox creates an Outbox. renderHTML is disabled in development so
// log output stays readable.
func NewOutbox(mailer Mailer, baseURL string, renderHTML bool) *Outbox {
	return &Outbox{
		mailer:     mailer,
		baseURL:    baseURL,
		renderHTML: renderHTML,
		markdown:   goldmark.New(),
	}
}

// Send decorates msg and hands it to the underlying mailer.
func (o *Outbox) Send(ctx context.Context, msg Message) error {
	msg = o.withTotalUnsubscribe(msg)
	if o.renderHTML {
		var err error
		msg, err = o.withHTMLBody(msg)
		if err != nil {
			return fmt.Errorf("render html body: %w", err)
		}
	}
	return o.mailer.Send(ctx, msg)
}

// withTotalUnsubscribe appends a link to no longer receive any emails
// from Push Pickup.
func (o *Outbox) withTotalUnsubscribe(msg Message) Message {
	link := o.baseURL + "/totally-unsubscribe"
	msg.Text = msg.Text +
		"\n\n===\n[Unsubscribe](" + link + ") from all emails from Push Pickup."
	return msg
}

// withHTMLBody sets an HTML body converted from the Markdown text body.
func (o *Outbox) withHTMLBody(msg Message) (Message, error) {
	var buf bytes.Buffer
	if err := o.markdown.Convert([]byte(msg.Text), &buf); err != nil {
		return msg, err
	}
	msg.HTML = buf.String()
	return msg, nil
}
