package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dwinston/pushpickup/internal/domain"
	"github.com/dwinston/pushpickup/internal/mail"
)

// UserDirectory resolves user accounts for recipient lookup. The batch
// lookup skips missing accounts; a player whose account was deleted is
// simply not mailed.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
}

// Options configures a Dispatcher.
type Options struct {
	From           string
	SupportAddress string
	BaseURL        string
	Workers        int
	QueueSize      int
}

// Dispatcher delivers notification events through a worker pool. Publishing
// never blocks: if the queue is full the event is dropped and logged.
type Dispatcher struct {
	users  UserDirectory
	mailer mail.Mailer
	logger *slog.Logger

	queue   chan Event
	workers int
	wg      sync.WaitGroup

	from           string
	supportAddress string
	baseURL        string

	// Shutdown state - protected by shutdownMu
	shutdownMu sync.RWMutex
	shutdown   bool
}

const (
	maxDeliveryAttempts = 3
	retryBackoff        = 2 * time.Second
)

// NewDispatcher creates a Dispatcher. Call Start to begin processing.
func NewDispatcher(users UserDirectory, mailer mail.Mailer, logger *slog.Logger, opts Options) *Dispatcher {
	workers := opts.Workers
	if workers <= 0 {
		workers = 2
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}

	return &Dispatcher{
		users:          users,
		mailer:         mailer,
		logger:         logger,
		queue:          make(chan Event, queueSize),
		workers:        workers,
		from:           opts.From,
		supportAddress: opts.SupportAddress,
		baseURL:        opts.BaseURL,
	}
}

// Start launches the worker pool. Workers exit when the queue is closed by
// Shutdown or when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("notification dispatcher starting",
		slog.Int("workers", d.workers),
		slog.Int("queue_size", cap(d.queue)))

	for range d.workers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for event := range d.queue {
				select {
				case <-ctx.Done():
					// Keep draining so Shutdown can finish, but stop
					// delivering.
					continue
				default:
				}
				d.deliver(ctx, event)
			}
		}()
	}
}

// Shutdown stops accepting events and waits for in-flight deliveries.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.shutdownMu.Lock()
	d.shutdown = true
	close(d.queue)
	d.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("notification dispatcher drained")
		return nil
	case <-ctx.Done():
		d.logger.Warn("notification dispatcher shutdown timeout, some emails may be lost")
		return ctx.Err()
	}
}

// Publish queues an event for delivery. Never blocks.
func (d *Dispatcher) Publish(event Event) {
	d.shutdownMu.RLock()
	defer d.shutdownMu.RUnlock()

	if d.shutdown {
		return
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Error("notification queue full, dropping event",
			slog.String("kind", string(event.Kind)))
	}
}

// deliver composes and sends all messages for one event.
func (d *Dispatcher) deliver(ctx context.Context, event Event) {
	messages, err := d.compose(ctx, event)
	if err != nil {
		d.logger.Error("failed to compose notification",
			slog.String("kind", string(event.Kind)),
			slog.String("error", err.Error()))
		return
	}

	for _, msg := range messages {
		d.sendWithRetry(ctx, event.Kind, msg)
	}
}

// compose resolves recipients and builds the messages for an event.
// An event with no eligible recipients composes to zero messages.
func (d *Dispatcher) compose(ctx context.Context, event Event) ([]mail.Message, error) {
	switch event.Kind {
	case PlayerJoined, PlayerLeft:
		// Organizer only. Organizers are not notified about their own
		// joining, leaving, or friend-adding.
		if event.ActorID == event.Game.Creator.UserID {
			return nil, nil
		}
		to, ok := d.organizerRecipient(ctx, event.Game)
		if !ok {
			return nil, nil
		}
		subject := joinedSubject(event)
		if event.Kind == PlayerLeft {
			subject = leftSubject(event)
		}
		return []mail.Message{{
			From:    d.from,
			To:      []mail.Recipient{to},
			Subject: subject,
			Text:    d.organizerBody(event.Game),
		}}, nil

	case GameChanged:
		recipients := d.playerRecipients(ctx, event.Game, event.Game.Creator.UserID)
		if len(recipients) == 0 {
			return nil, nil
		}
		return []mail.Message{d.changedMessage(event, recipients)}, nil

	case GameCancelled:
		// One personalized mail per player.
		recipients := d.playerRecipients(ctx, event.Game, event.Game.Creator.UserID)
		messages := make([]mail.Message, 0, len(recipients))
		for _, to := range recipients {
			messages = append(messages, d.cancelledMessage(event.Game, to))
		}
		return messages, nil

	case CommentAdded:
		recipients := d.commentRecipients(ctx, event.Game, event.ActorID)
		if len(recipients) == 0 {
			return nil, nil
		}
		return []mail.Message{d.commentMessage(event, recipients)}, nil

	case OrganizerReminder:
		to, ok := d.organizerRecipient(ctx, event.Game)
		if !ok {
			return nil, nil
		}
		return []mail.Message{d.reminderMessage(event.Game, to)}, nil

	case Feedback:
		return []mail.Message{d.feedbackMessage(event)}, nil

	default:
		return nil, fmt.Errorf("unknown event kind %q", event.Kind)
	}
}

// organizerRecipient resolves the game's organizer to a mail recipient.
func (d *Dispatcher) organizerRecipient(ctx context.Context, game *domain.Game) (mail.Recipient, bool) {
	user, err := d.users.GetUser(ctx, game.Creator.UserID)
	if err != nil {
		d.logger.Warn("organizer lookup failed",
			slog.String("game_id", game.ID),
			slog.String("user_id", game.Creator.UserID),
			slog.String("error", err.Error()))
		return mail.Recipient{}, false
	}
	if user.UnsubscribedAll {
		return mail.Recipient{}, false
	}
	address := user.PrimaryEmail()
	if address == "" {
		return mail.Recipient{}, false
	}
	return mail.Recipient{Name: game.Creator.Name, Address: address}, true
}

// playerRecipients resolves the game's players to mail recipients: players
// with an account and a verified email address, excluding excludeUserID and
// anyone who unsubscribed from all mail. Friend invitees have no account and
// are never mailed.
func (d *Dispatcher) playerRecipients(ctx context.Context, game *domain.Game, excludeUserID string) []mail.Recipient {
	seen := make(map[string]bool)
	var ids []string
	names := make(map[string]string)

	for _, player := range game.Players {
		if player.UserID == "" || player.UserID == excludeUserID || seen[player.UserID] {
			continue
		}
		seen[player.UserID] = true
		ids = append(ids, player.UserID)
		names[player.UserID] = player.Name
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := d.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		d.logger.Warn("player lookup failed",
			slog.String("game_id", game.ID),
			slog.String("error", err.Error()))
		return nil
	}

	var recipients []mail.Recipient
	for _, user := range users {
		if user.UnsubscribedAll {
			continue
		}
		address := user.VerifiedEmail()
		if address == "" {
			continue
		}
		recipients = append(recipients, mail.Recipient{Name: names[user.ID], Address: address})
	}
	return recipients
}

// commentRecipients is playerRecipients plus the organizer, who hears about
// new comments even when not on the roster. The organizer goes through the
// same unsubscribe and verified-email filters as everyone else.
func (d *Dispatcher) commentRecipients(ctx context.Context, game *domain.Game, excludeUserID string) []mail.Recipient {
	recipients := d.playerRecipients(ctx, game, excludeUserID)

	creatorID := game.Creator.UserID
	if creatorID == "" || creatorID == excludeUserID {
		return recipients
	}
	for _, player := range game.Players {
		if player.UserID == creatorID {
			// Already considered as a player.
			return recipients
		}
	}

	user, err := d.users.GetUser(ctx, creatorID)
	if err != nil {
		d.logger.Warn("organizer lookup failed",
			slog.String("game_id", game.ID),
			slog.String("user_id", creatorID),
			slog.String("error", err.Error()))
		return recipients
	}
	if user.UnsubscribedAll {
		return recipients
	}
	address := user.VerifiedEmail()
	if address == "" {
		return recipients
	}
	return append(recipients, mail.Recipient{Name: game.Creator.Name, Address: address})
}

// sendWithRetry delivers one message with bounded retry. Failures are
// logged, never propagated.
func (d *Dispatcher) sendWithRetry(ctx context.Context, kind EventKind, msg mail.Message) {
	var err error
	for attempt := 1; attempt <= maxDeliveryAttempts; attempt++ {
		if err = d.mailer.Send(ctx, msg); err == nil {
			return
		}

		d.logger.Warn("email delivery failed",
			slog.String("kind", string(kind)),
			slog.String("subject", msg.Subject),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		if attempt == maxDeliveryAttempts {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * retryBackoff):
		case <-ctx.Done():
			return
		}
	}

	d.logger.Error("email delivery abandoned",
		slog.String("kind", string(kind)),
		slog.String("subject", msg.Subject),
		slog.String("error", err.Error()))
}
