package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dwinston/pushpickup/internal/domain"
	"github.com/dwinston/pushpickup/internal/mail"
	"github.com/dwinston/pushpickup/internal/notify"
	"github.com/dwinston/pushpickup/internal/store"
)

// captureMailer records messages instead of sending them.
type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

type testEnv struct {
	store      *store.Store
	mailer     *captureMailer
	dispatcher *notify.Dispatcher
	games      *GameService
	roster     *RosterService
	comments   *CommentService
	options    *OptionsService
	feedback   *FeedbackService
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.EnsureDefaultOptions(context.Background()))

	logger := testLogger()
	mailer := &captureMailer{}
	dispatcher := notify.NewDispatcher(st, mailer, logger, notify.Options{
		From:           "Push Pickup <support@pushpickup.com>",
		SupportAddress: "support@pushpickup.com",
		BaseURL:        "https://www.pushpickup.com",
		Workers:        1,
		QueueSize:      32,
	})

	games := NewGameService(st, dispatcher, logger)
	comments := NewCommentService(st, games, dispatcher, logger)
	t.Cleanup(comments.Stop)

	return &testEnv{
		store:      st,
		mailer:     mailer,
		dispatcher: dispatcher,
		games:      games,
		roster:     NewRosterService(st, games, dispatcher, logger),
		comments:   comments,
		options:    NewOptionsService(st, logger),
		feedback:   NewFeedbackService(st, dispatcher, logger),
	}
}

// deliverMail runs the dispatcher just long enough to drain the queue.
func (e *testEnv) deliverMail(t *testing.T) []mail.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	e.dispatcher.Start(ctx)
	require.NoError(t, e.dispatcher.Shutdown(ctx))
	return e.mailer.messages()
}

func (e *testEnv) createUser(t *testing.T, id, name, email string, verified bool) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:          id,
		DisplayName: name,
		Emails:      []domain.Email{{Address: email, Verified: verified}},
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func validGameRequest() GameRequest {
	return GameRequest{
		Type:      "soccer",
		StartsAt:  time.Now().Add(48 * time.Hour),
		UTCOffset: -7,
		Location: LocationRequest{
			Name:      "Golden Gate Park",
			Longitude: -122.48,
			Latitude:  37.77,
		},
		Note:             "Bring both colors",
		RequestedPlayers: 10,
	}
}
