package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dwinston/pushpickup/internal/notify"
	"github.com/dwinston/pushpickup/internal/store"
)

// ReminderJob periodically sweeps for games starting soon and sends each
// organizer a one-time reminder. A game is reminded at most once per
// schedule; rescheduling the day or time re-arms it.
type ReminderJob struct {
	store      *store.Store
	dispatcher *notify.Dispatcher
	lead       time.Duration
	interval   time.Duration
	logger     *slog.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

// NewReminderJob creates a reminder job. lead is how far before start time
// the reminder goes out; interval is how often the sweep runs.
func NewReminderJob(store *store.Store, dispatcher *notify.Dispatcher, lead, interval time.Duration, logger *slog.Logger) *ReminderJob {
	return &ReminderJob{
		store:      store,
		dispatcher: dispatcher,
		lead:       lead,
		interval:   interval,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (j *ReminderJob) Start(ctx context.Context) {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.Sweep(ctx)
			case <-j.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (j *ReminderJob) Stop() {
	close(j.done)
	j.wg.Wait()
}

// Sweep finds games that start within the lead window and have not yet had
// their reminder sent, and queues one reminder per organizer.
func (j *ReminderJob) Sweep(ctx context.Context) int {
	now := time.Now()
	games, err := j.store.ListGamesStartingBetween(ctx, now, now.Add(j.lead))
	if err != nil {
		j.logger.Error("reminder sweep failed", "error", err)
		return 0
	}

	sent := 0
	for _, game := range games {
		if game.ReminderSent {
			continue
		}

		j.dispatcher.Publish(notify.Event{
			Kind: notify.OrganizerReminder,
			Game: game,
		})

		if err := j.store.MarkGameReminded(ctx, game.ID); err != nil {
			j.logger.Error("failed to mark game reminded", "game_id", game.ID, "error", err)
			continue
		}
		sent++
	}

	if sent > 0 {
		j.logger.Info("organizer reminders sent", "count", sent)
	}
	return sent
}
