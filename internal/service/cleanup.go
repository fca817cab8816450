package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CleanupJob periodically purges expired sessions.
type CleanupJob struct {
	sessions *SessionService
	interval time.Duration
	logger   *slog.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

// NewCleanupJob creates a cleanup job that runs every interval.
func NewCleanupJob(sessions *SessionService, interval time.Duration, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (j *CleanupJob) Start(ctx context.Context) {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.run(ctx)
			case <-j.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the cleanup loop.
func (j *CleanupJob) Stop() {
	close(j.done)
	j.wg.Wait()
}

func (j *CleanupJob) run(ctx context.Context) {
	deleted, err := j.sessions.DeleteExpiredSessions(ctx)
	if err != nil {
		j.logger.Error("session cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		j.logger.Info("expired sessions removed", "count", deleted)
	}
}
