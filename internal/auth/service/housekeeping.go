package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/store"
)

// HousekeepingService periodically purges expired token records: refresh
// tokens, authorization codes, JTIs and login links.
type HousekeepingService struct {
	Tokens   store.AccountTokenRepo
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(tokens store.AccountTokenRepo, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Tokens:   tokens,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs a purge immediately and then every Interval until Stop is
// called or ctx ends.
func (s *HousekeepingService) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run(ctx)
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop ends the worker and waits for an in-flight purge to finish. It is
// safe to call more than once and on a service that never started.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	if !s.started.Load() {
		return
	}
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce purges records that have expired by now and reports how many
// were removed. Failures are logged, not returned.
func (s *HousekeepingService) RunOnce(ctx context.Context) int64 {
	n, err := s.Tokens.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to delete expired token records", "error", err)
		return 0
	}
	if n > 0 {
		s.Logger.Info("purged expired token records", "deleted", n)
	}
	return n
}
