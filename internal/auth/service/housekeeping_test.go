package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingRunOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	saveRecord(t, s, &domain.AccountToken{Token: "stale-1", AccountID: "a", Purpose: domain.PurposeRefreshToken, ExpiresAt: now.Add(-time.Minute)})
	saveRecord(t, s, &domain.AccountToken{Token: "stale-2", AccountID: "a", Purpose: domain.PurposeJTI, ExpiresAt: now.Add(-time.Hour)})
	saveRecord(t, s, &domain.AccountToken{Token: "fresh", AccountID: "a", Purpose: domain.PurposeRefreshToken, ExpiresAt: now.Add(time.Hour)})
	saveRecord(t, s, &domain.AccountToken{Token: "forever", AccountID: "a", Purpose: domain.PurposeJTI})

	h := NewHousekeepingService(s.AccountTokens(), slog.New(slog.DiscardHandler), 0)
	require.Equal(t, time.Hour, h.Interval)
	require.Equal(t, int64(2), h.RunOnce(ctx))
	require.Equal(t, int64(0), h.RunOnce(ctx))

	for _, token := range []string{"fresh", "forever"} {
		_, err := s.AccountTokens().GetByToken(ctx, token)
		require.NoError(t, err, token)
	}
}

func TestHousekeepingStartStop(t *testing.T) {
	s := newTestStore(t)
	saveRecord(t, s, &domain.AccountToken{Token: "stale", AccountID: "a", Purpose: domain.PurposeJTI, ExpiresAt: time.Now().Add(-time.Minute)})

	h := NewHousekeepingService(s.AccountTokens(), slog.New(slog.DiscardHandler), time.Hour)
	h.Start(context.Background())

	require.Eventually(t, func() bool {
		_, err := s.AccountTokens().GetByToken(context.Background(), "stale")
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)

	h.Stop()
}

func TestHousekeepingStopIsSafe(t *testing.T) {
	s := newTestStore(t)

	idle := NewHousekeepingService(s.AccountTokens(), slog.New(slog.DiscardHandler), time.Hour)
	idle.Stop()
	idle.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	h := NewHousekeepingService(s.AccountTokens(), slog.New(slog.DiscardHandler), time.Hour)
	h.Start(ctx)
	h.Start(ctx)
	cancel()
	h.Stop()
	h.Stop()
}
