package ride

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"nextride/utils"
)

// StartRequestReaper cancels requested rides nobody accepted within maxAge.
// It sweeps every interval until ctx is cancelled. A ride that gets accepted
// between the listing and the cancel is left alone; the conditional write
// reports ErrConflict and the reaper moves on.
func (s *Service) StartRequestReaper(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.reapStaleRequests(ctx, maxAge)
			case <-ctx.Done():
				utils.Logger.Info("Request reaper shutting down...")
				return
			}
		}
	}()
}

func (s *Service) reapStaleRequests(ctx context.Context, maxAge time.Duration) {
	open, err := s.store.ListAvailable(ctx, 200)
	if err != nil {
		utils.Logger.Error("Stale request sweep failed", zap.Error(err))
		return
	}

	cutoff := time.Now().UTC().Add(-maxAge)
	var cancelled int
	for _, r := range open {
		if r.RequestedAt.After(cutoff) {
			continue
		}
		if _, err := s.Cancel(ctx, r.ID); err != nil {
			if errors.Is(err, ErrConflict) || errors.Is(err, ErrInvalidTransition) {
				continue
			}
			utils.Logger.Error("Failed to cancel stale request",
				zap.String("rideId", r.ID), zap.Error(err))
			continue
		}
		cancelled++
	}

	if cancelled > 0 {
		utils.Logger.Info("Cancelled stale ride requests", zap.Int("count", cancelled))
	}
}
