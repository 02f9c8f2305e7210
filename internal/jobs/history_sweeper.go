// Package jobs holds background loops that run for the life of the process.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"seoscout/internal/history"
)

// HistorySweeper prunes idle conversation state from the in-memory history
// store. Redis-backed deployments expire keys by TTL and do not need it.
type HistorySweeper struct {
	store    *history.MemoryStore
	interval time.Duration
	logger   *slog.Logger
}

// NewHistorySweeper creates a sweeper for the given store.
func NewHistorySweeper(store *history.MemoryStore, interval time.Duration, logger *slog.Logger) *HistorySweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistorySweeper{store: store, interval: interval, logger: logger}
}

// Start begins the sweep loop and blocks until ctx is cancelled.
func (s *HistorySweeper) Start(ctx context.Context) {
	s.logger.Info("history sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("history sweeper stopped")
			return
		case <-ticker.C:
			if removed := s.store.PruneIdle(); removed > 0 {
				s.logger.Info("pruned idle conversations", "removed", removed, "remaining", s.store.Len())
			}
		}
	}
}
