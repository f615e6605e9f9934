package workers

import (
	"context"
	"log/slog"
	"time"
)

// Reaper evicts idle users. Implemented by the lobby.
type Reaper interface {
	Reap(now time.Time) int
}

// ReaperWorker periodically removes the users that stopped polling, e.g.
// after closing their tab without leaving.
type ReaperWorker struct {
	log      *slog.Logger
	reaper   Reaper
	interval time.Duration
}

func NewReaperWorker(log *slog.Logger, reaper Reaper, interval time.Duration) *ReaperWorker {
	return &ReaperWorker{log: log, reaper: reaper, interval: interval}
}

func (w *ReaperWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping reaper")
			return nil
		case now := <-ticker.C:
			if evicted := w.reaper.Reap(now); evicted > 0 {
				w.log.Info("Idle users evicted", "count", evicted)
			}
		}
	}
}
