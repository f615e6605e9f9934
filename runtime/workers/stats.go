package workers

import (
	"chat-collect/observability"
	"context"
	"log/slog"
	"time"
)

// StatsWorker samples the process metrics (CPU, RAM, status) at a fixed
// interval and logs one line with the counters.
type StatsWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewStatsWorker(log *slog.Logger, monitoring *observability.MonitoringManager, interval time.Duration) *StatsWorker {
	return &StatsWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info("Starting stats worker")
	if err := w.monitoring.Refresh(); err != nil {
		return err
	}
	w.report()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.monitoring.Refresh(); err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.report()
		}
	}
}

func (w *StatsWorker) report() {
	stats := w.monitoring.Snapshot()
	w.log.Info("Chat stats",
		"joins", stats.Joins,
		"polls", stats.Polls,
		"expired_polls", stats.ExpiredPolls,
		"posts", stats.Posts,
		"released", stats.Released,
		"evictions", stats.Evictions,
		"archive_dropped", stats.ArchiveDropped,
		"rss_bytes", stats.Process.RssBytes,
		"cpu_percent", stats.Process.CpuPercent,
		"goroutines", stats.Process.Goroutines,
	)
}
