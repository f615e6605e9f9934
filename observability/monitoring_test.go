package observability

import (
	"chat-collect/domain"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitoringManager_Counters(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager(slog.Default())

	mm.IncrJoins()
	mm.IncrJoins()
	mm.IncrPolls()
	mm.IncrLeaves(domain.LeaveDialogOver)
	mm.IncrLeaves(domain.LeaveStopConfirmed)
	mm.IncrLeaves(domain.LeaveStopConfirmed)
	mm.IncrLeaves(domain.LeaveReason(42))

	stats := mm.Snapshot()
	req.Equal(uint64(2), stats.Joins)
	req.Equal(uint64(1), stats.Polls)
	req.Equal(uint64(1), stats.Leaves["dialog_over"])
	req.Equal(uint64(2), stats.Leaves["stop_confirmed"])
	req.Equal(uint64(0), stats.Leaves["evicted"])
	req.Len(stats.Leaves, 6)
	req.Equal(uint64(0), stats.Leaves["unspecified"])
}

func TestMonitoringManager_Refresh(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager(slog.Default())

	req.NoError(mm.Refresh())

	stats := mm.Snapshot()
	req.Equal(int32(os.Getpid()), stats.Process.Pid)
	req.NotZero(stats.Process.RssBytes)
	req.Positive(stats.Process.Goroutines)
}
