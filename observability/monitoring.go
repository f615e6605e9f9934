package observability

import (
	"chat-collect/domain"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats is a sample of the server process taken by Refresh.
type ProcessStats struct {
	Pid        int32     `json:"pid"`
	Status     string    `json:"status"`
	CpuPercent float64   `json:"cpu_percent"`
	RssBytes   uint64    `json:"rss_bytes"`
	AllocMemMb uint64    `json:"alloc_mem_mb"`
	NumGC      uint32    `json:"num_gc"`
	Goroutines int       `json:"goroutines"`
	SampledAt  time.Time `json:"sampled_at"`
}

// MonitoringStats aggregates every metric exposed on the admin API.
type MonitoringStats struct {
	Joins          uint64            `json:"joins"`
	Polls          uint64            `json:"polls"`
	ExpiredPolls   uint64            `json:"expired_polls"`
	Posts          uint64            `json:"posts"`
	CensoredPosts  uint64            `json:"censored_posts"`
	Leaves         map[string]uint64 `json:"leaves"`
	Released       uint64            `json:"released"`
	Evictions      uint64            `json:"evictions"`
	ArchiveDropped uint64            `json:"archive_dropped"`
	ActiveRooms    int               `json:"active_rooms"`
	WaitingUsers   int               `json:"waiting_users"`
	Uptime         string            `json:"uptime"`
	Process        ProcessStats      `json:"process"`
}

// MonitoringManager counts lobby activity with atomic counters and keeps the
// latest process sample.
type MonitoringManager struct {
	log     *slog.Logger
	started time.Time

	joins          atomic.Uint64
	polls          atomic.Uint64
	expiredPolls   atomic.Uint64
	posts          atomic.Uint64
	censoredPosts  atomic.Uint64
	released       atomic.Uint64
	evictions      atomic.Uint64
	archiveDropped atomic.Uint64
	leaves         [domain.LeaveUnspecified + 1]atomic.Uint64

	mu      sync.RWMutex
	process ProcessStats
	proc    *process.Process
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, started: time.Now()}
}

func (mm *MonitoringManager) IncrJoins()          { mm.joins.Add(1) }
func (mm *MonitoringManager) IncrPolls()          { mm.polls.Add(1) }
func (mm *MonitoringManager) IncrExpiredPolls()   { mm.expiredPolls.Add(1) }
func (mm *MonitoringManager) IncrPosts()          { mm.posts.Add(1) }
func (mm *MonitoringManager) IncrCensoredPosts()  { mm.censoredPosts.Add(1) }
func (mm *MonitoringManager) IncrReleased()       { mm.released.Add(1) }
func (mm *MonitoringManager) IncrEvictions()      { mm.evictions.Add(1) }
func (mm *MonitoringManager) IncrArchiveDropped() { mm.archiveDropped.Add(1) }

func (mm *MonitoringManager) IncrLeaves(reason domain.LeaveReason) {
	if !reason.Valid() {
		return
	}
	mm.leaves[reason].Add(1)
}

// Refresh samples the process through gopsutil and the Go runtime.
func (mm *MonitoringManager) Refresh() error {
	if mm.proc == nil {
		p, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			return err
		}
		mm.proc = p
	}
	memInfo, err := mm.proc.MemoryInfo()
	if err != nil {
		return err
	}
	cpuPercent, err := mm.proc.CPUPercent()
	if err != nil {
		return err
	}
	status, err := mm.proc.Status()
	if err != nil {
		return err
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.process = ProcessStats{
		Pid:        mm.proc.Pid,
		Status:     status,
		CpuPercent: cpuPercent,
		RssBytes:   memInfo.RSS,
		AllocMemMb: m.Alloc / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		SampledAt:  time.Now().UTC(),
	}
	return nil
}

// Snapshot returns the counters and the latest process sample. Room gauges
// are filled by the caller that owns the lobby.
func (mm *MonitoringManager) Snapshot() MonitoringStats {
	mm.mu.RLock()
	proc := mm.process
	mm.mu.RUnlock()

	leaves := make(map[string]uint64, len(mm.leaves))
	for i := range mm.leaves {
		leaves[domain.LeaveReason(i).String()] = mm.leaves[i].Load()
	}
	return MonitoringStats{
		Joins:          mm.joins.Load(),
		Polls:          mm.polls.Load(),
		ExpiredPolls:   mm.expiredPolls.Load(),
		Posts:          mm.posts.Load(),
		CensoredPosts:  mm.censoredPosts.Load(),
		Leaves:         leaves,
		Released:       mm.released.Load(),
		Evictions:      mm.evictions.Load(),
		ArchiveDropped: mm.archiveDropped.Load(),
		Uptime:         time.Since(mm.started).Truncate(time.Second).String(),
		Process:        proc,
	}
}
