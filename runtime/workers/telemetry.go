package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"auction-chat/observability"
)

// TelemetryWorker periodically logs client self-stats (RSS, CPU, OS
// status) alongside the dispatch counters. Purely observational.
type TelemetryWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewTelemetryWorker(log *slog.Logger, monitoring *observability.MonitoringManager, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			stats := w.monitoring.GetLatest()
			w.log.Info("Client telemetry",
				"ram_bytes", rss,
				"cpu_percent", cpu,
				"status", status,
				"events_applied", stats.EventsApplied,
				"messages_seen", stats.MessagesSeen,
				"reconnects", stats.Reconnects,
				"stale_discarded", stats.StaleDiscarded,
			)
		}
	}
}

// getSelfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpu, status, nil
}
