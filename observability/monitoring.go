// Package observability aggregates client-side telemetry: counters on
// the dispatch loop and snapshots for the debug inspector.
package observability

import (
	"sync/atomic"
	"time"
)

// MonitoringStats aggregates the metrics exposed on the debug page.
type MonitoringStats struct {
	EventsApplied  uint64 `json:"events_applied"`
	MessagesSeen   uint64 `json:"messages_seen"`
	Reconnects     uint64 `json:"reconnects"`
	StaleDiscarded uint64 `json:"stale_discarded"`
	SendFailures   uint64 `json:"send_failures"`
	StartedAt      string `json:"started_at"`
}

// MonitoringManager tracks real-time client telemetry. All counters are
// atomic; snapshots are consistent enough for display purposes.
type MonitoringManager struct {
	eventsApplied  atomic.Uint64
	messagesSeen   atomic.Uint64
	reconnects     atomic.Uint64
	staleDiscarded atomic.Uint64
	sendFailures   atomic.Uint64
	startedAt      time.Time
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{startedAt: time.Now().UTC()}
}

func (m *MonitoringManager) EventApplied()   { m.eventsApplied.Add(1) }
func (m *MonitoringManager) MessageSeen()    { m.messagesSeen.Add(1) }
func (m *MonitoringManager) Reconnect()      { m.reconnects.Add(1) }
func (m *MonitoringManager) StaleDiscarded() { m.staleDiscarded.Add(1) }
func (m *MonitoringManager) SendFailure()    { m.sendFailures.Add(1) }

func (m *MonitoringManager) GetLatest() MonitoringStats {
	return MonitoringStats{
		EventsApplied:  m.eventsApplied.Load(),
		MessagesSeen:   m.messagesSeen.Load(),
		Reconnects:     m.reconnects.Load(),
		StaleDiscarded: m.staleDiscarded.Load(),
		SendFailures:   m.sendFailures.Load(),
		StartedAt:      m.startedAt.Format(time.RFC3339),
	}
}
