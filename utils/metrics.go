package utils

import "sync/atomic"

// Metrics are the process-wide event counters served by /status.
type Metrics struct {
	EventsReceived atomic.Uint64
	CommandsRun    atomic.Uint64
	CommandsFailed atomic.Uint64
	RepliesSent    atomic.Uint64
	SaveConflicts  atomic.Uint64
	BackupsWritten atomic.Uint64
}

// MetricsSnapshot is the JSON projection of Metrics.
type MetricsSnapshot struct {
	EventsReceived uint64 `json:"events_received"`
	CommandsRun    uint64 `json:"commands_run"`
	CommandsFailed uint64 `json:"commands_failed"`
	RepliesSent    uint64 `json:"replies_sent"`
	SaveConflicts  uint64 `json:"save_conflicts"`
	BackupsWritten uint64 `json:"backups_written"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsReceived: m.EventsReceived.Load(),
		CommandsRun:    m.CommandsRun.Load(),
		CommandsFailed: m.CommandsFailed.Load(),
		RepliesSent:    m.RepliesSent.Load(),
		SaveConflicts:  m.SaveConflicts.Load(),
		BackupsWritten: m.BackupsWritten.Load(),
	}
}

// Default is the process-wide metrics instance.
var Default = &Metrics{}
