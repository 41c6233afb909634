package utils

import (
	"fmt"
	"sync"
	"time"
)

// Health is the service health snapshot served by the status endpoints.
type Health struct {
	Status  string `json:"status"` // STARTING, OK, DEGRADED, ERROR
	Uptime  string `json:"uptime"`
	Message string `json:"message,omitempty"`
}

// HealthTracker holds the current health status and the process start
// time.
type HealthTracker struct {
	mu        sync.RWMutex
	startTime time.Time
	current   Health
}

var (
	defaultTracker *HealthTracker
	trackerOnce    sync.Once
)

func GetDefaultTracker() *HealthTracker {
	trackerOnce.Do(func() {
		defaultTracker = NewHealthTracker()
	})
	return defaultTracker
}

func NewHealthTracker() *HealthTracker {
	return &HealthTracker{
		startTime: time.Now(),
		current: Health{
			Status:  "STARTING",
			Uptime:  "0s",
			Message: "Service is initializing",
		},
	}
}

func (h *HealthTracker) GetHealth() Health {
	h.mu.RLock()
	defer h.mu.RUnlock()

	health := h.current
	health.Uptime = h.formattedUptime()
	return health
}

func (h *HealthTracker) GetUptimeSeconds() int64 {
	return int64(time.Since(h.startTime).Seconds())
}

func (h *HealthTracker) SetHealthStatus(status, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current.Status = status
	h.current.Message = message
	h.current.Uptime = h.formattedUptime()
}

func (h *HealthTracker) formattedUptime() string {
	duration := time.Since(h.startTime)
	days := int(duration.Hours() / 24)
	hours := int(duration.Hours()) % 24
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Global helpers over the default tracker.
func GetHealth() Health                  { return GetDefaultTracker().GetHealth() }
func SetHealthStatus(status, msg string) { GetDefaultTracker().SetHealthStatus(status, msg) }
func GetUptimeSeconds() int64            { return GetDefaultTracker().GetUptimeSeconds() }
