package types

import (
	"fmt"
	"strings"
)

// TaskStatus is the legacy display status of a task. Completion is tracked
// per user in Task.CompletedBy; this field survives for older records and
// for the HTTP projections.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Task is a unit of work inside a roadmap. IDs are dense (1..N) and are
// recomputed on deletion, so an ID is only stable until the next delete.
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Topic       string     `json:"topic,omitempty"`
	WeekNumber  int        `json:"weekNumber,omitempty"` // 1..52, 0 = unset
	Links       []string   `json:"links,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	CreatedAt   string     `json:"createdAt"`
	WeekAdded   string     `json:"weekAdded,omitempty"` // YYYY-MM-DD of the week start, set by the scheduler
	Scheduled   bool       `json:"isScheduled,omitempty"`
	ScheduleID  string     `json:"scheduledTaskId,omitempty"`
	CompletedBy []string   `json:"completedBy"`
	HiddenBy    []string   `json:"hiddenBy"`
}

// Roadmap is a named, role-gated task list scoped to one guild.
type Roadmap struct {
	ID        string `json:"id"` // "<guildID>_<lowercased name>"
	Name      string `json:"name"`
	GuildID   string `json:"guildId"`
	GuildName string `json:"guildName,omitempty"`
	RoleID    string `json:"roleId"`
	RoleName  string `json:"roleName,omitempty"`
	CreatedBy string `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
	Tasks     []Task `json:"tasks"`

	// Version is the optimistic-concurrency stamp. It is bumped by the
	// store on every successful save; a stale version fails the save.
	Version int64 `json:"version"`
}

// RoadmapKey builds the composite store identity for a roadmap. Names are
// matched case-insensitively, so the key always carries the lowered form.
func RoadmapKey(guildID, name string) string {
	return fmt.Sprintf("%s_%s", guildID, strings.ToLower(strings.TrimSpace(name)))
}

// ScheduledTask is a weekly recurring task definition. The scheduler
// appends a copy of it to the target roadmap on the configured day.
type ScheduledTask struct {
	ID          string `json:"id"`
	GuildID     string `json:"guildId"`
	RoadmapID   string `json:"roadmapKey"`
	RoadmapName string `json:"roadmapName"`
	Title       string `json:"taskTitle"`
	Description string `json:"taskDescription"`
	DayOfWeek   string `json:"dayOfWeek"` // lowercase english day name
	ChannelID   string `json:"channelId"` // where to announce the appended task
	CreatedBy   string `json:"createdBy"`
	CreatedAt   string `json:"createdAt"`
	Active      bool   `json:"isActive"`
}

// AutoPostConfig rotates a fixed message list into a channel, one message
// per daily scheduler fire.
type AutoPostConfig struct {
	GuildID      string   `json:"guildId"`
	Enabled      bool     `json:"enabled"`
	ChannelID    string   `json:"channelId"`
	Messages     []string `json:"messages"`
	CurrentIndex int      `json:"currentIndex"`
}

// Document is the full-store projection served by the backup and API
// endpoints. The same layout is used for backup exports.
type Document struct {
	Roadmaps       map[string]*Roadmap        `json:"roadmaps"`
	ScheduledTasks map[string]*ScheduledTask  `json:"scheduledTasks"`
	AutoPosting    map[string]*AutoPostConfig `json:"autoposting"`
	LastUpdated    string                     `json:"lastUpdated"`
	Version        string                     `json:"version"`
}
