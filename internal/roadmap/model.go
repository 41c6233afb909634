// Package roadmap implements the roadmap/task data model: pure transforms
// over in-memory records. Persistence is the caller's job.
//
// Task addressing is always by global task ID. The per-user visible list
// (VisibleTasksFor) is a display affordance only; callers rendering it must
// print task IDs, not list positions, so the two numberings never conflate.
package roadmap

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samkari/roadmap-service/types"
)

const (
	MinWeek = 1
	MaxWeek = 52
)

// TaskFields carries the caller-supplied parts of a new task.
type TaskFields struct {
	Title       string
	Description string
	Topic       string
	WeekNumber  int // 0 = unset
	Links       []string
	CreatedBy   string
	WeekAdded   string
	Scheduled   bool
	ScheduleID  string
}

// New builds a roadmap record. The key is derived from the guild and the
// lowercased name; the display name keeps its original casing.
func New(guildID, guildName, name, roleID, roleName, creatorID string) (*types.Roadmap, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: roadmap name is empty", ErrInvalidArgument)
	}
	if roleID == "" {
		return nil, fmt.Errorf("%w: role is required", ErrInvalidArgument)
	}
	return &types.Roadmap{
		ID:        types.RoadmapKey(guildID, name),
		Name:      name,
		GuildID:   guildID,
		GuildName: guildName,
		RoleID:    roleID,
		RoleName:  roleName,
		CreatedBy: creatorID,
		CreatedAt: now(),
		Tasks:     []types.Task{},
	}, nil
}

// AddTask appends a task with id max(ids)+1 (1 when empty), preserving
// insertion order.
func AddTask(r *types.Roadmap, f TaskFields) (*types.Task, error) {
	if strings.TrimSpace(f.Title) == "" {
		return nil, fmt.Errorf("%w: task title is empty", ErrInvalidArgument)
	}
	if f.WeekNumber != 0 && (f.WeekNumber < MinWeek || f.WeekNumber > MaxWeek) {
		return nil, fmt.Errorf("%w: week number must be between %d and %d", ErrInvalidArgument, MinWeek, MaxWeek)
	}

	task := types.Task{
		ID:          nextTaskID(r),
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		Topic:       f.Topic,
		WeekNumber:  f.WeekNumber,
		Links:       f.Links,
		Status:      types.TaskStatusPending,
		CreatedBy:   f.CreatedBy,
		CreatedAt:   now(),
		WeekAdded:   f.WeekAdded,
		Scheduled:   f.Scheduled,
		ScheduleID:  f.ScheduleID,
		CompletedBy: []string{},
		HiddenBy:    []string{},
	}
	r.Tasks = append(r.Tasks, task)
	return &r.Tasks[len(r.Tasks)-1], nil
}

// AddTasks appends a batch of tasks, assigning consecutive IDs. The whole
// batch is validated before anything is appended.
func AddTasks(r *types.Roadmap, fields []TaskFields) ([]types.Task, error) {
	for _, f := range fields {
		if strings.TrimSpace(f.Title) == "" {
			return nil, fmt.Errorf("%w: task title is empty", ErrInvalidArgument)
		}
		if f.WeekNumber != 0 && (f.WeekNumber < MinWeek || f.WeekNumber > MaxWeek) {
			return nil, fmt.Errorf("%w: week number must be between %d and %d", ErrInvalidArgument, MinWeek, MaxWeek)
		}
	}
	added := make([]types.Task, 0, len(fields))
	for _, f := range fields {
		t, err := AddTask(r, f)
		if err != nil {
			return nil, err
		}
		added = append(added, *t)
	}
	return added, nil
}

// DeleteTask removes the task with the given ID and renumbers the
// survivors densely 1..N in their existing order. The returned copy keeps
// the pre-renumbering state of the removed task.
func DeleteTask(r *types.Roadmap, id int) (types.Task, error) {
	idx := slices.IndexFunc(r.Tasks, func(t types.Task) bool { return t.ID == id })
	if idx < 0 {
		return types.Task{}, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	removed := r.Tasks[idx]
	r.Tasks = append(r.Tasks[:idx], r.Tasks[idx+1:]...)
	for i := range r.Tasks {
		r.Tasks[i].ID = i + 1
	}
	return removed, nil
}

// ClearTasks removes every task from the roadmap and reports how many
// were removed.
func ClearTasks(r *types.Roadmap) int {
	n := len(r.Tasks)
	r.Tasks = []types.Task{}
	return n
}

// CompleteTask records userID in the task's CompletedBy set. Idempotent:
// a repeated call reports already=true and changes nothing.
func CompleteTask(r *types.Roadmap, id int, userID string) (already bool, err error) {
	t := findTask(r, id)
	if t == nil {
		return false, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	if slices.Contains(t.CompletedBy, userID) {
		return true, nil
	}
	t.CompletedBy = append(t.CompletedBy, userID)
	return false, nil
}

// HideTask removes the task from userID's view. Idempotent.
func HideTask(r *types.Roadmap, id int, userID string) error {
	t := findTask(r, id)
	if t == nil {
		return fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	if !slices.Contains(t.HiddenBy, userID) {
		t.HiddenBy = append(t.HiddenBy, userID)
	}
	return nil
}

// HideAll hides every task in the roadmap for userID.
func HideAll(r *types.Roadmap, userID string) int {
	hidden := 0
	for i := range r.Tasks {
		if !slices.Contains(r.Tasks[i].HiddenBy, userID) {
			r.Tasks[i].HiddenBy = append(r.Tasks[i].HiddenBy, userID)
			hidden++
		}
	}
	return hidden
}

// UnhideTask restores the task to userID's view.
func UnhideTask(r *types.Roadmap, id int, userID string) error {
	t := findTask(r, id)
	if t == nil {
		return fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	t.HiddenBy = slices.DeleteFunc(t.HiddenBy, func(u string) bool { return u == userID })
	return nil
}

// UnhideAll clears userID from every task's HiddenBy set and reports how
// many tasks became visible again.
func UnhideAll(r *types.Roadmap, userID string) int {
	restored := 0
	for i := range r.Tasks {
		before := len(r.Tasks[i].HiddenBy)
		r.Tasks[i].HiddenBy = slices.DeleteFunc(r.Tasks[i].HiddenBy, func(u string) bool { return u == userID })
		if len(r.Tasks[i].HiddenBy) < before {
			restored++
		}
	}
	return restored
}

// VisibleTasksFor returns the tasks userID has not hidden, in roadmap
// order.
func VisibleTasksFor(r *types.Roadmap, userID string) []types.Task {
	visible := make([]types.Task, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		if !slices.Contains(t.HiddenBy, userID) {
			visible = append(visible, t)
		}
	}
	return visible
}

// CompletedByUser reports whether userID has marked the task done.
func CompletedByUser(t *types.Task, userID string) bool {
	return slices.Contains(t.CompletedBy, userID)
}

// FindTask returns the task with the given global ID, or nil.
func FindTask(r *types.Roadmap, id int) *types.Task {
	return findTask(r, id)
}

// RoadmapStats summarizes member interaction across a roadmap.
type RoadmapStats struct {
	TotalTasks       int
	TotalCompletions int
	TotalHides       int
	ActiveUsers      []string
}

// Stats walks the roadmap once and aggregates completion/hide counts plus
// the distinct set of interacting users (insertion order preserved).
func Stats(r *types.Roadmap) RoadmapStats {
	s := RoadmapStats{TotalTasks: len(r.Tasks)}
	seen := map[string]bool{}
	note := func(userID string) {
		if !seen[userID] {
			seen[userID] = true
			s.ActiveUsers = append(s.ActiveUsers, userID)
		}
	}
	for _, t := range r.Tasks {
		s.TotalCompletions += len(t.CompletedBy)
		s.TotalHides += len(t.HiddenBy)
		for _, u := range t.CompletedBy {
			note(u)
		}
		for _, u := range t.HiddenBy {
			note(u)
		}
	}
	return s
}

func nextTaskID(r *types.Roadmap) int {
	max := 0
	for _, t := range r.Tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

func findTask(r *types.Roadmap, id int) *types.Task {
	for i := range r.Tasks {
		if r.Tasks[i].ID == id {
			return &r.Tasks[i]
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
