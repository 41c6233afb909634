// Package scheduler runs the daily background duties: appending weekly
// recurring tasks to their roadmaps and rotating auto-post messages.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

const (
	tickInterval = time.Minute
	saveRetries  = 3
)

// Store is the persistence surface the scheduler needs. *storage.Store is
// the production implementation.
type Store interface {
	GetRoadmap(ctx context.Context, id string) (*types.Roadmap, error)
	SaveRoadmap(ctx context.Context, r *types.Roadmap) error
	GetScheduledTasks(ctx context.Context) ([]*types.ScheduledTask, error)
	GetAutoPosts(ctx context.Context) ([]*types.AutoPostConfig, error)
	SaveAutoPost(ctx context.Context, cfg *types.AutoPostConfig) error
	LastSchedulerRun(ctx context.Context) (string, error)
	SetLastSchedulerRun(ctx context.Context, day string) error
}

// Messenger posts scheduler announcements. *gateway.Client is the
// production implementation.
type Messenger interface {
	PostMessage(channelID, content string) (string, error)
}

// Scheduler fires once per day at FireHour local time. The last-run
// marker lives in the store, so a restart mid-day does not double-fire.
type Scheduler struct {
	Store    Store
	Gateway  Messenger
	FireHour int // 0..23

	nowFn func() time.Time
}

func New(store Store, gw Messenger, fireHour int) *Scheduler {
	return &Scheduler{
		Store:    store,
		Gateway:  gw,
		FireHour: fireHour,
		nowFn:    time.Now,
	}
}

// Run ticks every minute until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	log.Printf("Scheduler: started, firing daily at %02d:00", s.FireHour)
	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler: stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.nowFn()
	if now.Hour() < s.FireHour {
		return
	}

	today := now.Format("2006-01-02")
	last, err := s.Store.LastSchedulerRun(ctx)
	if err != nil {
		log.Printf("ALARM Scheduler: last-run lookup failed: %v", err)
		return
	}
	if last == today {
		return
	}

	s.runWeekly(ctx, now)
	s.runAutoPost(ctx)

	if err := s.Store.SetLastSchedulerRun(ctx, today); err != nil {
		log.Printf("ALARM Scheduler: last-run update failed: %v", err)
	}
}

// runWeekly appends every active recurring task whose day matches today.
func (s *Scheduler) runWeekly(ctx context.Context, now time.Time) {
	weekday := strings.ToLower(now.Weekday().String())
	schedules, err := s.Store.GetScheduledTasks(ctx)
	if err != nil {
		log.Printf("ALARM Scheduler: schedule listing failed: %v", err)
		return
	}

	weekStart := weekStartOf(now)

	for _, st := range schedules {
		if !st.Active || st.DayOfWeek != weekday {
			continue
		}
		added, err := s.appendScheduled(ctx, st, weekStart)
		if err != nil {
			log.Printf("ALARM Scheduler: weekly task %q for %q failed: %v", st.Title, st.RoadmapName, err)
			continue
		}
		if !added {
			continue
		}
		log.Printf("Scheduler: added weekly task %q to %q", st.Title, st.RoadmapName)
		s.announce(st)
	}
}

// announce posts the weekly addition to the channel the schedule was
// created in. Announcement failures are logged but do not undo the add.
func (s *Scheduler) announce(st *types.ScheduledTask) {
	if st.ChannelID == "" {
		return
	}
	msg := fmt.Sprintf("📅 Weekly task **%s** added to **%s**.", st.Title, st.RoadmapName)
	if _, err := s.Gateway.PostMessage(st.ChannelID, msg); err != nil {
		log.Printf("ALARM Scheduler: announce for %q failed: %v", st.Title, err)
	}
}

// weekStartOf formats the Monday of now's week, the marker for "this
// week's instance" of a recurring task.
func weekStartOf(now time.Time) string {
	return now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7)).Format("2006-01-02")
}

// appendScheduled retries around save conflicts, reloading the roadmap
// each attempt. Within one week a schedule fires at most once; the bool
// reports whether this call actually added the task.
func (s *Scheduler) appendScheduled(ctx context.Context, st *types.ScheduledTask, weekStart string) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < saveRetries; attempt++ {
		r, err := s.Store.GetRoadmap(ctx, st.RoadmapID)
		if err != nil {
			return false, err
		}

		already := false
		for _, t := range r.Tasks {
			if t.ScheduleID == st.ID && t.WeekAdded == weekStart {
				already = true
				break
			}
		}
		if already {
			return false, nil
		}

		if _, err := roadmap.AddTask(r, roadmap.TaskFields{
			Title:       st.Title,
			Description: st.Description,
			CreatedBy:   st.CreatedBy,
			WeekAdded:   weekStart,
			Scheduled:   true,
			ScheduleID:  st.ID,
		}); err != nil {
			return false, err
		}

		err = s.Store.SaveRoadmap(ctx, r)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, roadmap.ErrConflict) {
			return false, err
		}
		lastErr = err
	}
	return false, lastErr
}
