package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samkari/roadmap-service/internal/policy"
	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

var scheduleCommand = Command{
	Name:        "schedule",
	Description: "Manage weekly recurring tasks for a roadmap",
	Usage:       "schedule add <roadmap_name> <day> <task_title> | schedule list | schedule remove <id>",
}

func capitalizeDay(day string) string {
	if day == "" {
		return day
	}
	return strings.ToUpper(day[:1]) + day[1:]
}

var weekDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

func executeSchedule(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if err := policy.Authorize(req.Actor, nil, policy.ActionCreateRoadmap); err != nil {
		return errorReply(req.Event, "❌ Permission Denied",
			`You need "Manage Roles" permission to manage schedules.`), nil
	}

	if len(req.Args) < 1 {
		return errorReply(req.Event, "❌ Missing Subcommand",
			fmt.Sprintf("**Usage:** `%s`", scheduleCommand.Usage)), nil
	}

	switch strings.ToLower(req.Args[0]) {
	case "add":
		return executeScheduleAdd(ctx, req, deps, req.Args[1:])
	case "list":
		return executeScheduleList(ctx, req, deps)
	case "remove":
		return executeScheduleRemove(ctx, req, deps, req.Args[1:])
	default:
		return errorReply(req.Event, "❌ Unknown Subcommand",
			"Use `schedule add`, `schedule list` or `schedule remove`."), nil
	}
}

func executeScheduleAdd(ctx context.Context, req *Request, deps *Dependencies, args []string) (*types.Reply, error) {
	if len(args) < 3 {
		return errorReply(req.Event, "❌ Missing Arguments",
			"**Usage:** `schedule add <roadmap_name> <day> <task_title>`\n**Example:** `schedule add backend monday Weekly code review`"), nil
	}

	roadmapName := args[0]
	day := strings.ToLower(args[1])
	if !weekDays[day] {
		return errorReply(req.Event, "❌ Invalid Day",
			"Day must be a weekday name, e.g. `monday`."), nil
	}
	title := strings.Join(args[2:], " ")

	r, err := resolveRoadmapByName(ctx, deps, req.Event, roadmapName)
	if err != nil {
		if errors.Is(err, roadmap.ErrNotFound) {
			return errorReply(req.Event, "❌ Roadmap Not Found",
				fmt.Sprintf(`No roadmap named "%s" exists in this server.`, roadmapName)), nil
		}
		return nil, err
	}

	st := &types.ScheduledTask{
		ID:          uuid.NewString(),
		GuildID:     req.Event.GuildID,
		RoadmapID:   r.ID,
		RoadmapName: r.Name,
		Title:       title,
		DayOfWeek:   day,
		ChannelID:   req.Event.ChannelID,
		CreatedBy:   req.Event.ActorID,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Active:      true,
	}
	if err := deps.Store.CreateScheduledTask(ctx, st); err != nil {
		log.Printf("ALARM Commands: schedule add save failed: %v", err)
		return nil, err
	}

	reply := successReply(req.Event, "⏰ Weekly Task Scheduled",
		fmt.Sprintf("**Task:** %s\n**Roadmap:** %s\n**Every:** %s", title, r.Name, capitalizeDay(day)))
	reply.Embed.Footer = fmt.Sprintf("Schedule ID: %s", st.ID)
	return reply, nil
}

func executeScheduleList(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	all, err := deps.Store.GetScheduledTasks(ctx)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, st := range all {
		if st.GuildID != req.Event.GuildID || !st.Active {
			continue
		}
		fmt.Fprintf(&b, "• **%s** → %s every %s\n  `%s`\n", st.Title, st.RoadmapName, st.DayOfWeek, st.ID)
	}
	if b.Len() == 0 {
		return infoReply(req.Event, "⏰ Scheduled Tasks",
			"No weekly tasks are scheduled in this server."), nil
	}

	reply := infoReply(req.Event, "⏰ Scheduled Tasks", strings.TrimSpace(b.String()))
	reply.Embed.Footer = "Use `schedule remove <id>` to cancel one."
	return reply, nil
}

func executeScheduleRemove(ctx context.Context, req *Request, deps *Dependencies, args []string) (*types.Reply, error) {
	if len(args) < 1 {
		return errorReply(req.Event, "❌ Missing Schedule ID",
			"**Usage:** `schedule remove <id>` — get the id from `schedule list`."), nil
	}

	existed, err := deps.Store.DeleteScheduledTask(ctx, args[0])
	if err != nil {
		log.Printf("ALARM Commands: schedule remove failed for %q: %v", args[0], err)
		return nil, err
	}
	if !existed {
		return errorReply(req.Event, "❌ Schedule Not Found",
			fmt.Sprintf("No scheduled task with id `%s` exists.", args[0])), nil
	}
	return successReply(req.Event, "🗑️ Schedule Removed",
		"The weekly task will no longer be added."), nil
}
