package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/samkari/roadmap-service/internal/policy"
	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

var addTaskCommand = Command{
	Name:        "addtask",
	Description: "Add a new task to a roadmap with topic organization",
	Usage:       "addtask <roadmap_name> <week_number> <topic_name> <task_title> [link: url1,url2]",
}

func executeAddTask(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if len(req.Args) < 4 {
		return errorReply(req.Event, "❌ Missing Arguments",
			fmt.Sprintf("**Usage:** %s\n**Example:** `addtask web-dev 2 JavaScript Learn Node.js link: https://nodejs.org`\n\n**Note:** Week number from 1 to 52.",
				addTaskCommand.Usage)), nil
	}

	roadmapName := req.Args[0]
	weekNumber, err := strconv.Atoi(req.Args[1])
	if err != nil || weekNumber < roadmap.MinWeek || weekNumber > roadmap.MaxWeek {
		return errorReply(req.Event, "❌ Invalid Week Number",
			"Week number must be between 1 and 52."), nil
	}
	topicName := req.Args[2]
	title, links := titleAndLinks(req.Args[3:])
	if title == "" {
		return errorReply(req.Event, "❌ Missing Data",
			"Make sure to write roadmap name, week number and task title."), nil
	}

	r, err := resolveRoadmapByName(ctx, deps, req.Event, roadmapName)
	if err != nil {
		if errors.Is(err, roadmap.ErrNotFound) {
			return errorReply(req.Event, "❌ Roadmap Not Found",
				fmt.Sprintf(`No roadmap named "%s" exists in this server.`, roadmapName)), nil
		}
		return nil, err
	}

	if err := policy.Authorize(req.Actor, r, policy.ActionAddTask); err != nil {
		return errorReply(req.Event, "❌ Access Denied",
			`You need "Manage Roles" permission, the roadmap role, or a self-mention to add tasks.`), nil
	}

	task, err := roadmap.AddTask(r, roadmap.TaskFields{
		Title:      title,
		Topic:      topicName,
		WeekNumber: weekNumber,
		Links:      links,
		CreatedBy:  req.Event.ActorID,
	})
	if err != nil {
		return replyForError(req.Event, err), nil
	}

	if err := deps.Store.SaveRoadmap(ctx, r); err != nil {
		if errors.Is(err, roadmap.ErrConflict) {
			return replyForError(req.Event, err), nil
		}
		log.Printf("ALARM Commands: addtask save failed for %q: %v", r.ID, err)
		return nil, err
	}

	reply := successReply(req.Event, "✅ Task Added Successfully!",
		fmt.Sprintf("**Task:** %s\n**Topic:** %s\n**Week:** %d\n**Roadmap:** %s", title, topicName, weekNumber, r.Name))
	detail := fmt.Sprintf("**ID:** %d\n**Status:** Pending", task.ID)
	if len(links) > 0 {
		detail += fmt.Sprintf("\n**Links:** %d link(s)", len(links))
	}
	reply.Embed.Fields = append(reply.Embed.Fields, types.EmbedField{
		Name:  "📋 Task Details",
		Value: detail,
	})
	return reply, nil
}
