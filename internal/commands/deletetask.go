package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/samkari/roadmap-service/internal/policy"
	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

var deleteTaskCommand = Command{
	Name:        "deletetask",
	Description: "Remove a task from a roadmap for everyone",
	Usage:       "deletetask <task_id> [roadmap_name]",
}

func executeDeleteTask(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if len(req.Args) < 1 {
		return errorReply(req.Event, "❌ Missing Task Number",
			fmt.Sprintf("**Usage:** `%s`\n**Example:** `deletetask 3`", deleteTaskCommand.Usage)), nil
	}

	taskID, ok := parseTaskID(req.Args[0])
	if !ok {
		return errorReply(req.Event, "❌ Invalid Task Number",
			"Task number must be a positive integer."), nil
	}

	explicitName := strings.Join(req.Args[1:], " ")
	r, err := resolveRoadmap(ctx, deps, req, explicitName)
	if err != nil {
		return replyForError(req.Event, err), nil
	}

	if err := policy.Authorize(req.Actor, r, policy.ActionDeleteTask); err != nil {
		return errorReply(req.Event, "❌ Access Denied",
			`You need "Manage Roles" permission, the roadmap role, or a self-mention to delete tasks.`), nil
	}

	removed, err := roadmap.DeleteTask(r, taskID)
	if err != nil {
		if errors.Is(err, roadmap.ErrNotFound) {
			return errorReply(req.Event, "❌ Task Not Found",
				fmt.Sprintf(`Task #%d doesn't exist in the "%s" roadmap. It has %d tasks.`,
					taskID, r.Name, len(r.Tasks))), nil
		}
		return replyForError(req.Event, err), nil
	}

	if err := deps.Store.SaveRoadmap(ctx, r); err != nil {
		if errors.Is(err, roadmap.ErrConflict) {
			return replyForError(req.Event, err), nil
		}
		log.Printf("ALARM Commands: deletetask save failed for %q: %v", r.ID, err)
		return nil, err
	}

	reply := successReply(req.Event, "🗑️ Task Deleted",
		fmt.Sprintf("**Task:** %s\n**Topic:** %s\n**Roadmap:** %s", removed.Title, removed.Topic, r.Name))
	reply.Embed.Footer = fmt.Sprintf("Remaining tasks renumbered 1..%d", len(r.Tasks))
	return reply, nil
}
