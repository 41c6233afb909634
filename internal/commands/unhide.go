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

var unhideCommand = Command{
	Name:        "unhide",
	Description: "Restore a hidden task (or all of them) to your view of a roadmap",
	Usage:       "unhide <task_id|all> [roadmap_name]",
}

func executeUnhide(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if len(req.Args) < 1 {
		return errorReply(req.Event, "❌ Missing Task Number",
			fmt.Sprintf("**Usage:** `%s`\n**Example:** `unhide 3` or `unhide all`", unhideCommand.Usage)), nil
	}

	selector := strings.ToLower(req.Args[0])
	all := selector == "all"
	taskID := 0
	if !all {
		id, ok := parseTaskID(selector)
		if !ok {
			return errorReply(req.Event, "❌ Invalid Task Number",
				"Task number must be a positive integer, or `all`."), nil
		}
		taskID = id
	}

	explicitName := strings.Join(req.Args[1:], " ")
	r, err := resolveRoadmap(ctx, deps, req, explicitName)
	if err != nil {
		return replyForError(req.Event, err), nil
	}

	if err := policy.Authorize(req.Actor, r, policy.ActionHideTask); err != nil {
		return errorReply(req.Event, "❌ Access Denied",
			fmt.Sprintf(`You need the "%s" role to manage your task view in this roadmap.`, roleLabel(r))), nil
	}

	var description string
	if all {
		n := roadmap.UnhideAll(r, req.Event.ActorID)
		if n == 0 {
			return infoReply(req.Event, "👁️ Nothing Hidden",
				fmt.Sprintf(`You have no hidden tasks in the "%s" roadmap.`, r.Name)), nil
		}
		description = fmt.Sprintf(`Restored %d task(s) to your view of the "%s" roadmap.`, n, r.Name)
	} else {
		task := roadmap.FindTask(r, taskID)
		if task == nil {
			return errorReply(req.Event, "❌ Task Not Found",
				fmt.Sprintf(`Task #%d doesn't exist in the "%s" roadmap.`, taskID, r.Name)), nil
		}
		if err := roadmap.UnhideTask(r, taskID, req.Event.ActorID); err != nil {
			return replyForError(req.Event, err), nil
		}
		description = fmt.Sprintf(`Restored **%s** to your view of the "%s" roadmap.`, task.Title, r.Name)
	}

	if err := deps.Store.SaveRoadmap(ctx, r); err != nil {
		if errors.Is(err, roadmap.ErrConflict) {
			return replyForError(req.Event, err), nil
		}
		log.Printf("ALARM Commands: unhide save failed for %q: %v", r.ID, err)
		return nil, err
	}

	return successReply(req.Event, "👁️ Task Visible Again", description), nil
}
