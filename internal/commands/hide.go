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

var hideCommand = Command{
	Name:        "hide",
	Description: "Hide a task (or all tasks) from your own view of a roadmap",
	Usage:       "hide <task_id|all> [roadmap_name]",
}

func executeHide(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if len(req.Args) < 1 {
		return errorReply(req.Event, "❌ Missing Task Number",
			fmt.Sprintf("**Usage:** `%s`\n**Example:** `hide 3` or `hide all`", hideCommand.Usage)), nil
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
			fmt.Sprintf(`You need the "%s" role to hide tasks in this roadmap.`, roleLabel(r))), nil
	}

	var description string
	if all {
		n := roadmap.HideAll(r, req.Event.ActorID)
		if n == 0 {
			return infoReply(req.Event, "👁️ Nothing To Hide",
				fmt.Sprintf(`Every task in the "%s" roadmap is already hidden for you.`, r.Name)), nil
		}
		description = fmt.Sprintf(`Hid %d task(s) in the "%s" roadmap. Only you are affected.`, n, r.Name)
	} else {
		task := roadmap.FindTask(r, taskID)
		if task == nil {
			return errorReply(req.Event, "❌ Task Not Found",
				fmt.Sprintf(`Task #%d doesn't exist in the "%s" roadmap.`, taskID, r.Name)), nil
		}
		if err := roadmap.HideTask(r, taskID, req.Event.ActorID); err != nil {
			return replyForError(req.Event, err), nil
		}
		description = fmt.Sprintf(`Hid **%s** from your view of the "%s" roadmap.`, task.Title, r.Name)
	}

	if err := deps.Store.SaveRoadmap(ctx, r); err != nil {
		if errors.Is(err, roadmap.ErrConflict) {
			return replyForError(req.Event, err), nil
		}
		log.Printf("ALARM Commands: hide save failed for %q: %v", r.ID, err)
		return nil, err
	}

	reply := successReply(req.Event, "🙈 Task Hidden", description)
	reply.Embed.Footer = "Use `unhide` to bring tasks back."
	return reply, nil
}
