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

var doneCommand = Command{
	Name:        "done",
	Description: "Mark a task as completed for yourself",
	Usage:       "done <task_id> [roadmap_name]",
}

func executeDone(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if len(req.Args) < 1 {
		return errorReply(req.Event, "❌ Missing Task Number",
			fmt.Sprintf("**Usage:** `%s`\n**Example:** `done 3`", doneCommand.Usage)), nil
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

	if err := policy.Authorize(req.Actor, r, policy.ActionCompleteTask); err != nil {
		return errorReply(req.Event, "❌ Access Denied",
			fmt.Sprintf(`You need the "%s" role to complete tasks in this roadmap.`, roleLabel(r))), nil
	}

	task := roadmap.FindTask(r, taskID)
	if task == nil {
		return errorReply(req.Event, "❌ Task Not Found",
			fmt.Sprintf(`Task #%d doesn't exist in the "%s" roadmap. It has %d tasks.`,
				taskID, r.Name, len(r.Tasks))), nil
	}

	already, err := roadmap.CompleteTask(r, taskID, req.Event.ActorID)
	if err != nil {
		return replyForError(req.Event, err), nil
	}

	if already {
		return warnReply(req.Event, "⚠️ Already Completed",
			fmt.Sprintf(`You already completed **%s** in the "%s" roadmap.`, task.Title, r.Name)), nil
	}

	if err := deps.Store.SaveRoadmap(ctx, r); err != nil {
		if errors.Is(err, roadmap.ErrConflict) {
			return replyForError(req.Event, err), nil
		}
		log.Printf("ALARM Commands: done save failed for %q: %v", r.ID, err)
		return nil, err
	}

	completed := 0
	for i := range r.Tasks {
		if roadmap.CompletedByUser(&r.Tasks[i], req.Event.ActorID) {
			completed++
		}
	}

	reply := successReply(req.Event, "🎉 Task Completed!",
		fmt.Sprintf("**Task:** %s\n**Topic:** %s\n**Roadmap:** %s", task.Title, task.Topic, r.Name))
	reply.Embed.Fields = append(reply.Embed.Fields, types.EmbedField{
		Name:  "📊 Your Progress",
		Value: fmt.Sprintf("%d of %d tasks completed", completed, len(r.Tasks)),
	})
	return reply, nil
}
