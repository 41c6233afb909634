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

var deleteRoadmapCommand = Command{
	Name:        "deleteroadmap",
	Description: "Delete an entire roadmap after a typed confirmation",
	Usage:       "deleteroadmap <roadmap_name>",
}

func executeDeleteRoadmap(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if err := policy.Authorize(req.Actor, nil, policy.ActionDeleteRoadmap); err != nil {
		return errorReply(req.Event, "❌ Permission Denied",
			`You need "Manage Roles" permission to delete roadmaps.`), nil
	}

	if len(req.Args) < 1 {
		return errorReply(req.Event, "❌ Missing Roadmap Name",
			fmt.Sprintf("**Usage:** `%s`\n**Example:** `deleteroadmap backend`", deleteRoadmapCommand.Usage)), nil
	}

	name := strings.Join(req.Args, " ")
	r, err := resolveRoadmapByName(ctx, deps, req.Event, name)
	if err != nil {
		if errors.Is(err, roadmap.ErrNotFound) {
			return errorReply(req.Event, "❌ Roadmap Not Found",
				fmt.Sprintf(`No roadmap named "%s" exists in this server.`, name)), nil
		}
		return nil, err
	}

	stats := roadmap.Stats(r)
	phrase := fmt.Sprintf("confirm delete %s", strings.ToLower(r.Name))

	reply := warnReply(req.Event, "⚠️ Confirm Roadmap Deletion",
		fmt.Sprintf("You are about to permanently delete the **%s** roadmap.", r.Name))
	reply.Embed.Fields = append(reply.Embed.Fields,
		types.EmbedField{
			Name: "📊 What Will Be Lost",
			Value: fmt.Sprintf("**Tasks:** %d\n**Completions:** %d\n**Active users:** %d",
				stats.TotalTasks, stats.TotalCompletions, len(stats.ActiveUsers)),
		},
		types.EmbedField{
			Name:  "✅ To Proceed",
			Value: fmt.Sprintf("Type `%s` within %d seconds.", phrase, int(ConfirmWindow.Seconds())),
		})
	reply.Embed.Footer = "Any other message cancels the deletion."

	// Send now so the prompt's message id can be attached to the pending
	// entry for later cleanup.
	promptID, err := deps.Gateway.SendReply(reply)
	if err != nil {
		log.Printf("Commands: deleteroadmap prompt send failed: %v", err)
		return nil, err
	}

	deps.Confirm.Put(&PendingConfirm{
		Kind:        ConfirmDeleteRoadmap,
		ChannelID:   req.Event.ChannelID,
		UserID:      req.Event.ActorID,
		RoadmapID:   r.ID,
		RoadmapName: r.Name,
		Phrase:      phrase,
		PromptID:    promptID,
	})
	return nil, nil
}

// FinishDelete completes a confirmed roadmap deletion. The dispatcher
// calls it once the actor has typed the confirmation phrase.
func FinishDelete(ctx context.Context, deps *Dependencies, ev *types.MessageEvent, p *PendingConfirm) (*types.Reply, error) {
	existed, err := deps.Store.DeleteRoadmap(ctx, p.RoadmapID)
	if err != nil {
		log.Printf("ALARM Commands: roadmap delete failed for %q: %v", p.RoadmapID, err)
		return nil, err
	}
	if !existed {
		return warnReply(ev, "⚠️ Already Gone",
			fmt.Sprintf(`The "%s" roadmap no longer exists.`, p.RoadmapName)), nil
	}
	return successReply(ev, "🗑️ Roadmap Deleted",
		fmt.Sprintf(`The "%s" roadmap and all of its tasks have been permanently deleted.`, p.RoadmapName)), nil
}

// CancelNotice is the reply sent when a pending confirmation is resolved
// by a non-matching message.
func CancelNotice(ev *types.MessageEvent, p *PendingConfirm) *types.Reply {
	var description string
	switch p.Kind {
	case ConfirmEmptyRoadmap:
		description = fmt.Sprintf(`The "%s" roadmap was not emptied. Nothing was changed.`, p.RoadmapName)
	default:
		description = fmt.Sprintf(`The "%s" roadmap is safe. Nothing was deleted.`, p.RoadmapName)
	}
	return &types.Reply{
		ChannelID: ev.ChannelID,
		ReplyToID: ev.MessageID,
		Embed: &types.Embed{
			Title:       "❌ Operation Cancelled",
			Description: description,
			Color:       types.ColorGray,
		},
	}
}
