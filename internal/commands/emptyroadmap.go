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

var emptyRoadmapCommand = Command{
	Name:        "emptyroadmap",
	Description: "Remove every task from a roadmap after a typed confirmation",
	Usage:       "emptyroadmap <roadmap_name>",
}

func executeEmptyRoadmap(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if !req.Actor.ManageRoles {
		return errorReply(req.Event, "❌ Permission Denied",
			`You need "Manage Roles" permission to empty roadmaps.`), nil
	}

	if len(req.Args) < 1 {
		return errorReply(req.Event, "❌ Missing Roadmap Name",
			fmt.Sprintf("**Usage:** `%s`\n**Example:** `emptyroadmap backend`", emptyRoadmapCommand.Usage)), nil
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

	if err := policy.Authorize(req.Actor, r, policy.ActionEmptyRoadmap); err != nil {
		return errorReply(req.Event, "❌ Access Denied",
			fmt.Sprintf(`You need the "%s" role to empty this roadmap.`, roleLabel(r))), nil
	}

	if len(r.Tasks) == 0 {
		return infoReply(req.Event, "📭 Nothing To Remove",
			fmt.Sprintf(`The "%s" roadmap has no tasks.`, r.Name)), nil
	}

	phrase := fmt.Sprintf("confirm empty %s", strings.ToLower(r.Name))

	reply := warnReply(req.Event, "⚠️ Confirm Roadmap Emptying",
		fmt.Sprintf("You are about to remove **all %d tasks** from the **%s** roadmap. The roadmap itself is kept.", len(r.Tasks), r.Name))
	reply.Embed.Fields = append(reply.Embed.Fields,
		types.EmbedField{
			Name:  "✅ To Proceed",
			Value: fmt.Sprintf("Type `%s` within %d seconds.", phrase, int(ConfirmWindow.Seconds())),
		})
	reply.Embed.Footer = "Any other message cancels the operation."

	promptID, err := deps.Gateway.SendReply(reply)
	if err != nil {
		log.Printf("Commands: emptyroadmap prompt send failed: %v", err)
		return nil, err
	}

	deps.Confirm.Put(&PendingConfirm{
		Kind:        ConfirmEmptyRoadmap,
		ChannelID:   req.Event.ChannelID,
		UserID:      req.Event.ActorID,
		RoadmapID:   r.ID,
		RoadmapName: r.Name,
		Phrase:      phrase,
		PromptID:    promptID,
	})
	return nil, nil
}

// FinishEmpty completes a confirmed roadmap emptying. The roadmap is
// reloaded first so the count reflects the state at confirmation time.
func FinishEmpty(ctx context.Context, deps *Dependencies, ev *types.MessageEvent, p *PendingConfirm) (*types.Reply, error) {
	r, err := deps.Store.GetRoadmap(ctx, p.RoadmapID)
	if err != nil {
		if errors.Is(err, roadmap.ErrNotFound) {
			return warnReply(ev, "⚠️ Already Gone",
				fmt.Sprintf(`The "%s" roadmap no longer exists.`, p.RoadmapName)), nil
		}
		return nil, err
	}

	removed := roadmap.ClearTasks(r)
	if err := deps.Store.SaveRoadmap(ctx, r); err != nil {
		if errors.Is(err, roadmap.ErrConflict) {
			return replyForError(ev, err), nil
		}
		log.Printf("ALARM Commands: roadmap empty save failed for %q: %v", p.RoadmapID, err)
		return nil, err
	}

	reply := successReply(ev, "✅ Roadmap Emptied Successfully!",
		fmt.Sprintf(`All tasks have been removed from the "%s" roadmap.`, p.RoadmapName))
	reply.Embed.Fields = append(reply.Embed.Fields,
		types.EmbedField{Name: "🗑️ Deleted", Value: fmt.Sprintf("%d tasks", removed)})
	return reply, nil
}
