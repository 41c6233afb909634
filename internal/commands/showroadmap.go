package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samkari/roadmap-service/internal/policy"
	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

var showRoadmapCommand = Command{
	Name:        "showroadmap",
	Description: "Show a roadmap's details and topic outline",
	Usage:       "showroadmap <roadmap_name>",
}

func executeShowRoadmap(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if len(req.Args) < 1 {
		return errorReply(req.Event, "❌ Missing Roadmap Name",
			fmt.Sprintf("**Usage:** `%s`\n**Example:** `showroadmap backend`", showRoadmapCommand.Usage)), nil
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

	if err := policy.Authorize(req.Actor, r, policy.ActionViewTasks); err != nil {
		return errorReply(req.Event, "❌ Access Denied",
			fmt.Sprintf(`You need the "%s" role to view this roadmap.`, roleLabel(r))), nil
	}

	stats := roadmap.Stats(r)
	reply := infoReply(req.Event, fmt.Sprintf("🗺️ %s", r.Name),
		fmt.Sprintf("**Role:** %s\n**Tasks:** %d\n**Active users:** %d\n**Created:** %s",
			roleLabel(r), stats.TotalTasks, len(stats.ActiveUsers), r.CreatedAt))

	if outline := topicOutline(r); outline != "" {
		reply.Embed.Fields = append(reply.Embed.Fields, types.EmbedField{
			Name:  "📚 Topics",
			Value: outline,
		})
	}
	return reply, nil
}

func topicOutline(r *types.Roadmap) string {
	counts := map[string]int{}
	var order []string
	for _, t := range r.Tasks {
		if _, seen := counts[t.Topic]; !seen {
			order = append(order, t.Topic)
		}
		counts[t.Topic]++
	}

	var b strings.Builder
	for _, topic := range order {
		fmt.Fprintf(&b, "• **%s** — %d task(s)\n", topic, counts[topic])
	}
	return strings.TrimSpace(b.String())
}
