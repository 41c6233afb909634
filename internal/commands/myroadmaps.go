package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

var myRoadmapsCommand = Command{
	Name:        "myroadmaps",
	Description: "List the roadmaps you can access in this server",
	Usage:       "myroadmaps",
}

func executeMyRoadmaps(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	accessible, err := accessibleRoadmaps(ctx, deps, req)
	if err != nil {
		return nil, err
	}

	if len(accessible) == 0 {
		return infoReply(req.Event, "📭 No Roadmaps",
			"You don't have access to any roadmap in this server. Ask a moderator for the matching role."), nil
	}

	var b strings.Builder
	for _, r := range accessible {
		done := 0
		for i := range r.Tasks {
			if roadmap.CompletedByUser(&r.Tasks[i], req.Event.ActorID) {
				done++
			}
		}
		fmt.Fprintf(&b, "**%s** — %d/%d tasks completed\n", r.Name, done, len(r.Tasks))
	}

	reply := infoReply(req.Event, "🗺️ Your Roadmaps",
		strings.TrimSpace(b.String()))
	reply.Embed.Footer = "Use `tasks <roadmap_name>` to see the tasks of one."
	return reply, nil
}
