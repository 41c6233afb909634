package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samkari/roadmap-service/internal/policy"
	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

var taskStatsCommand = Command{
	Name:        "taskstats",
	Description: "Show completion statistics for a roadmap",
	Usage:       "taskstats [roadmap_name]",
}

func executeTaskStats(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if err := policy.Authorize(req.Actor, nil, policy.ActionViewStats); err != nil {
		return errorReply(req.Event, "❌ Permission Denied",
			`You need "Manage Roles" permission to view roadmap statistics.`), nil
	}

	explicitName := strings.Join(req.Args, " ")
	r, err := resolveRoadmap(ctx, deps, req, explicitName)
	if err != nil {
		return replyForError(req.Event, err), nil
	}

	stats := roadmap.Stats(r)
	if stats.TotalTasks == 0 {
		return infoReply(req.Event, fmt.Sprintf("📊 %s Statistics", r.Name),
			"This roadmap has no tasks yet."), nil
	}

	reply := infoReply(req.Event, fmt.Sprintf("📊 %s Statistics", r.Name),
		fmt.Sprintf("**Tasks:** %d\n**Total completions:** %d\n**Active users:** %d",
			stats.TotalTasks, stats.TotalCompletions, len(stats.ActiveUsers)))

	type entry struct {
		userID string
		done   int
	}
	entries := make([]entry, 0, len(stats.ActiveUsers))
	for _, userID := range stats.ActiveUsers {
		done := 0
		for j := range r.Tasks {
			if roadmap.CompletedByUser(&r.Tasks[j], userID) {
				done++
			}
		}
		entries = append(entries, entry{userID, done})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].done > entries[j].done })

	var leaderboard strings.Builder
	medals := []string{"🥇", "🥈", "🥉"}
	for i, e := range entries {
		if i >= 10 {
			break
		}
		marker := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			marker = medals[i]
		}
		fmt.Fprintf(&leaderboard, "%s <@%s> — %d/%d (%d%%)\n",
			marker, e.userID, e.done, stats.TotalTasks, e.done*100/stats.TotalTasks)
	}
	if leaderboard.Len() > 0 {
		reply.Embed.Fields = append(reply.Embed.Fields, types.EmbedField{
			Name:  "🏆 Progress",
			Value: strings.TrimSpace(leaderboard.String()),
		})
	}
	return reply, nil
}
