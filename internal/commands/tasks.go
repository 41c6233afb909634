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

var tasksCommand = Command{
	Name:        "tasks",
	Description: "Show the tasks of a roadmap, grouped by week and topic",
	Usage:       "tasks [roadmap_name]",
}

func executeTasks(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	explicitName := strings.Join(req.Args, " ")
	r, err := resolveRoadmap(ctx, deps, req, explicitName)
	if err != nil {
		return replyForError(req.Event, err), nil
	}

	if err := policy.Authorize(req.Actor, r, policy.ActionViewTasks); err != nil {
		return errorReply(req.Event, "❌ Access Denied",
			fmt.Sprintf(`You need the "%s" role to view this roadmap.`, roleLabel(r))), nil
	}

	visible := roadmap.VisibleTasksFor(r, req.Event.ActorID)
	if len(visible) == 0 {
		hidden := len(r.Tasks) - len(visible)
		desc := fmt.Sprintf(`The "%s" roadmap has no tasks yet. Use `+"`addtask`"+` to add some.`, r.Name)
		if hidden > 0 {
			desc = fmt.Sprintf(`All %d tasks in the "%s" roadmap are hidden for you. Use `+"`unhide all`"+` to bring them back.`, hidden, r.Name)
		}
		return infoReply(req.Event, fmt.Sprintf("📋 %s Roadmap", r.Name), desc), nil
	}

	completed := 0
	for i := range visible {
		if roadmap.CompletedByUser(&visible[i], req.Event.ActorID) {
			completed++
		}
	}

	reply := infoReply(req.Event, fmt.Sprintf("📋 %s Roadmap", r.Name),
		fmt.Sprintf("**Progress:** %d/%d tasks completed", completed, len(visible)))
	for _, f := range weekFields(visible, req.Event.ActorID) {
		reply.Embed.Fields = append(reply.Embed.Fields, f)
	}
	if hidden := len(r.Tasks) - len(visible); hidden > 0 {
		reply.Embed.Footer = fmt.Sprintf("%d task(s) hidden. Use `unhide all` to show them.", hidden)
	}
	return reply, nil
}

// weekFields renders one embed field per week, tasks grouped by topic
// inside it. Task numbers are the stable roadmap-wide IDs, so the list a
// user sees can skip numbers when some tasks are hidden.
func weekFields(tasks []types.Task, userID string) []types.EmbedField {
	byWeek := map[int][]types.Task{}
	for _, t := range tasks {
		byWeek[t.WeekNumber] = append(byWeek[t.WeekNumber], t)
	}

	weeks := make([]int, 0, len(byWeek))
	for w := range byWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	var fields []types.EmbedField
	for _, w := range weeks {
		var b strings.Builder
		topic := ""
		for _, t := range byWeek[w] {
			if t.Topic != topic {
				topic = t.Topic
				fmt.Fprintf(&b, "**%s**\n", topic)
			}
			mark := "⬜"
			if roadmap.CompletedByUser(&t, userID) {
				mark = "✅"
			}
			fmt.Fprintf(&b, "%s `%d.` %s", mark, t.ID, t.Title)
			for _, link := range t.Links {
				fmt.Fprintf(&b, " [🔗](%s)", link)
			}
			b.WriteString("\n")
		}
		fields = append(fields, types.EmbedField{
			Name:  fmt.Sprintf("📅 Week %d", w),
			Value: strings.TrimSpace(b.String()),
		})
	}
	return fields
}
