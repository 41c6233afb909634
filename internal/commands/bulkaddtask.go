package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/samkari/roadmap-service/internal/policy"
	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

var bulkAddTaskCommand = Command{
	Name:        "bulkaddtask",
	Description: "Add multiple tasks to a roadmap at once with topics and optional links",
	Usage:       "bulkaddtask <roadmap_name> <week_number> T:<topic> task1 [link:url1,url2] | task2 | T:<new_topic> task3",
}

func executeBulkAddTask(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if len(req.Args) < 3 {
		return errorReply(req.Event, "❌ Missing Arguments",
			fmt.Sprintf("**Usage:** `%s`\n**Example:** `bulkaddtask backend 2 T:Node.js Learn basics link:url1 | Setup server | T:Database Create models`",
				bulkAddTaskCommand.Usage)), nil
	}

	// The roadmap name may contain spaces; the week number is the first
	// in-range integer token after it.
	weekIndex := -1
	weekNumber := 0
	for i := 1; i < len(req.Args); i++ {
		if n, err := strconv.Atoi(req.Args[i]); err == nil && n >= roadmap.MinWeek && n <= roadmap.MaxWeek {
			weekNumber, weekIndex = n, i
			break
		}
	}
	if weekIndex == -1 {
		return errorReply(req.Event, "❌ Invalid Week Number",
			"Week number must be between 1 and 52."), nil
	}

	roadmapName := strings.Join(req.Args[:weekIndex], " ")
	tasksInput := strings.Join(req.Args[weekIndex+1:], " ")
	if strings.TrimSpace(tasksInput) == "" {
		return errorReply(req.Event, "❌ No Tasks Provided",
			"Please provide at least one task with a topic."), nil
	}

	parsed := parseBulkTasks(tasksInput)
	if len(parsed) == 0 {
		return errorReply(req.Event, "❌ No Valid Tasks Found",
			"Please provide tasks in the correct format: T:<topic> task1 link:url1,url2 | task2"), nil
	}

	r, err := resolveRoadmapByName(ctx, deps, req.Event, roadmapName)
	if err != nil {
		if errors.Is(err, roadmap.ErrNotFound) {
			return errorReply(req.Event, "❌ Roadmap Not Found",
				fmt.Sprintf(`Roadmap "%s" doesn't exist in this server.`, roadmapName)), nil
		}
		return nil, err
	}

	if err := policy.Authorize(req.Actor, r, policy.ActionAddTask); err != nil {
		return errorReply(req.Event, "❌ Access Denied",
			`You need "Manage Roles" permission, the roadmap role, or a self-mention to add tasks.`), nil
	}

	fields := make([]roadmap.TaskFields, len(parsed))
	for i, p := range parsed {
		fields[i] = roadmap.TaskFields{
			Title:       p.Title,
			Description: p.Title,
			Topic:       p.Topic,
			WeekNumber:  weekNumber,
			Links:       p.Links,
			CreatedBy:   req.Event.ActorID,
		}
	}

	added, err := roadmap.AddTasks(r, fields)
	if err != nil {
		return replyForError(req.Event, err), nil
	}

	if err := deps.Store.SaveRoadmap(ctx, r); err != nil {
		if errors.Is(err, roadmap.ErrConflict) {
			return replyForError(req.Event, err), nil
		}
		log.Printf("ALARM Commands: bulkaddtask save failed for %q: %v", r.ID, err)
		return nil, err
	}

	reply := successReply(req.Event, "✅ Bulk Tasks Added Successfully!",
		fmt.Sprintf(`Added %d tasks to the "%s" roadmap for Week %d`, len(added), r.Name, weekNumber))
	reply.Embed.Fields = append(reply.Embed.Fields, types.EmbedField{
		Name:  "📋 Added Tasks",
		Value: formatBulkTaskList(added),
	})
	reply.Embed.Footer = fmt.Sprintf("Total tasks in roadmap: %d", len(r.Tasks))
	return reply, nil
}

type bulkTask struct {
	Title string
	Topic string
	Links []string
}

// parseBulkTasks splits pipe-separated entries. "T:<topic>" switches the
// current topic, either standalone or prefixing a task; "link:" starts the
// comma-separated URL list of an entry. Entries without a topic yet are
// dropped.
func parseBulkTasks(input string) []bulkTask {
	var tasks []bulkTask
	currentTopic := ""

	for _, entry := range strings.Split(input, "|") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.HasPrefix(entry, "T:") && !strings.Contains(entry, " ") {
			currentTopic = strings.TrimPrefix(entry, "T:")
			continue
		}
		if strings.HasPrefix(entry, "T:") {
			if idx := strings.Index(entry, " "); idx != -1 {
				currentTopic = entry[2:idx]
				entry = strings.TrimSpace(entry[idx+1:])
			}
		}

		title := entry
		var links []string
		if idx := strings.Index(entry, "link:"); idx != -1 {
			title = strings.TrimSpace(entry[:idx])
			links = parseLinks(entry[idx:])
		}

		if currentTopic != "" && title != "" {
			tasks = append(tasks, bulkTask{Title: title, Topic: currentTopic, Links: links})
		}
	}
	return tasks
}

func formatBulkTaskList(tasks []types.Task) string {
	byTopic := map[string][]types.Task{}
	var order []string
	for _, t := range tasks {
		if _, seen := byTopic[t.Topic]; !seen {
			order = append(order, t.Topic)
		}
		byTopic[t.Topic] = append(byTopic[t.Topic], t)
	}

	var b strings.Builder
	for _, topic := range order {
		fmt.Fprintf(&b, "**%s:**\n", topic)
		for _, t := range byTopic[topic] {
			fmt.Fprintf(&b, "  %d. %s", t.ID, t.Title)
			if len(t.Links) > 0 {
				b.WriteString(" 🔗")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "No tasks to display"
	}
	return out
}
