package commands

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/samkari/roadmap-service/internal/policy"
	"github.com/samkari/roadmap-service/types"
)

var autoPostCommand = Command{
	Name:        "autopost",
	Description: "Rotate reminder messages into a channel once a day",
	Usage:       "autopost set <message1> | <message2> | ... or autopost stop",
}

func executeAutoPost(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if err := policy.Authorize(req.Actor, nil, policy.ActionCreateRoadmap); err != nil {
		return errorReply(req.Event, "❌ Permission Denied",
			`You need "Manage Roles" permission to configure auto-posting.`), nil
	}

	if len(req.Args) < 1 {
		return errorReply(req.Event, "❌ Missing Subcommand",
			fmt.Sprintf("**Usage:** `%s`", autoPostCommand.Usage)), nil
	}

	switch strings.ToLower(req.Args[0]) {
	case "set":
		return executeAutoPostSet(ctx, req, deps, strings.Join(req.Args[1:], " "))
	case "stop":
		return executeAutoPostStop(ctx, req, deps)
	default:
		return errorReply(req.Event, "❌ Unknown Subcommand",
			"Use `autopost set <messages>` or `autopost stop`."), nil
	}
}

func executeAutoPostSet(ctx context.Context, req *Request, deps *Dependencies, input string) (*types.Reply, error) {
	var messages []string
	for _, m := range strings.Split(input, "|") {
		if m = strings.TrimSpace(m); m != "" {
			messages = append(messages, m)
		}
	}
	if len(messages) == 0 {
		return errorReply(req.Event, "❌ No Messages Provided",
			"Provide at least one message, separated by `|`."), nil
	}

	cfg := &types.AutoPostConfig{
		GuildID:   req.Event.GuildID,
		Enabled:   true,
		ChannelID: req.Event.ChannelID,
		Messages:  messages,
	}
	if err := deps.Store.SaveAutoPost(ctx, cfg); err != nil {
		log.Printf("ALARM Commands: autopost save failed for guild %q: %v", cfg.GuildID, err)
		return nil, err
	}

	return successReply(req.Event, "📣 Auto-Posting Enabled",
		fmt.Sprintf("%d message(s) will rotate into this channel.", len(messages))), nil
}

func executeAutoPostStop(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	cfg := &types.AutoPostConfig{
		GuildID: req.Event.GuildID,
		Enabled: false,
	}
	if err := deps.Store.SaveAutoPost(ctx, cfg); err != nil {
		log.Printf("ALARM Commands: autopost stop failed for guild %q: %v", cfg.GuildID, err)
		return nil, err
	}
	return successReply(req.Event, "🔕 Auto-Posting Stopped",
		"No more rotating messages will be posted in this server."), nil
}
