package commands

import (
	"errors"
	"fmt"

	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

func errorReply(ev *types.MessageEvent, title, description string) *types.Reply {
	return &types.Reply{
		ChannelID: ev.ChannelID,
		ReplyToID: ev.MessageID,
		Embed: &types.Embed{
			Title:       title,
			Description: description,
			Color:       types.ColorRed,
		},
	}
}

func warnReply(ev *types.MessageEvent, title, description string) *types.Reply {
	return &types.Reply{
		ChannelID: ev.ChannelID,
		ReplyToID: ev.MessageID,
		Embed: &types.Embed{
			Title:       title,
			Description: description,
			Color:       types.ColorYellow,
		},
	}
}

func successReply(ev *types.MessageEvent, title, description string) *types.Reply {
	return &types.Reply{
		ChannelID: ev.ChannelID,
		ReplyToID: ev.MessageID,
		Embed: &types.Embed{
			Title:       title,
			Description: description,
			Color:       types.ColorGreen,
		},
	}
}

func infoReply(ev *types.MessageEvent, title, description string) *types.Reply {
	return &types.Reply{
		ChannelID: ev.ChannelID,
		ReplyToID: ev.MessageID,
		Embed: &types.Embed{
			Title:       title,
			Description: description,
			Color:       types.ColorBlurple,
		},
	}
}

// replyForError translates the error taxonomy into a user-facing reply.
func replyForError(ev *types.MessageEvent, err error) *types.Reply {
	switch {
	case errors.Is(err, roadmap.ErrUnauthorized):
		return errorReply(ev, "❌ Access Denied", err.Error())
	case errors.Is(err, roadmap.ErrNotFound):
		return errorReply(ev, "❌ Not Found", err.Error())
	case errors.Is(err, roadmap.ErrAlreadyExists):
		return errorReply(ev, "❌ Already Exists", err.Error())
	case errors.Is(err, roadmap.ErrInvalidArgument):
		return errorReply(ev, "❌ Invalid Input", err.Error())
	case errors.Is(err, roadmap.ErrNoAccessible):
		return errorReply(ev, "❌ No Available Roadmaps",
			"You don't have permission to access any roadmap in this server.")
	case errors.Is(err, roadmap.ErrAmbiguous):
		var amb *AmbiguousError
		if errors.As(err, &amb) {
			return warnReply(ev, "🤔 Multiple Roadmaps Available",
				fmt.Sprintf("You have access to multiple roadmaps: %s\n\nPlease specify the roadmap name.", amb.NameList()))
		}
		return warnReply(ev, "🤔 Multiple Roadmaps Available", "Please specify the roadmap name.")
	case errors.Is(err, roadmap.ErrConflict):
		return warnReply(ev, "⏳ Please Retry",
			"The roadmap changed while your command was running. Nothing was saved; try again.")
	default:
		return errorReply(ev, "❌ Something Went Wrong",
			"An error occurred while handling the command. Please try again.")
	}
}
