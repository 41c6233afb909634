package commands

import (
	"context"
	"fmt"

	"github.com/samkari/roadmap-service/types"
)

var helpCommand = Command{
	Name:        "help",
	Description: "Show every command and how to use it",
	Usage:       "help",
}

func executeHelp(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	reply := infoReply(req.Event, "🤖 Samkari Commands",
		"Role-gated learning roadmaps for this server. Commands that change a roadmap need its role or \"Manage Roles\".")
	for _, c := range All() {
		reply.Embed.Fields = append(reply.Embed.Fields, types.EmbedField{
			Name:  fmt.Sprintf("`%s`", c.Usage),
			Value: c.Description,
		})
	}
	return reply, nil
}
