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

var createCommand = Command{
	Name:        "create",
	Description: "Create a new roadmap with role-based permissions",
	Usage:       "create <roadmap_name> role:@<rolename>",
}

func executeCreate(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error) {
	if err := policy.Authorize(req.Actor, nil, policy.ActionCreateRoadmap); err != nil {
		return errorReply(req.Event, "❌ Access Denied",
			`You need "Manage Roles" permission to create roadmaps.`), nil
	}

	if len(req.Args) < 2 {
		return errorReply(req.Event, "❌ Wrong Usage",
			fmt.Sprintf("**Usage:** %s\n**Example:** `create web-dev role:@Developer`", createCommand.Usage)), nil
	}

	var nameParts []string
	var roleID, roleName string
	for _, arg := range req.Args {
		if id, name, ok := parseRoleArg(arg); ok {
			roleID, roleName = id, name
			break
		}
		nameParts = append(nameParts, arg)
	}
	roadmapName := strings.Join(nameParts, " ")

	if strings.TrimSpace(roadmapName) == "" {
		return errorReply(req.Event, "❌ Invalid Roadmap Name",
			"Please enter a valid roadmap name."), nil
	}
	if roleID == "" && roleName == "" {
		return errorReply(req.Event, "❌ Invalid Role",
			"Could not find the required role. Make sure the role exists and the name is correct."), nil
	}
	if roleID == "" {
		// The gateway only resolves mentions; a bare name is kept as the
		// display label and gates by name match on the actor's roles.
		roleID = roleName
	}

	r, err := roadmap.New(req.Event.GuildID, req.Event.GuildName, roadmapName, roleID, roleName, req.Event.ActorID)
	if err != nil {
		return replyForError(req.Event, err), nil
	}

	if err := deps.Store.CreateRoadmap(ctx, r); err != nil {
		if errors.Is(err, roadmap.ErrAlreadyExists) {
			return errorReply(req.Event, "❌ Roadmap Already Exists",
				fmt.Sprintf(`A roadmap named "**%s**" already exists in this server.`, roadmapName)), nil
		}
		log.Printf("Commands: create %q failed to save: %v", roadmapName, err)
		return nil, err
	}

	return successReply(req.Event, "✅ Roadmap Created Successfully!",
		fmt.Sprintf("**Roadmap Name:** %s\n**Required Role:** %s\n\nUsers with that role can access this roadmap using `myroadmaps` and `showroadmap %s`.",
			roadmapName, roleLabel(r), roadmapName)), nil
}

func roleLabel(r *types.Roadmap) string {
	if r.RoleName != "" {
		return "@" + r.RoleName
	}
	return r.RoleID
}
