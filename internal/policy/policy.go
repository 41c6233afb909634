// Package policy holds the access-control rules applied before any roadmap
// mutation or read.
//
// Authorization rules:
//   - Creating or deleting a roadmap requires the guild-wide manage-roles
//     capability.
//   - Adding or deleting a task requires the roadmap role or manage-roles;
//     a user explicitly mentioning themselves in the request is an accepted
//     alternate path (self-targeted task edits).
//   - Completing, hiding, unhiding and viewing tasks require the roadmap
//     role.
//   - Emptying a roadmap requires both manage-roles and the roadmap role.
//   - Viewing completion statistics requires manage-roles.
//
// A denial always names the missing credential and never follows a partial
// mutation.
package policy

import (
	"fmt"
	"slices"

	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

// Action is a roadmap operation subject to authorization.
type Action string

const (
	ActionCreateRoadmap Action = "create_roadmap"
	ActionDeleteRoadmap Action = "delete_roadmap"
	ActionEmptyRoadmap  Action = "empty_roadmap"
	ActionAddTask       Action = "add_task"
	ActionDeleteTask    Action = "delete_task"
	ActionCompleteTask  Action = "complete_task"
	ActionHideTask      Action = "hide_task"
	ActionViewTasks     Action = "view_tasks"
	ActionViewStats     Action = "view_stats"
)

// Actor is the authorization-relevant slice of the user behind a request,
// as resolved by the chat gateway.
type Actor struct {
	ID             string
	RoleIDs        []string
	ManageRoles    bool
	ManageMessages bool
	MentionedIDs   []string
}

// FromEvent builds an Actor from a gateway message event.
func FromEvent(ev *types.MessageEvent) Actor {
	return Actor{
		ID:             ev.ActorID,
		RoleIDs:        ev.ActorRoleIDs,
		ManageRoles:    ev.ManageRoles,
		ManageMessages: ev.ManageMessages,
		MentionedIDs:   ev.MentionedUserIDs,
	}
}

// HoldsRole reports whether the actor holds the given role.
func (a Actor) HoldsRole(roleID string) bool {
	return slices.Contains(a.RoleIDs, roleID)
}

// MentionsSelf reports whether the actor mentioned themselves in the
// triggering message.
func (a Actor) MentionsSelf() bool {
	return slices.Contains(a.MentionedIDs, a.ID)
}

// Authorize checks the actor against the action. r may be nil only for
// ActionCreateRoadmap, which predates the roadmap's existence. The returned
// error wraps roadmap.ErrUnauthorized and names the missing credential.
func Authorize(actor Actor, r *types.Roadmap, action Action) error {
	switch action {
	case ActionCreateRoadmap, ActionDeleteRoadmap, ActionViewStats:
		if !actor.ManageRoles {
			return fmt.Errorf("%w: requires the manage-roles permission", roadmap.ErrUnauthorized)
		}
		return nil

	case ActionEmptyRoadmap:
		if !actor.ManageRoles {
			return fmt.Errorf("%w: requires the manage-roles permission", roadmap.ErrUnauthorized)
		}
		if r == nil || !actor.HoldsRole(r.RoleID) {
			return fmt.Errorf("%w: requires the %s role", roadmap.ErrUnauthorized, roleLabel(r))
		}
		return nil

	case ActionAddTask, ActionDeleteTask:
		if actor.ManageRoles || actor.MentionsSelf() {
			return nil
		}
		if r != nil && actor.HoldsRole(r.RoleID) {
			return nil
		}
		return fmt.Errorf("%w: requires the manage-roles permission, the %s role, or a self-mention", roadmap.ErrUnauthorized, roleLabel(r))

	case ActionCompleteTask, ActionHideTask, ActionViewTasks:
		if r == nil {
			return fmt.Errorf("%w: no roadmap", roadmap.ErrUnauthorized)
		}
		if !actor.HoldsRole(r.RoleID) {
			return fmt.Errorf("%w: requires the %s role", roadmap.ErrUnauthorized, roleLabel(r))
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown action %q", roadmap.ErrUnauthorized, action)
	}
}

func roleLabel(r *types.Roadmap) string {
	if r == nil {
		return "required"
	}
	if r.RoleName != "" {
		return r.RoleName
	}
	return r.RoleID
}
