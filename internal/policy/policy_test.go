package policy

import (
	"errors"
	"strings"
	"testing"

	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

func testRoadmap() *types.Roadmap {
	return &types.Roadmap{
		ID:       "guild-1_backend",
		Name:     "backend",
		GuildID:  "guild-1",
		RoleID:   "role-1",
		RoleName: "Developer",
	}
}

func TestAuthorize_CreateRequiresManageRoles(t *testing.T) {
	admin := Actor{ID: "u1", ManageRoles: true}
	if err := Authorize(admin, nil, ActionCreateRoadmap); err != nil {
		t.Errorf("Admin expected allowed, got %v", err)
	}

	member := Actor{ID: "u2", RoleIDs: []string{"role-1"}}
	if err := Authorize(member, nil, ActionCreateRoadmap); !errors.Is(err, roadmap.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthorize_DeleteRoadmapRequiresManageRoles(t *testing.T) {
	r := testRoadmap()

	// Holding the roadmap role is not enough for roadmap deletion.
	member := Actor{ID: "u2", RoleIDs: []string{"role-1"}}
	if err := Authorize(member, r, ActionDeleteRoadmap); !errors.Is(err, roadmap.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthorize_TaskMutationRequiresRole(t *testing.T) {
	r := testRoadmap()

	holder := Actor{ID: "u2", RoleIDs: []string{"role-1"}}
	outsider := Actor{ID: "u3"}

	for _, action := range []Action{ActionCompleteTask, ActionHideTask, ActionViewTasks} {
		if err := Authorize(holder, r, action); err != nil {
			t.Errorf("%s: role holder expected allowed, got %v", action, err)
		}
		if err := Authorize(outsider, r, action); !errors.Is(err, roadmap.ErrUnauthorized) {
			t.Errorf("%s: outsider expected ErrUnauthorized, got %v", action, err)
		}
	}
}

func TestAuthorize_SelfMentionPath(t *testing.T) {
	r := testRoadmap()

	// A self-mention authorizes add/delete task without the role.
	selfTarget := Actor{ID: "u3", MentionedIDs: []string{"u3"}}
	if err := Authorize(selfTarget, r, ActionAddTask); err != nil {
		t.Errorf("Self-mention expected allowed for add, got %v", err)
	}
	if err := Authorize(selfTarget, r, ActionDeleteTask); err != nil {
		t.Errorf("Self-mention expected allowed for delete, got %v", err)
	}

	// Mentioning someone else is not the self-mention path.
	otherTarget := Actor{ID: "u3", MentionedIDs: []string{"u4"}}
	if err := Authorize(otherTarget, r, ActionAddTask); !errors.Is(err, roadmap.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}

	// The self-mention path does not extend to completion.
	if err := Authorize(selfTarget, r, ActionCompleteTask); !errors.Is(err, roadmap.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for complete, got %v", err)
	}
}

func TestAuthorize_DenialNamesRole(t *testing.T) {
	r := testRoadmap()
	outsider := Actor{ID: "u3"}

	err := Authorize(outsider, r, ActionCompleteTask)
	if err == nil {
		t.Fatal("Expected denial")
	}
	if got := err.Error(); !strings.Contains(got, "Developer") {
		t.Errorf("Denial should name the missing role, got %q", got)
	}
}

func TestAuthorize_ViewStatsRequiresManageRoles(t *testing.T) {
	// Stats are guild-wide, so no roadmap is needed for the check.
	admin := Actor{ID: "u1", ManageRoles: true}
	if err := Authorize(admin, nil, ActionViewStats); err != nil {
		t.Errorf("Admin expected allowed, got %v", err)
	}

	holder := Actor{ID: "u2", RoleIDs: []string{"role-1"}}
	if err := Authorize(holder, testRoadmap(), ActionViewStats); !errors.Is(err, roadmap.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthorize_EmptyRoadmapRequiresBothCredentials(t *testing.T) {
	r := testRoadmap()

	both := Actor{ID: "u1", ManageRoles: true, RoleIDs: []string{"role-1"}}
	if err := Authorize(both, r, ActionEmptyRoadmap); err != nil {
		t.Errorf("Admin with role expected allowed, got %v", err)
	}

	// Manage-roles alone is not enough, and neither is the role alone.
	adminOnly := Actor{ID: "u2", ManageRoles: true}
	if err := Authorize(adminOnly, r, ActionEmptyRoadmap); !errors.Is(err, roadmap.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for admin without role, got %v", err)
	}
	holderOnly := Actor{ID: "u3", RoleIDs: []string{"role-1"}}
	if err := Authorize(holderOnly, r, ActionEmptyRoadmap); !errors.Is(err, roadmap.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for role holder without manage-roles, got %v", err)
	}
}
