package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/samkari/roadmap-service/internal/roadmap"
	"github.com/samkari/roadmap-service/types"
)

// AmbiguousError reports that a roadmap selector is required because the
// actor can access more than one roadmap in the guild.
type AmbiguousError struct {
	Names []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%v: candidates %s", roadmap.ErrAmbiguous, e.NameList())
}

func (e *AmbiguousError) Unwrap() error { return roadmap.ErrAmbiguous }

func (e *AmbiguousError) NameList() string { return strings.Join(e.Names, ", ") }

// resolveRoadmapByName looks up a roadmap by display name within the
// event's guild.
func resolveRoadmapByName(ctx context.Context, deps *Dependencies, ev *types.MessageEvent, name string) (*types.Roadmap, error) {
	r, err := deps.Store.GetRoadmap(ctx, types.RoadmapKey(ev.GuildID, name))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// resolveRoadmap picks the target roadmap for a command. With a name it is
// a direct lookup. Without one, the candidate set is the guild's roadmaps
// whose role the actor holds: zero is ErrNoAccessible, exactly one wins,
// more than one is ambiguous and the caller must disambiguate — never
// guess.
func resolveRoadmap(ctx context.Context, deps *Dependencies, req *Request, name string) (*types.Roadmap, error) {
	if strings.TrimSpace(name) != "" {
		return resolveRoadmapByName(ctx, deps, req.Event, name)
	}

	candidates, err := accessibleRoadmaps(ctx, deps, req)
	if err != nil {
		return nil, err
	}

	switch len(candidates) {
	case 0:
		return nil, roadmap.ErrNoAccessible
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.Name
		}
		return nil, &AmbiguousError{Names: names}
	}
}

// accessibleRoadmaps returns the guild's roadmaps whose role the actor
// holds.
func accessibleRoadmaps(ctx context.Context, deps *Dependencies, req *Request) ([]*types.Roadmap, error) {
	all, err := deps.Store.GetRoadmapsByGuild(ctx, req.Event.GuildID)
	if err != nil {
		return nil, err
	}

	var accessible []*types.Roadmap
	for _, r := range all {
		if req.Actor.HoldsRole(r.RoleID) {
			accessible = append(accessible, r)
		}
	}
	return accessible, nil
}
