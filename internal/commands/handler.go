// Package commands implements one handler per user-facing verb. Every
// handler follows the same shape: parse args, resolve the target roadmap,
// authorize the actor, mutate or read, persist if mutated, report.
package commands

import (
	"context"

	"github.com/samkari/roadmap-service/internal/policy"
	"github.com/samkari/roadmap-service/types"
)

// Store is the persistence surface the handlers need. *storage.Store is
// the production implementation.
type Store interface {
	CreateRoadmap(ctx context.Context, r *types.Roadmap) error
	GetRoadmap(ctx context.Context, id string) (*types.Roadmap, error)
	SaveRoadmap(ctx context.Context, r *types.Roadmap) error
	DeleteRoadmap(ctx context.Context, id string) (bool, error)
	GetRoadmapsByGuild(ctx context.Context, guildID string) ([]*types.Roadmap, error)
	CreateScheduledTask(ctx context.Context, st *types.ScheduledTask) error
	GetScheduledTasks(ctx context.Context) ([]*types.ScheduledTask, error)
	DeleteScheduledTask(ctx context.Context, id string) (bool, error)
	SaveAutoPost(ctx context.Context, cfg *types.AutoPostConfig) error
}

// Messenger is the outbound side of the chat gateway as the handlers and
// the dispatcher use it.
type Messenger interface {
	SendReply(reply *types.Reply) (string, error)
	PostMessage(channelID, content string) (string, error)
	DeleteMessage(channelID, messageID string) error
	AddReaction(channelID, messageID, emoji string) error
	RemoveReaction(channelID, messageID, emoji string) error
}

// Dependencies carries everything a handler may need. The dispatcher owns
// one instance for the process lifetime.
type Dependencies struct {
	Store   Store
	Gateway Messenger
	Confirm *ConfirmTracker
}

// Request is a parsed inbound command invocation.
type Request struct {
	Event *types.MessageEvent
	Actor policy.Actor
	Name  string   // matched command verb
	Args  []string // tokens after the verb
}

// HandlerFunc executes one command and returns the user-facing reply.
// A nil reply means the handler already sent everything it wanted to.
// Returned errors are infrastructure failures (store I/O and the like);
// expected user errors are reported as replies, never as errors.
type HandlerFunc func(ctx context.Context, req *Request, deps *Dependencies) (*types.Reply, error)

// Command pairs a handler with its registry metadata.
type Command struct {
	Name        string
	Description string
	Usage       string
	Execute     HandlerFunc
}
