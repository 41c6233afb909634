// Package dispatch routes inbound message events to command handlers.
// All mutation flows through a single worker goroutine, so two commands
// never race on the same roadmap inside one process; the store's version
// check covers races across processes.
package dispatch

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/samkari/roadmap-service/internal/commands"
	"github.com/samkari/roadmap-service/internal/policy"
	"github.com/samkari/roadmap-service/types"
	"github.com/samkari/roadmap-service/utils"
)

const (
	queueSize     = 1000
	sweepInterval = 5 * time.Second

	// processingEmoji marks the triggering message while its handler runs.
	processingEmoji = "⏳"
)

// Dispatcher owns the command registry, the replay filter and the work
// queue.
type Dispatcher struct {
	deps     *commands.Dependencies
	registry map[string]*commands.Command
	dedup    *Dedup

	// Prefix, when set, must lead every command message ("!tasks").
	// Empty means bare verbs are matched.
	Prefix string

	queue chan *types.MessageEvent
}

func New(deps *commands.Dependencies) *Dispatcher {
	return &Dispatcher{
		deps:     deps,
		registry: commands.Registry(),
		dedup:    NewDedup(),
		queue:    make(chan *types.MessageEvent, queueSize),
	}
}

// Enqueue hands an event to the worker without blocking the gateway read
// loop. Overflow drops the event with an alarm rather than stalling the
// websocket.
func (d *Dispatcher) Enqueue(ev *types.MessageEvent) {
	utils.Default.EventsReceived.Add(1)
	select {
	case d.queue <- ev:
	default:
		log.Printf("ALARM Dispatch: queue full, dropping event %s in channel %s", ev.MessageID, ev.ChannelID)
	}
}

// Run consumes the queue and sweeps expired confirmations until ctx is
// cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	log.Println("Dispatch: worker started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Dispatch: worker stopping")
			return
		case <-ticker.C:
			d.sweepConfirms()
		case ev := <-d.queue:
			d.process(ctx, ev)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, ev *types.MessageEvent) {
	if ev.MessageID != "" && d.dedup.Seen(ev.ChannelID, ev.MessageID) {
		log.Printf("Dispatch: skipping replayed event %s in channel %s", ev.MessageID, ev.ChannelID)
		return
	}

	// A pending confirmation claims the actor's next message in the
	// channel, whatever it says.
	if p, ok := d.deps.Confirm.Take(ev.ChannelID, ev.ActorID); ok {
		d.resolveConfirm(ctx, ev, p)
		return
	}

	cmd, args, ok := d.match(ev.Content)
	if !ok {
		return
	}

	req := &commands.Request{
		Event: ev,
		Actor: policy.FromEvent(ev),
		Name:  cmd.Name,
		Args:  args,
	}

	utils.Default.CommandsRun.Add(1)
	indicated := false
	if ev.MessageID != "" {
		if err := d.deps.Gateway.AddReaction(ev.ChannelID, ev.MessageID, processingEmoji); err != nil {
			log.Printf("Dispatch: processing indicator failed for %s: %v", ev.MessageID, err)
		} else {
			indicated = true
		}
	}
	reply, err := cmd.Execute(ctx, req, d.deps)
	if indicated {
		if err := d.deps.Gateway.RemoveReaction(ev.ChannelID, ev.MessageID, processingEmoji); err != nil {
			log.Printf("Dispatch: processing indicator cleanup failed for %s: %v", ev.MessageID, err)
		}
	}
	if err != nil {
		utils.Default.CommandsFailed.Add(1)
		log.Printf("ALARM Dispatch: %s failed in channel %s: %v", cmd.Name, ev.ChannelID, err)
		reply = &types.Reply{
			ChannelID: ev.ChannelID,
			ReplyToID: ev.MessageID,
			Embed: &types.Embed{
				Title:       "⚠️ Something Went Wrong",
				Description: "The command could not be completed. Please try again in a moment.",
				Color:       types.ColorRed,
			},
		}
	}
	d.send(reply)
}

// match parses the message into a registered command and its argument
// tokens. Non-command chatter returns ok=false and is ignored.
func (d *Dispatcher) match(content string) (*commands.Command, []string, bool) {
	content = strings.TrimSpace(content)
	if d.Prefix != "" {
		if !strings.HasPrefix(content, d.Prefix) {
			return nil, nil, false
		}
		content = strings.TrimPrefix(content, d.Prefix)
	}

	tokens := strings.Fields(content)
	if len(tokens) == 0 {
		return nil, nil, false
	}
	cmd, ok := d.registry[strings.ToLower(tokens[0])]
	if !ok {
		return nil, nil, false
	}
	return cmd, tokens[1:], true
}

func (d *Dispatcher) resolveConfirm(ctx context.Context, ev *types.MessageEvent, p *commands.PendingConfirm) {
	// The prompt is stale once the confirmation resolves either way.
	if p.PromptID != "" {
		if err := d.deps.Gateway.DeleteMessage(p.ChannelID, p.PromptID); err != nil {
			log.Printf("Dispatch: prompt cleanup failed for %s: %v", p.PromptID, err)
		}
	}

	if !p.Matches(ev.Content) {
		d.send(commands.CancelNotice(ev, p))
		return
	}

	var (
		reply *types.Reply
		err   error
	)
	switch p.Kind {
	case commands.ConfirmEmptyRoadmap:
		reply, err = commands.FinishEmpty(ctx, d.deps, ev, p)
	default:
		reply, err = commands.FinishDelete(ctx, d.deps, ev, p)
	}
	if err != nil {
		d.send(&types.Reply{
			ChannelID: ev.ChannelID,
			ReplyToID: ev.MessageID,
			Embed: &types.Embed{
				Title:       "⚠️ Operation Failed",
				Description: "The confirmed action could not be completed. Please try again.",
				Color:       types.ColorRed,
			},
		})
		return
	}
	d.send(reply)
}

func (d *Dispatcher) sweepConfirms() {
	for _, p := range d.deps.Confirm.Sweep() {
		if _, err := d.deps.Gateway.PostMessage(p.ChannelID,
			"⏰ Confirmation for \""+p.RoadmapName+"\" timed out. Nothing was changed."); err != nil {
			log.Printf("Dispatch: timeout notice failed for channel %s: %v", p.ChannelID, err)
		}
	}
}

func (d *Dispatcher) send(reply *types.Reply) {
	if reply == nil {
		return
	}
	if _, err := d.deps.Gateway.SendReply(reply); err != nil {
		log.Printf("Dispatch: reply send failed for channel %s: %v", reply.ChannelID, err)
		return
	}
	utils.Default.RepliesSent.Add(1)
}
