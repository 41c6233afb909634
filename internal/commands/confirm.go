package commands

import (
	"strings"
	"sync"
	"time"
)

// ConfirmWindow is how long a destructive command waits for its typed
// confirmation phrase before cancelling itself.
const ConfirmWindow = 30 * time.Second

// ConfirmKind selects which destructive action a confirmed phrase runs.
type ConfirmKind int

const (
	ConfirmDeleteRoadmap ConfirmKind = iota
	ConfirmEmptyRoadmap
)

// PendingConfirm is a destructive action awaiting its confirmation phrase.
type PendingConfirm struct {
	Kind        ConfirmKind
	ChannelID   string
	UserID      string
	RoadmapID   string
	RoadmapName string
	Phrase      string // exact text that confirms, lowercased
	PromptID    string // message id of the confirmation prompt
	ExpiresAt   time.Time
}

// ConfirmTracker holds at most one pending confirmation per (channel,
// user). Entries expire to a cancelled outcome; Sweep reports expired
// entries so the dispatcher can announce the timeout.
type ConfirmTracker struct {
	mu      sync.Mutex
	pending map[string]*PendingConfirm
	nowFn   func() time.Time
}

func NewConfirmTracker() *ConfirmTracker {
	return &ConfirmTracker{
		pending: make(map[string]*PendingConfirm),
		nowFn:   time.Now,
	}
}

func confirmKey(channelID, userID string) string {
	return channelID + ":" + userID
}

// Put registers a pending confirmation, replacing any previous one for the
// same channel and user.
func (t *ConfirmTracker) Put(p *PendingConfirm) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p.ExpiresAt = t.nowFn().Add(ConfirmWindow)
	t.pending[confirmKey(p.ChannelID, p.UserID)] = p
}

// Take consumes the pending confirmation for (channel, user), if any.
// A single message resolves it either way, so the entry is removed
// regardless of whether the text matches.
func (t *ConfirmTracker) Take(channelID, userID string) (*PendingConfirm, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := confirmKey(channelID, userID)
	p, ok := t.pending[key]
	if !ok {
		return nil, false
	}
	delete(t.pending, key)
	if t.nowFn().After(p.ExpiresAt) {
		return nil, false
	}
	return p, true
}

// Matches reports whether the message text is the exact confirmation
// phrase (case-insensitive, surrounding whitespace ignored).
func (p *PendingConfirm) Matches(content string) bool {
	return strings.ToLower(strings.TrimSpace(content)) == p.Phrase
}

// Sweep removes and returns all expired entries.
func (t *ConfirmTracker) Sweep() []*PendingConfirm {
	t.mu.Lock()
	defer t.mu.Unlock()

	var expired []*PendingConfirm
	now := t.nowFn()
	for key, p := range t.pending {
		if now.After(p.ExpiresAt) {
			expired = append(expired, p)
			delete(t.pending, key)
		}
	}
	return expired
}
