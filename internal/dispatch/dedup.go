package dispatch

import (
	"sync"
	"time"
)

// DedupWindow is how long a trigger message is remembered. Gateway
// reconnects can replay recent events; anything older than the window is
// assumed gone from the replay buffer.
const DedupWindow = 5 * time.Minute

// Dedup remembers recently handled trigger messages per channel so a
// replayed event never runs a command twice.
type Dedup struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	nowFn func() time.Time
}

func NewDedup() *Dedup {
	return &Dedup{
		seen:  make(map[string]time.Time),
		nowFn: time.Now,
	}
}

// Seen records (channelID, messageID) and reports whether it was already
// inside the window. Expired entries are pruned on the way through.
func (d *Dedup) Seen(channelID, messageID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.nowFn()
	for key, at := range d.seen {
		if now.Sub(at) > DedupWindow {
			delete(d.seen, key)
		}
	}

	key := channelID + ":" + messageID
	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = now
	return false
}
