package dispatch

import (
	"testing"
	"time"
)

func TestDedupSuppressesReplay(t *testing.T) {
	d := NewDedup()
	if d.Seen("c1", "m1") {
		t.Fatal("first sighting must not be a duplicate")
	}
	if !d.Seen("c1", "m1") {
		t.Error("replay inside the window must be suppressed")
	}
	if d.Seen("c1", "m2") {
		t.Error("a different message id is not a duplicate")
	}
	if d.Seen("c2", "m1") {
		t.Error("the same id in another channel is not a duplicate")
	}
}

func TestDedupExpiry(t *testing.T) {
	d := NewDedup()
	now := time.Now()
	d.nowFn = func() time.Time { return now }

	d.Seen("c1", "m1")
	now = now.Add(DedupWindow + time.Second)
	if d.Seen("c1", "m1") {
		t.Error("an entry older than the window should be forgotten")
	}
}
