package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/event"
)

// fakePusher records pushed events without a real websocket connection.
type fakePusher struct {
	id     string
	userID string

	mu     sync.Mutex
	events []event.WsEvent
	fail   bool
	closed bool
}

func newFakePusher(id, userID string) *fakePusher {
	return &fakePusher{id: id, userID: userID}
}

func (f *fakePusher) ConnectionID() string   { return f.id }
func (f *fakePusher) UserID() string         { return f.userID }
func (f *fakePusher) ConnectedAt() time.Time { return time.Time{} }

func (f *fakePusher) TrySend(ev event.WsEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false
	}
	f.events = append(f.events, ev)
	return true
}

func (f *fakePusher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakePusher) received() []event.WsEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]event.WsEvent, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakePusher) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestRegistryBindAndRelease(t *testing.T) {
	r := NewRegistry()

	p := newFakePusher("conn-1", "user-1")
	if prior := r.Bind(p); prior != nil {
		t.Fatalf("expected no prior connection, got %v", prior.ConnectionID())
	}

	if !r.IsOnline("user-1") {
		t.Error("expected user-1 to be online after bind")
	}
	if got, ok := r.Get("user-1"); !ok || got.ConnectionID() != "conn-1" {
		t.Errorf("Get returned %v, %v; want conn-1, true", got, ok)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}

	userID, wentOffline := r.Release("conn-1")
	if userID != "user-1" || !wentOffline {
		t.Errorf("Release = (%q, %v), want (user-1, true)", userID, wentOffline)
	}
	if r.IsOnline("user-1") {
		t.Error("expected user-1 offline after release")
	}
}

func TestRegistryLastConnectWins(t *testing.T) {
	r := NewRegistry()

	first := newFakePusher("conn-1", "user-1")
	second := newFakePusher("conn-2", "user-1")

	r.Bind(first)
	prior := r.Bind(second)

	if prior == nil || prior.ConnectionID() != "conn-1" {
		t.Fatalf("expected bind to return the replaced connection, got %v", prior)
	}
	if got, _ := r.Get("user-1"); got.ConnectionID() != "conn-2" {
		t.Errorf("current connection = %s, want conn-2", got.ConnectionID())
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1 after replacement", r.Len())
	}
}

func TestRegistryStaleReleaseKeepsPresence(t *testing.T) {
	r := NewRegistry()

	first := newFakePusher("conn-1", "user-1")
	second := newFakePusher("conn-2", "user-1")
	r.Bind(first)
	r.Bind(second)

	// Releasing the replaced connection must not flip the user's presence.
	if _, wentOffline := r.Release("conn-1"); wentOffline {
		t.Error("releasing a replaced connection reported the user offline")
	}
	if !r.IsOnline("user-1") {
		t.Error("user-1 went offline while conn-2 is still bound")
	}

	userID, wentOffline := r.Release("conn-2")
	if userID != "user-1" || !wentOffline {
		t.Errorf("Release(conn-2) = (%q, %v), want (user-1, true)", userID, wentOffline)
	}
}

func TestRegistryReleaseUnknownConnection(t *testing.T) {
	r := NewRegistry()

	if userID, wentOffline := r.Release("no-such-conn"); userID != "" || wentOffline {
		t.Errorf("Release of unknown connection = (%q, %v), want no-op", userID, wentOffline)
	}
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Bind(newFakePusher("conn-1", "user-1"))
	r.Bind(newFakePusher("conn-2", "user-2"))

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot size = %d, want 2", len(snap))
	}

	// Mutating the registry after the snapshot must not affect the copy.
	r.Release("conn-1")
	if len(snap) != 2 {
		t.Error("snapshot changed after release")
	}

	ids := r.OnlineUserIDs()
	if len(ids) != 1 || ids[0] != "user-2" {
		t.Errorf("OnlineUserIDs = %v, want [user-2]", ids)
	}
}
