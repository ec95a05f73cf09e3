package hub

import (
	"sync"
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/event"
)

// Pusher is the minimal connection surface the registry tracks: a live
// bidirectional channel that accepts best-effort pushes.
type Pusher interface {
	ConnectionID() string
	UserID() string
	ConnectedAt() time.Time
	TrySend(ev event.WsEvent) bool
	Close()
}

// Registry is the bidirectional map between user identity and the active
// connection. At most one live connection is tracked per user: a new connect
// for the same user silently replaces the prior one (last-connect-wins).
// The mapping is ephemeral process state, never persisted.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]Pusher
	byConn map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]Pusher),
		byConn: make(map[string]string),
	}
}

// Bind records the connection for its user, replacing any prior one. The
// replaced connection is returned so the caller can close it outside the
// registry lock.
func (r *Registry) Bind(p Pusher) Pusher {
	r.mu.Lock()
	defer r.mu.Unlock()

	prior := r.byUser[p.UserID()]
	if prior != nil {
		delete(r.byConn, prior.ConnectionID())
	}

	r.byUser[p.UserID()] = p
	r.byConn[p.ConnectionID()] = p.UserID()
	return prior
}

// Release removes the mapping for a connection. It reports the owning user
// and whether the user actually went offline: releasing a connection that was
// already replaced by a newer one must not flip the user's presence.
// Unknown connections are a no-op.
func (r *Registry) Release(connectionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connectionID]
	if !ok {
		return "", false
	}
	delete(r.byConn, connectionID)

	if cur, ok := r.byUser[userID]; ok && cur.ConnectionID() == connectionID {
		delete(r.byUser, userID)
		return userID, true
	}
	return userID, false
}

// IsOnline reports whether the user has a live connection right now.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUser[userID]
	return ok
}

// Get returns the user's live connection, if any.
func (r *Registry) Get(userID string) (Pusher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byUser[userID]
	return p, ok
}

// Snapshot copies the current connection set so fan-out loops never iterate
// under the lock; a disconnect during iteration cannot corrupt the loop.
func (r *Registry) Snapshot() []Pusher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Pusher, 0, len(r.byUser))
	for _, p := range r.byUser {
		out = append(out, p)
	}
	return out
}

// OnlineUserIDs lists users with a live connection.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
