package hub

import (
	"sync"

	"github.com/farizks7575/chat-app/pkg/log"
)

// Sink is one live connection's outbound side. The relay only needs to
// push events at it.
type Sink interface {
	SendEvent(v interface{}) error
}

// Presence is the read-only view of the registry handed to the relay.
type Presence interface {
	Lookup(userID string) (Sink, bool)
}

// Hub is the process-wide presence registry: which user is reachable over
// which live connection. Entries are volatile and never survive a restart.
// The hub is mutated only by the connection bridge (Bind/UnbindClient) and
// read by the relay.
type Hub struct {
	mu     sync.RWMutex
	users  map[string]*Client // user id -> live client
	owners map[string]string  // conn id -> user id (reverse index)
}

// NewHub creates an empty presence registry.
func NewHub() *Hub {
	return &Hub{
		users:  make(map[string]*Client),
		owners: make(map[string]string),
	}
}

// Bind maps a user to a connection, unconditionally overwriting any
// existing entry for that user: the last registration wins, so at most one
// entry per user exists at any instant. A connection re-registering under a
// new identity releases its previous one.
func (h *Hub) Bind(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prevUser, ok := h.owners[c.ID]; ok && prevUser != userID {
		if h.users[prevUser] == c {
			delete(h.users, prevUser)
		}
	}
	if prev, ok := h.users[userID]; ok && prev != c {
		delete(h.owners, prev.ID)
	}

	h.users[userID] = c
	h.owners[c.ID] = userID

	log.L().Debug().
		Str(log.FieldUserID, userID).
		Str(log.FieldConnID, c.ID).
		Msg("user bound to connection")
}

// Lookup returns the live connection for a user, if any. Absent means not
// currently connected or unknown.
func (h *Hub) Lookup(userID string) (Sink, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.users[userID]
	if !ok {
		return nil, false
	}
	return c, true
}

// Owner returns the user id a connection is bound to, if any.
func (h *Hub) Owner(c *Client) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userID, ok := h.owners[c.ID]
	return userID, ok
}

// UnbindClient removes the presence entry held by a connection. It is a
// no-op for a connection that never bound, and it never evicts a newer
// binding: the user entry is removed only if it still points at this
// client. Safe to call more than once.
func (h *Hub) UnbindClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID, ok := h.owners[c.ID]
	if !ok {
		return
	}

	delete(h.owners, c.ID)
	if h.users[userID] == c {
		delete(h.users, userID)
	}

	log.L().Debug().
		Str(log.FieldUserID, userID).
		Str(log.FieldConnID, c.ID).
		Msg("user unbound from connection")
}

// ConnectedUsers returns how many users currently have a live connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users)
}

var _ Presence = (*Hub)(nil)
