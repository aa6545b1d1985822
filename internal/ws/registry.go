package ws

import (
	"sync"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

// Registry is the process-wide mapping from role to live, authenticated
// connections. It is entirely in-memory and owned by exactly one Hub; all
// mutation goes through Add and Remove so a concurrent Connections snapshot
// never observes a half-inserted client.
type Registry struct {
	mu sync.RWMutex

	// role -> identity -> set of clients. The same identity may hold
	// several live connections (multi-device).
	partitions map[models.Role]map[string]map[*Client]bool
}

// NewRegistry creates an empty registry with every role partition
// initialized, so concurrent lookups never hit a nil map.
func NewRegistry() *Registry {
	partitions := make(map[models.Role]map[string]map[*Client]bool)
	for _, role := range models.AllRoles() {
		partitions[role] = make(map[string]map[*Client]bool)
	}
	return &Registry{partitions: partitions}
}

// Add inserts an authenticated client into its role partition. Adding the
// same client twice is a no-op, so a client can never appear more than once
// in one partition, and its immutable post-handshake role keeps it out of
// every other partition.
func (r *Registry) Add(c *Client) error {
	if c == nil {
		return ErrNilClient
	}
	role, identity, ok := c.Principal()
	if !ok {
		return ErrNotAuthenticated
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	partition := r.partitions[role]
	if partition[identity] == nil {
		partition[identity] = make(map[*Client]bool)
	}
	partition[identity][c] = true
	return nil
}

// Remove deletes a client from its role partition. Idempotent: removing an
// absent or never-registered client is a no-op.
func (r *Registry) Remove(c *Client) {
	if c == nil {
		return
	}
	role, identity, ok := c.Principal()
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clients, exists := r.partitions[role][identity]
	if !exists {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(r.partitions[role], identity)
	}
}

// Connections returns a snapshot of every live client registered for the
// given role and identity. The slice is owned by the caller.
func (r *Registry) Connections(role models.Role, identity string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := r.partitions[role][identity]
	if len(clients) == 0 {
		return nil
	}
	snapshot := make([]*Client, 0, len(clients))
	for c := range clients {
		snapshot = append(snapshot, c)
	}
	return snapshot
}

// Online reports whether at least one live connection exists for the
// principal.
func (r *Registry) Online(role models.Role, identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.partitions[role][identity]) > 0
}

// Counts returns the number of live connections per role.
func (r *Registry) Counts() map[models.Role]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.Role]int, len(r.partitions))
	for role, identities := range r.partitions {
		total := 0
		for _, clients := range identities {
			total += len(clients)
		}
		counts[role] = total
	}
	return counts
}

// Len returns the total number of registered connections.
func (r *Registry) Len() int {
	total := 0
	for _, n := range r.Counts() {
		total += n
	}
	return total
}

// each calls fn for every registered client. Used for shutdown.
func (r *Registry) each(fn func(*Client)) {
	r.mu.RLock()
	snapshot := make([]*Client, 0)
	for _, identities := range r.partitions {
		for _, clients := range identities {
			for c := range clients {
				snapshot = append(snapshot, c)
			}
		}
	}
	r.mu.RUnlock()

	for _, c := range snapshot {
		fn(c)
	}
}
