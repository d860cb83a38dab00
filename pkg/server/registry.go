package server

import (
	"slices"
	"sync"
	"time"
)

// ClientRegistry tracks open websocket connections keyed by client ID.
// Add and Remove return the new population so callers can publish it as a
// gauge without a second lookup.
type ClientRegistry struct {
	mu    sync.RWMutex
	conns map[string]*Client
}

func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{conns: map[string]*Client{}}
}

// Add registers c, replacing any client with the same ID.
func (r *ClientRegistry) Add(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c.ID] = c
	return len(r.conns)
}

// Remove unregisters id. ok is false when id was not registered, which
// happens when the read loop and a failed hello both drop the same client.
func (r *ClientRegistry) Remove(id string) (remaining int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok = r.conns[id]; ok {
		delete(r.conns, id)
	}
	return len(r.conns), ok
}

// Snapshot copies the current clients so broadcasts and shutdown can write
// to them without holding the registry lock.
func (r *ClientRegistry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// Infos describes the connected clients, oldest connection first.
func (r *ClientRegistry) Infos() []ClientInfo {
	clients := r.Snapshot()
	slices.SortFunc(clients, func(a, b *Client) int {
		return a.ConnectedAt.Compare(b.ConnectedAt)
	})

	infos := make([]ClientInfo, len(clients))
	for i, c := range clients {
		infos[i] = ClientInfo{
			ID:          c.ID,
			ConnectedAt: c.ConnectedAt.UTC().Truncate(time.Millisecond),
			IPAddress:   c.IPAddress,
		}
	}
	return infos
}
