// Package registry tracks where validators can be reached. Schedules deal
// in identities only; endpoints change on their own cadence as nodes restart
// or move, so they are kept out of the schedule and resolved at lookup time.
package registry

import (
	"sort"
	"sync"

	"github.com/paladin-bladesmith/bifrost/internal/types"
)

// EndpointBook is a concurrency-safe identity to endpoint map.
type EndpointBook struct {
	mu        sync.RWMutex
	endpoints map[types.ValidatorID]string
}

func NewEndpointBook() *EndpointBook {
	return &EndpointBook{endpoints: make(map[types.ValidatorID]string)}
}

// Set records or updates one validator's endpoint. An empty endpoint
// removes the entry.
func (b *EndpointBook) Set(id types.ValidatorID, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if endpoint == "" {
		delete(b.endpoints, id)
		return
	}
	b.endpoints[id] = endpoint
}

// ReplaceAll swaps the whole book for the given mapping.
func (b *EndpointBook) ReplaceAll(endpoints map[types.ValidatorID]string) {
	cp := make(map[types.ValidatorID]string, len(endpoints))
	for id, ep := range endpoints {
		if ep == "" {
			continue
		}
		cp[id] = ep
	}
	b.mu.Lock()
	b.endpoints = cp
	b.mu.Unlock()
}

// Lookup returns the endpoint for an identity, if known.
func (b *EndpointBook) Lookup(id types.ValidatorID) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ep, ok := b.endpoints[id]
	return ep, ok
}

// Len returns the number of known endpoints.
func (b *EndpointBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.endpoints)
}

// Snapshot returns a copy of the book.
func (b *EndpointBook) Snapshot() map[types.ValidatorID]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[types.ValidatorID]string, len(b.endpoints))
	for id, ep := range b.endpoints {
		out[id] = ep
	}
	return out
}

// IDs lists the known identities in ascending byte order.
func (b *EndpointBook) IDs() []types.ValidatorID {
	b.mu.RLock()
	out := make([]types.ValidatorID, 0, len(b.endpoints))
	for id := range b.endpoints {
		out = append(out, id)
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}
