package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/paladin-bladesmith/bifrost/internal/types"
)

// Store abstracts stake snapshot persistence. SnapshotStore is the LevelDB
// implementation; InMemory backs tests and ephemeral runs.
type Store interface {
	// SaveSnapshot persists the stake entries for an epoch, overwriting any
	// previous snapshot for it.
	SaveSnapshot(epoch uint64, entries []types.StakeEntry) error
	// Snapshot loads the stake entries for an epoch. A missing epoch is
	// reported with an error wrapping ErrNotFound.
	Snapshot(epoch uint64) ([]types.StakeEntry, error)
	// Epochs lists the persisted epochs in ascending order.
	Epochs() ([]uint64, error)

	// Close releases the underlying resources.
	Close() error
}

// InMemory is a map-backed Store.
type InMemory struct {
	mu        sync.RWMutex
	snapshots map[uint64][]types.StakeEntry
}

func NewInMemory() *InMemory {
	return &InMemory{snapshots: make(map[uint64][]types.StakeEntry)}
}

func (s *InMemory) SaveSnapshot(epoch uint64, entries []types.StakeEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("refusing to persist empty stake set for epoch %d", epoch)
	}
	cp := make([]types.StakeEntry, len(entries))
	copy(cp, entries)
	s.mu.Lock()
	s.snapshots[epoch] = cp
	s.mu.Unlock()
	return nil
}

func (s *InMemory) Snapshot(epoch uint64) ([]types.StakeEntry, error) {
	s.mu.RLock()
	entries, ok := s.snapshots[epoch]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("stake snapshot for epoch %d: %w", epoch, ErrNotFound)
	}
	cp := make([]types.StakeEntry, len(entries))
	copy(cp, entries)
	return cp, nil
}

func (s *InMemory) Epochs() ([]uint64, error) {
	s.mu.RLock()
	out := make([]uint64, 0, len(s.snapshots))
	for epoch := range s.snapshots {
		out = append(out, epoch)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *InMemory) Close() error { return nil }
