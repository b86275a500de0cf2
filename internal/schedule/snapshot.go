package schedule

import (
	"sort"

	"github.com/paladin-bladesmith/bifrost/internal/types"
)

// StakeSnapshot is the canonical per-epoch stake list: stake descending,
// ties broken by identity bytes descending, each identity at most once.
// The order is part of the schedule itself, not presentation; two nodes
// that disagree on it produce different leaders for the same epoch.
type StakeSnapshot []types.StakeEntry

// NormalizeStakes builds the canonical snapshot from a weight map.
func NormalizeStakes(weights map[types.ValidatorID]uint64) (StakeSnapshot, error) {
	entries := make([]types.StakeEntry, 0, len(weights))
	for id, stake := range weights {
		entries = append(entries, types.StakeEntry{ID: id, Stake: stake})
	}
	return NewStakeSnapshot(entries)
}

// NewStakeSnapshot builds the canonical snapshot from an entry list.
// Zero-stake entries are dropped first; an empty result is ErrEmptyStakeSet.
// Exact duplicate (identity, stake) pairs collapse to a single entry, while
// an identity carrying two different stakes is rejected with
// ErrConflictingStake since there is no agreed way to pick one.
func NewStakeSnapshot(entries []types.StakeEntry) (StakeSnapshot, error) {
	snap := make(StakeSnapshot, 0, len(entries))
	for _, e := range entries {
		if e.Stake == 0 {
			continue
		}
		snap = append(snap, e)
	}
	if len(snap) == 0 {
		return nil, ErrEmptyStakeSet
	}

	sort.Slice(snap, func(i, j int) bool {
		if snap[i].Stake != snap[j].Stake {
			return snap[i].Stake > snap[j].Stake
		}
		return snap[i].ID.Compare(snap[j].ID) > 0
	})

	stakes := map[types.ValidatorID]uint64{snap[0].ID: snap[0].Stake}
	out := snap[:1]
	for _, e := range snap[1:] {
		if prev, seen := stakes[e.ID]; seen {
			if prev == e.Stake {
				continue
			}
			return nil, ErrConflictingStake
		}
		stakes[e.ID] = e.Stake
		out = append(out, e)
	}
	return out, nil
}

// TotalStake sums the snapshot's stakes, reporting overflow.
func (s StakeSnapshot) TotalStake() (uint64, error) {
	var sum uint64
	for _, e := range s {
		next := sum + e.Stake
		if next < sum {
			return 0, ErrStakeOverflow
		}
		sum = next
	}
	return sum, nil
}
