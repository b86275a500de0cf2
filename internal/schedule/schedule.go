package schedule

import (
	"github.com/paladin-bladesmith/bifrost/internal/types"
)

// DefaultLeaderSlotSpan is how many consecutive slots one draw covers.
const DefaultLeaderSlotSpan = 4

// Params identify one epoch's schedule. Epoch feeds the seed; the other two
// fields shape the slot grid.
type Params struct {
	Epoch         uint64
	SlotsPerEpoch uint64
	// LeaderSlotSpan is the length of each leader's consecutive run.
	// Zero selects DefaultLeaderSlotSpan.
	LeaderSlotSpan uint64
}

func (p Params) span() uint64 {
	if p.LeaderSlotSpan == 0 {
		return DefaultLeaderSlotSpan
	}
	return p.LeaderSlotSpan
}

// LeaderSchedule is one epoch's complete slot-to-leader assignment.
// It is immutable once built and safe to share across goroutines.
type LeaderSchedule struct {
	epoch uint64
	slots []types.ValidatorID
}

// Epoch returns the epoch this schedule was built for.
func (s *LeaderSchedule) Epoch() uint64 { return s.epoch }

// Len returns the number of slots covered.
func (s *LeaderSchedule) Len() uint64 { return uint64(len(s.slots)) }

// LeaderAt returns the leader for an intra-epoch slot offset.
func (s *LeaderSchedule) LeaderAt(offset uint64) (types.ValidatorID, bool) {
	if offset >= uint64(len(s.slots)) {
		return types.ValidatorID{}, false
	}
	return s.slots[offset], true
}

// Leaders exposes the full assignment, index = slot offset. Callers must
// treat the slice as read-only.
func (s *LeaderSchedule) Leaders() []types.ValidatorID { return s.slots }

// ByIdentity regroups the assignment as identity to ascending slot offsets,
// the shape served over RPC. Offsets are relative to the epoch start.
func (s *LeaderSchedule) ByIdentity() map[types.ValidatorID][]uint64 {
	m := make(map[types.ValidatorID][]uint64)
	for i, id := range s.slots {
		m[id] = append(m[id], uint64(i))
	}
	return m
}
