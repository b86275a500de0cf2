package schedule

import (
	"github.com/paladin-bladesmith/bifrost/internal/types"
)

// Build produces the leader assignment for one epoch. The same snapshot and
// params always yield an identical schedule: the stream is seeded only by
// the epoch, one draw is taken per leader-slot-span chunk, and the drawn
// validator holds every slot of that chunk. A final partial chunk still
// consumes a full draw.
func Build(snap StakeSnapshot, p Params) (*LeaderSchedule, error) {
	if len(snap) == 0 {
		return nil, ErrEmptyStakeSet
	}
	if p.SlotsPerEpoch == 0 {
		return nil, ErrZeroSlots
	}
	sampler, err := newWeightedSampler(snap)
	if err != nil {
		return nil, err
	}

	rng := NewRng(Seed(p.Epoch))
	span := p.span()
	slots := make([]types.ValidatorID, p.SlotsPerEpoch)
	var leader types.ValidatorID
	for i := uint64(0); i < p.SlotsPerEpoch; i++ {
		if i%span == 0 {
			leader = snap[sampler.pick(rng.UniformU64(sampler.total))].ID
		}
		slots[i] = leader
	}
	return &LeaderSchedule{epoch: p.Epoch, slots: slots}, nil
}
