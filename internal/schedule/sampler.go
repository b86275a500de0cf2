package schedule

import "sort"

// weightedSampler maps uniform draws in [0, total) to snapshot indexes with
// probability proportional to stake, via binary search over cumulative sums.
type weightedSampler struct {
	cumulative []uint64
	total      uint64
}

func newWeightedSampler(snap StakeSnapshot) (*weightedSampler, error) {
	if len(snap) == 0 {
		return nil, ErrEmptyStakeSet
	}
	cumulative := make([]uint64, len(snap))
	var sum uint64
	for i, e := range snap {
		next := sum + e.Stake
		if next < sum {
			return nil, ErrStakeOverflow
		}
		sum = next
		cumulative[i] = sum
	}
	return &weightedSampler{cumulative: cumulative, total: sum}, nil
}

// pick returns the smallest index whose cumulative stake exceeds r.
// r must be below total.
func (ws *weightedSampler) pick(r uint64) int {
	return sort.Search(len(ws.cumulative), func(i int) bool { return r < ws.cumulative[i] })
}
