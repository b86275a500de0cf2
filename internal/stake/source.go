// Package stake supplies the per-epoch stake weights that leader schedules
// are built from.
package stake

import (
	"context"

	"github.com/paladin-bladesmith/bifrost/internal/types"
)

// Source yields the stake weights finalized for an epoch. Once a source has
// answered for an epoch, the answer must not change: schedule builds assume
// the weights are frozen at the epoch boundary.
type Source interface {
	StakesFor(ctx context.Context, epoch uint64) ([]types.StakeEntry, error)
}

// StaticSource serves one fixed stake set for every epoch. It backs small
// clusters with an operator-managed validator list and most tests.
type StaticSource struct {
	entries []types.StakeEntry
}

func NewStaticSource(entries []types.StakeEntry) *StaticSource {
	cp := make([]types.StakeEntry, len(entries))
	copy(cp, entries)
	return &StaticSource{entries: cp}
}

func (s *StaticSource) StakesFor(context.Context, uint64) ([]types.StakeEntry, error) {
	out := make([]types.StakeEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
