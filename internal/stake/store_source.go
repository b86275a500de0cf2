package stake

import (
	"context"
	"errors"
	"fmt"

	"github.com/paladin-bladesmith/bifrost/internal/logging"
	"github.com/paladin-bladesmith/bifrost/internal/storage"
	"github.com/paladin-bladesmith/bifrost/internal/types"
)

// StoreSource serves stake sets from the snapshot store when present and
// falls back to the upstream source, persisting what it fetched. A restarted
// process therefore reproduces earlier epochs' schedules even if the
// upstream has moved on or is unreachable.
type StoreSource struct {
	upstream Source
	store    storage.Store
	logger   logging.Logger
}

func NewStoreSource(upstream Source, store storage.Store, logger logging.Logger) (*StoreSource, error) {
	if upstream == nil {
		return nil, fmt.Errorf("store source needs an upstream")
	}
	if store == nil {
		return nil, fmt.Errorf("store source needs a snapshot store")
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &StoreSource{upstream: upstream, store: store, logger: logger}, nil
}

func (s *StoreSource) StakesFor(ctx context.Context, epoch uint64) ([]types.StakeEntry, error) {
	entries, err := s.store.Snapshot(epoch)
	if err == nil {
		return entries, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("loading stake snapshot for epoch %d: %w", epoch, err)
	}

	entries, err = s.upstream.StakesFor(ctx, epoch)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveSnapshot(epoch, entries); err != nil {
		// Keep serving the fetched entries even when persistence fails.
		s.logger.Warnf("persisting stake snapshot for epoch %d: %v", epoch, err)
	}
	return entries, nil
}
