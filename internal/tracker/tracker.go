// Package tracker follows the cluster's slot progression and answers leader
// queries from deterministically built schedules.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paladin-bladesmith/bifrost/internal/logging"
	"github.com/paladin-bladesmith/bifrost/internal/metrics"
	"github.com/paladin-bladesmith/bifrost/internal/registry"
	"github.com/paladin-bladesmith/bifrost/internal/schedule"
	"github.com/paladin-bladesmith/bifrost/internal/stake"
	"github.com/paladin-bladesmith/bifrost/internal/types"
)

const prewarmTimeout = time.Minute

// Handlers are optional callbacks fired by the tracker. Nil fields are
// skipped. OnEpochRotated runs synchronously inside Advance.
type Handlers struct {
	OnEpochRotated func(prev, cur uint64)
}

// Config shapes the slot grid and the schedule retention.
type Config struct {
	SlotsPerEpoch  uint64
	LeaderSlotSpan uint64
	RetainedEpochs int
}

// LeaderEndpoint pairs a leader identity with its known network endpoint.
// Endpoint is empty when the endpoint book has no entry for the identity.
type LeaderEndpoint struct {
	ID       types.ValidatorID
	Endpoint string
}

// EpochInfo describes the tracker's position in the slot grid.
type EpochInfo struct {
	Epoch         uint64
	HeadSlot      uint64
	FirstSlot     uint64
	NextFirstSlot uint64
	SlotsPerEpoch uint64
}

// Tracker resolves slots to leaders. Schedules come from the cache, which
// builds them on demand from the stake source; the tracker itself only
// keeps the head slot and the epoch derived from it.
type Tracker struct {
	cfg      Config
	source   stake.Source
	cache    *schedule.Cache
	book     *registry.EndpointBook
	handlers Handlers
	logger   logging.Logger
	metrics  metrics.Provider

	mu       sync.Mutex
	started  bool
	headSlot uint64
	curEpoch uint64
}

func New(cfg Config, source stake.Source, book *registry.EndpointBook, handlers Handlers, logger logging.Logger, provider metrics.Provider) (*Tracker, error) {
	if cfg.SlotsPerEpoch == 0 {
		return nil, schedule.ErrZeroSlots
	}
	if source == nil {
		return nil, fmt.Errorf("tracker needs a stake source")
	}
	if book == nil {
		book = registry.NewEndpointBook()
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if provider == nil {
		provider = metrics.Noop{}
	}

	t := &Tracker{
		cfg:      cfg,
		source:   source,
		book:     book,
		handlers: handlers,
		logger:   logger,
		metrics:  provider,
	}
	cache, err := schedule.NewCache(cfg.RetainedEpochs, t.buildEpoch, logger, provider)
	if err != nil {
		return nil, err
	}
	t.cache = cache
	return t, nil
}

func (t *Tracker) buildEpoch(ctx context.Context, epoch uint64) (*schedule.LeaderSchedule, error) {
	entries, err := t.source.StakesFor(ctx, epoch)
	if err != nil {
		return nil, fmt.Errorf("fetching stakes for epoch %d: %w", epoch, err)
	}
	snap, err := schedule.NewStakeSnapshot(entries)
	if err != nil {
		return nil, err
	}
	return schedule.Build(snap, schedule.Params{
		Epoch:          epoch,
		SlotsPerEpoch:  t.cfg.SlotsPerEpoch,
		LeaderSlotSpan: t.cfg.LeaderSlotSpan,
	})
}

// LeaderForSlot resolves an absolute slot to its leader, building the
// enclosing epoch's schedule if it is not cached yet.
func (t *Tracker) LeaderForSlot(ctx context.Context, slot uint64) (types.ValidatorID, error) {
	epoch := slot / t.cfg.SlotsPerEpoch
	offset := slot % t.cfg.SlotsPerEpoch
	s, err := t.cache.GetOrBuild(ctx, epoch)
	if err != nil {
		return types.ValidatorID{}, err
	}
	id, ok := s.LeaderAt(offset)
	if !ok {
		return types.ValidatorID{}, fmt.Errorf("slot offset %d out of range for epoch %d", offset, epoch)
	}
	return id, nil
}

// ScheduleFor returns the full schedule for an epoch.
func (t *Tracker) ScheduleFor(ctx context.Context, epoch uint64) (*schedule.LeaderSchedule, error) {
	return t.cache.GetOrBuild(ctx, epoch)
}

// UpcomingLeaders returns the distinct leaders of the next count slots
// starting at fromSlot, in first-appearance order, with endpoints resolved
// from the book. Crossing an epoch boundary mid-window builds the next
// epoch's schedule as needed.
func (t *Tracker) UpcomingLeaders(ctx context.Context, fromSlot uint64, count int) ([]LeaderEndpoint, error) {
	out := make([]LeaderEndpoint, 0, count)
	seen := make(map[types.ValidatorID]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := t.LeaderForSlot(ctx, fromSlot+uint64(i))
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ep, _ := t.book.Lookup(id)
		out = append(out, LeaderEndpoint{ID: id, Endpoint: ep})
	}
	return out, nil
}

// EndpointOf resolves a validator's endpoint from the book.
func (t *Tracker) EndpointOf(id types.ValidatorID) (string, bool) {
	return t.book.Lookup(id)
}

// Advance records the cluster's head slot and returns the slot's epoch plus
// whether an epoch boundary was crossed. Slots below the recorded head are
// stale and ignored. Crossing a boundary fires OnEpochRotated and pre-warms
// the following epoch in the background; there is an epoch of wall time to
// finish that build before it is needed.
func (t *Tracker) Advance(slot uint64) (uint64, bool) {
	epoch := slot / t.cfg.SlotsPerEpoch

	t.mu.Lock()
	if t.started && slot <= t.headSlot {
		cur := t.curEpoch
		t.mu.Unlock()
		return cur, false
	}
	first := !t.started
	prev := t.curEpoch
	t.started = true
	t.headSlot = slot
	t.curEpoch = epoch
	t.mu.Unlock()

	t.metrics.SetGauge(metrics.TrackerHeadSlot, float64(slot))
	t.metrics.SetGauge(metrics.TrackerEpoch, float64(epoch))

	rotated := !first && epoch > prev
	if rotated {
		t.logger.Infof("epoch rotated %d -> %d at slot %d", prev, epoch, slot)
		if t.handlers.OnEpochRotated != nil {
			t.handlers.OnEpochRotated(prev, epoch)
		}
	}
	if first {
		go t.prewarm(epoch)
	}
	if first || rotated {
		go t.prewarm(epoch + 1)
	}
	return epoch, rotated
}

// EpochInfo reports the current position. Before the first Advance it
// describes epoch zero.
func (t *Tracker) EpochInfo() EpochInfo {
	t.mu.Lock()
	epoch, head := t.curEpoch, t.headSlot
	t.mu.Unlock()
	first := epoch * t.cfg.SlotsPerEpoch
	return EpochInfo{
		Epoch:         epoch,
		HeadSlot:      head,
		FirstSlot:     first,
		NextFirstSlot: first + t.cfg.SlotsPerEpoch,
		SlotsPerEpoch: t.cfg.SlotsPerEpoch,
	}
}

func (t *Tracker) prewarm(epoch uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), prewarmTimeout)
	defer cancel()
	if _, err := t.cache.GetOrBuild(ctx, epoch); err != nil {
		t.logger.Warnf("pre-building schedule for epoch %d: %v", epoch, err)
	}
}
