package schedule

import (
	"context"
	"fmt"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/paladin-bladesmith/bifrost/internal/logging"
	"github.com/paladin-bladesmith/bifrost/internal/metrics"
)

// DefaultRetainedEpochs bounds how many built schedules stay resident.
const DefaultRetainedEpochs = 3

// BuildFunc produces the schedule for an epoch on a cache miss.
type BuildFunc func(ctx context.Context, epoch uint64) (*LeaderSchedule, error)

// Cache memoizes built schedules by epoch. At most one build runs per epoch
// at a time; concurrent callers for the same epoch share that build's
// outcome, success or failure. A failed build caches nothing, so the next
// caller retries. Retention is a recency window over the cached epochs.
type Cache struct {
	build   BuildFunc
	entries *lru.Cache[uint64, *LeaderSchedule]
	flight  singleflight.Group
	logger  logging.Logger
	metrics metrics.Provider
}

// NewCache creates a cache holding up to retain schedules. A retain of zero
// or below selects DefaultRetainedEpochs.
func NewCache(retain int, build BuildFunc, logger logging.Logger, provider metrics.Provider) (*Cache, error) {
	if build == nil {
		return nil, fmt.Errorf("schedule cache needs a build function")
	}
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if provider == nil {
		provider = metrics.Noop{}
	}
	if retain <= 0 {
		retain = DefaultRetainedEpochs
	}
	entries, err := lru.NewWithEvict[uint64, *LeaderSchedule](retain, func(uint64, *LeaderSchedule) {
		provider.IncCounter(metrics.ScheduleCacheEvicted, 1)
	})
	if err != nil {
		return nil, fmt.Errorf("creating schedule cache: %w", err)
	}
	return &Cache{build: build, entries: entries, logger: logger, metrics: provider}, nil
}

// Peek returns the cached schedule without building or touching recency.
func (c *Cache) Peek(epoch uint64) (*LeaderSchedule, bool) {
	return c.entries.Peek(epoch)
}

// Len returns the number of cached schedules.
func (c *Cache) Len() int { return c.entries.Len() }

// GetOrBuild returns the schedule for an epoch, building it on a miss.
// The build itself is detached from ctx: if the caller gives up waiting,
// the build still finishes and publishes for later callers.
func (c *Cache) GetOrBuild(ctx context.Context, epoch uint64) (*LeaderSchedule, error) {
	if s, ok := c.entries.Get(epoch); ok {
		c.metrics.IncCounter(metrics.ScheduleCacheHits, 1)
		return s, nil
	}
	c.metrics.IncCounter(metrics.ScheduleCacheMisses, 1)

	buildCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(strconv.FormatUint(epoch, 10), func() (interface{}, error) {
		// A concurrent flight may have published while this caller queued.
		if s, ok := c.entries.Get(epoch); ok {
			return s, nil
		}
		start := time.Now()
		s, err := c.build(buildCtx, epoch)
		if err != nil {
			c.metrics.IncCounter(metrics.ScheduleBuildFailures, 1)
			return nil, fmt.Errorf("building schedule for epoch %d: %w", epoch, err)
		}
		c.entries.Add(epoch, s)
		c.metrics.IncCounter(metrics.ScheduleBuilds, 1)
		c.metrics.Observe(metrics.ScheduleBuildDuration, float64(time.Since(start).Milliseconds()))
		c.logger.Debugf("built leader schedule for epoch %d (%d slots)", epoch, s.Len())
		return s, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*LeaderSchedule), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
