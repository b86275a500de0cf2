package metrics

// Metric names understood by Provider implementations. Components report
// through these so that tests and tools that do not run a registry can pass
// a Noop instead.
const (
	ScheduleBuilds        = "schedule_builds_total"
	ScheduleBuildFailures = "schedule_build_failures_total"
	ScheduleBuildDuration = "schedule_build_duration_ms"
	ScheduleCacheHits     = "schedule_cache_hits_total"
	ScheduleCacheMisses   = "schedule_cache_misses_total"
	ScheduleCacheEvicted  = "schedule_cache_evictions_total"
	TrackerEpoch          = "tracker_epoch"
	TrackerHeadSlot       = "tracker_head_slot"
)

// Provider is the minimal metrics sink used across the tracker.
type Provider interface {
	SetGauge(name string, value float64)
	IncCounter(name string, delta float64)
	Observe(name string, value float64)
}

// Noop discards all metrics.
type Noop struct{}

func (Noop) SetGauge(string, float64)   {}
func (Noop) IncCounter(string, float64) {}
func (Noop) Observe(string, float64)    {}
