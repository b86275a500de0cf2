package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prom exposes the tracker metrics on a private registry.
type Prom struct {
	reg *prometheus.Registry

	Builds         prometheus.Counter
	BuildFailures  prometheus.Counter
	BuildDuration  prometheus.Summary
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheEvictions prometheus.Counter
	EpochGauge     prometheus.Gauge
	HeadSlotGauge  prometheus.Gauge
}

func NewProm() *Prom {
	reg := prometheus.NewRegistry()
	p := &Prom{
		reg:            reg,
		Builds:         prometheus.NewCounter(prometheus.CounterOpts{Name: ScheduleBuilds, Help: "Total leader schedules built"}),
		BuildFailures:  prometheus.NewCounter(prometheus.CounterOpts{Name: ScheduleBuildFailures, Help: "Total leader schedule builds that failed"}),
		BuildDuration:  prometheus.NewSummary(prometheus.SummaryOpts{Name: ScheduleBuildDuration, Help: "Wall time of schedule builds in ms"}),
		CacheHits:      prometheus.NewCounter(prometheus.CounterOpts{Name: ScheduleCacheHits, Help: "Schedule lookups served from cache"}),
		CacheMisses:    prometheus.NewCounter(prometheus.CounterOpts{Name: ScheduleCacheMisses, Help: "Schedule lookups that triggered a build"}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{Name: ScheduleCacheEvicted, Help: "Schedules evicted from the retention window"}),
		EpochGauge:     prometheus.NewGauge(prometheus.GaugeOpts{Name: TrackerEpoch, Help: "Epoch of the last observed slot"}),
		HeadSlotGauge:  prometheus.NewGauge(prometheus.GaugeOpts{Name: TrackerHeadSlot, Help: "Highest slot observed so far"}),
	}
	reg.MustRegister(p.Builds, p.BuildFailures, p.BuildDuration, p.CacheHits, p.CacheMisses, p.CacheEvictions, p.EpochGauge, p.HeadSlotGauge)
	return p
}

func (p *Prom) Handler() http.Handler { return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{}) }

// Implement Provider
func (p *Prom) SetGauge(name string, value float64) {
	switch name {
	case TrackerEpoch:
		p.EpochGauge.Set(value)
	case TrackerHeadSlot:
		p.HeadSlotGauge.Set(value)
	}
}

func (p *Prom) IncCounter(name string, delta float64) {
	var c prometheus.Counter
	switch name {
	case ScheduleBuilds:
		c = p.Builds
	case ScheduleBuildFailures:
		c = p.BuildFailures
	case ScheduleCacheHits:
		c = p.CacheHits
	case ScheduleCacheMisses:
		c = p.CacheMisses
	case ScheduleCacheEvicted:
		c = p.CacheEvictions
	default:
		return
	}
	c.Add(delta)
}

// Observe supports the build duration summary.
func (p *Prom) Observe(name string, value float64) {
	switch name {
	case ScheduleBuildDuration:
		p.BuildDuration.Observe(value)
	}
}
