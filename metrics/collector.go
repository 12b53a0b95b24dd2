// Package metrics exports allocator statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/tierkit/alloc"
)

// Collector reads an allocator's Stats on every scrape.
type Collector struct {
	a *alloc.Allocator

	hits         *prometheus.Desc
	misses       *prometheus.Desc
	frees        *prometheus.Desc
	cleanups     *prometheus.Desc
	freshBytes   *prometheus.Desc
	cachedBlocks *prometheus.Desc
	cachedBytes  *prometheus.Desc
	locals       *prometheus.Desc
}

// NewCollector returns a Collector for a. constLabels are attached to every
// series and may be nil.
func NewCollector(a *alloc.Allocator, constLabels prometheus.Labels) *Collector {
	tier := []string{"tier"}
	return &Collector{
		a: a,
		hits: prometheus.NewDesc(
			"tierkit_alloc_hits_total",
			"Allocations served from a cache.",
			tier, constLabels,
		),
		misses: prometheus.NewDesc(
			"tierkit_alloc_misses_total",
			"Allocations served by the raw source.",
			tier, constLabels,
		),
		frees: prometheus.NewDesc(
			"tierkit_alloc_frees_total",
			"Blocks returned to a cache.",
			tier, constLabels,
		),
		cleanups: prometheus.NewDesc(
			"tierkit_alloc_cleanups_total",
			"Cache clears.",
			tier, constLabels,
		),
		freshBytes: prometheus.NewDesc(
			"tierkit_alloc_fresh_bytes_total",
			"Bytes drawn from the raw source.",
			tier, constLabels,
		),
		cachedBlocks: prometheus.NewDesc(
			"tierkit_alloc_cached_blocks",
			"Blocks currently held in caches.",
			tier, constLabels,
		),
		cachedBytes: prometheus.NewDesc(
			"tierkit_alloc_cached_bytes",
			"Bytes currently held in caches.",
			tier, constLabels,
		),
		locals: prometheus.NewDesc(
			"tierkit_alloc_locals",
			"Open local tiers.",
			nil, constLabels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.frees
	ch <- c.cleanups
	ch <- c.freshBytes
	ch <- c.cachedBlocks
	ch <- c.cachedBytes
	ch <- c.locals
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.a.Stats()
	c.collectTier(ch, alloc.TierLocal, st.Local)
	c.collectTier(ch, alloc.TierGlobal, st.Global)
	ch <- prometheus.MustNewConstMetric(c.locals, prometheus.GaugeValue, float64(st.Locals))
}

func (c *Collector) collectTier(ch chan<- prometheus.Metric, tier alloc.Tier, s alloc.TierStats) {
	name := tier.String()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits), name)
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses), name)
	ch <- prometheus.MustNewConstMetric(c.frees, prometheus.CounterValue, float64(s.Frees), name)
	ch <- prometheus.MustNewConstMetric(c.cleanups, prometheus.CounterValue, float64(s.Cleanups), name)
	ch <- prometheus.MustNewConstMetric(c.freshBytes, prometheus.CounterValue, float64(s.FreshBytes), name)
	ch <- prometheus.MustNewConstMetric(c.cachedBlocks, prometheus.GaugeValue, float64(s.CachedBlocks), name)
	ch <- prometheus.MustNewConstMetric(c.cachedBytes, prometheus.GaugeValue, float64(s.CachedBytes), name)
}
