// Package perf keeps a bounded in-memory record of request and query timings
// for the admin dashboard's health panel.
package perf

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/montanaflynn/stats"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// Kind distinguishes request samples from query samples.
type Kind uint8

const (
	KindRequest Kind = iota
	KindQuery
)

// Sample is one timing observation.
type Sample struct {
	Kind       Kind
	Label      string // "GET /dashboard" or a query operation name
	StatusCode int    // 0 for queries
	DurationMs float64
	At         time.Time
}

// Collector is a fixed-size ring of samples. When full, the oldest sample is
// overwritten. Aggregation happens only in Snapshot.
type Collector struct {
	mu      sync.Mutex
	samples []Sample
	next    int
	total   atomic.Int64
}

// NewCollector creates a collector holding up to size samples.
// PRE: none (size <= 0 selects DefaultRingSize)
// POST: Returns a ready-to-use collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{samples: make([]Sample, size)}
}

// Record stores s, overwriting the oldest sample when full.
// A nil collector ignores the call.
func (c *Collector) Record(s Sample) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.samples[c.next] = s
	c.next = (c.next + 1) % len(c.samples)
	c.mu.Unlock()
	c.total.Add(1)
}

// TotalRecorded returns the number of samples ever recorded.
func (c *Collector) TotalRecorded() int64 {
	if c == nil {
		return 0
	}
	return c.total.Load()
}

// LabelStat aggregates the samples sharing a label.
type LabelStat struct {
	Label string
	Count int
	AvgMs float64
	MaxMs float64
}

// Snapshot is an aggregate view over recent samples.
type Snapshot struct {
	Requests       int
	ServerErrors   int
	RequestP50Ms   float64
	RequestP95Ms   float64
	RequestP99Ms   float64
	SlowestRoutes  []LabelStat
	SlowestQueries []LabelStat
}

// Snapshot aggregates samples recorded at or after since.
// PRE: topN > 0
// POST: Percentiles are zero when no request samples match
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Sample, len(c.samples))
	copy(buf, c.samples)
	c.mu.Unlock()

	var snap Snapshot
	var durations stats.Float64Data
	routes := map[string][]float64{}
	queries := map[string][]float64{}

	for _, s := range buf {
		if s.At.IsZero() || s.At.Before(since) {
			continue
		}
		switch s.Kind {
		case KindRequest:
			snap.Requests++
			if s.StatusCode >= 500 {
				snap.ServerErrors++
			}
			durations = append(durations, s.DurationMs)
			routes[s.Label] = append(routes[s.Label], s.DurationMs)
		case KindQuery:
			queries[s.Label] = append(queries[s.Label], s.DurationMs)
		}
	}

	if len(durations) > 0 {
		snap.RequestP50Ms, _ = durations.Percentile(50)
		snap.RequestP95Ms, _ = durations.Percentile(95)
		snap.RequestP99Ms, _ = durations.Percentile(99)
	}
	snap.SlowestRoutes = slowest(routes, topN)
	snap.SlowestQueries = slowest(queries, topN)
	return snap
}

func slowest(groups map[string][]float64, n int) []LabelStat {
	out := make([]LabelStat, 0, len(groups))
	for label, ds := range groups {
		avg, _ := stats.Mean(ds)
		peak, _ := stats.Max(ds)
		out = append(out, LabelStat{Label: label, Count: len(ds), AvgMs: avg, MaxMs: peak})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMs == out[j].AvgMs {
			return out[i].Label < out[j].Label
		}
		return out[i].AvgMs > out[j].AvgMs
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
