package stats

import (
	"strconv"
	"sync"
	"time"
)

const timeSeriesMinutes = 60

// Stats accumulates counters from proxy traffic events.
type Stats struct {
	mu sync.RWMutex

	requests         uint64
	responses        uint64
	droppedRequests  uint64
	droppedResponses uint64
	suppressed       uint64
	rpcErrors        uint64
	bytesIn          uint64
	bytesOut         uint64

	methodCounts map[string]uint64
	statusCounts map[string]uint64

	// Per-minute buckets for the last 60 minutes
	timeBuckets [timeSeriesMinutes]timeBucket
}

type timeBucket struct {
	minute  time.Time // truncated to minute
	count   uint64
	dropped uint64
}

// NewStats creates a new stats accumulator.
func NewStats() *Stats {
	return &Stats{
		methodCounts: make(map[string]uint64),
		statusCounts: make(map[string]uint64),
	}
}

// Record ingests a single feed event.
func (s *Stats) Record(event *FeedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Phase {
	case "request":
		if event.Dropped {
			s.droppedRequests++
		} else {
			s.requests++
			s.bytesIn += uint64(event.Bytes)
			if event.Method != "" {
				s.methodCounts[event.Method]++
			}
		}
	case "response":
		if event.Dropped {
			s.droppedResponses++
		} else {
			s.responses++
			s.bytesOut += uint64(event.Bytes)
			s.statusCounts[strconv.Itoa(event.Status)]++
		}
	}

	if event.Suppressed {
		s.suppressed++
	}
	if event.RPCError {
		s.rpcErrors++
	}

	now := event.Timestamp.Truncate(time.Minute)
	idx := now.Minute() % timeSeriesMinutes
	if s.timeBuckets[idx].minute != now {
		s.timeBuckets[idx] = timeBucket{minute: now}
	}
	s.timeBuckets[idx].count++
	if event.Dropped {
		s.timeBuckets[idx].dropped++
	}
}

// Snapshot returns a point-in-time copy of the stats.
func (s *Stats) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Requests:         s.requests,
		Responses:        s.responses,
		DroppedRequests:  s.droppedRequests,
		DroppedResponses: s.droppedResponses,
		Suppressed:       s.suppressed,
		RPCErrors:        s.rpcErrors,
		BytesIn:          s.bytesIn,
		BytesOut:         s.bytesOut,
		MethodCounts:     copyMap(s.methodCounts),
		StatusCounts:     copyMap(s.statusCounts),
	}

	// Build time series from buckets (last 60 minutes, chronological)
	now := time.Now().UTC().Truncate(time.Minute)
	cutoff := now.Add(-timeSeriesMinutes * time.Minute)
	for i := 0; i < timeSeriesMinutes; i++ {
		t := cutoff.Add(time.Duration(i+1) * time.Minute)
		idx := t.Minute() % timeSeriesMinutes
		b := s.timeBuckets[idx]
		if b.minute.Equal(t) {
			snap.TimeSeries = append(snap.TimeSeries, TimeSeriesPoint{
				Timestamp: b.minute,
				Count:     b.count,
				Dropped:   b.dropped,
			})
		} else {
			snap.TimeSeries = append(snap.TimeSeries, TimeSeriesPoint{
				Timestamp: t,
			})
		}
	}

	return snap
}

func copyMap(m map[string]uint64) map[string]uint64 {
	c := make(map[string]uint64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
