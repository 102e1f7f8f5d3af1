package server

import (
	"math"
	"sync/atomic"
	"time"
)

// Metrics is the request-statistics collector for the hosting layer. It is
// injected into the server, never a package-level singleton, and all updates
// are atomic so handlers can record concurrently. The quality engine itself
// knows nothing about it.
type Metrics struct {
	totalRequests      atomic.Int64
	errors             atomic.Int64
	totalLatencyMicros atomic.Int64
	lastOKForModel     atomic.Int32 // -1 unset, 0 false, 1 true

	// Fixed at construction; values are the only mutable part.
	endpointCalls map[string]*atomic.Int64
}

// NewMetrics creates a collector tracking the given endpoint names.
func NewMetrics(endpoints ...string) *Metrics {
	m := &Metrics{endpointCalls: make(map[string]*atomic.Int64, len(endpoints))}
	m.lastOKForModel.Store(-1)
	for _, e := range endpoints {
		m.endpointCalls[e] = &atomic.Int64{}
	}
	return m
}

// Record counts one finished request.
func (m *Metrics) Record(endpoint string, latency time.Duration, failed bool) {
	m.totalRequests.Add(1)
	m.totalLatencyMicros.Add(latency.Microseconds())
	if failed {
		m.errors.Add(1)
	}
	if c, ok := m.endpointCalls[endpoint]; ok {
		c.Add(1)
	}
}

// SetLastVerdict remembers the most recent ok-for-model decision.
func (m *Metrics) SetLastVerdict(ok bool) {
	if ok {
		m.lastOKForModel.Store(1)
	} else {
		m.lastOKForModel.Store(0)
	}
}

// Snapshot is the JSON view served by /metrics.
type Snapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	EndpointCalls  map[string]int64 `json:"endpoint_calls"`
	LastOKForModel *bool            `json:"last_ok_for_model"`
	Errors         int64            `json:"errors"`
}

func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		TotalRequests: m.totalRequests.Load(),
		Errors:        m.errors.Load(),
		EndpointCalls: make(map[string]int64, len(m.endpointCalls)),
	}
	for name, c := range m.endpointCalls {
		s.EndpointCalls[name] = c.Load()
	}
	if s.TotalRequests > 0 {
		avg := float64(m.totalLatencyMicros.Load()) / float64(s.TotalRequests) / 1000.0
		s.AvgLatencyMs = math.Round(avg*100) / 100
	}
	if v := m.lastOKForModel.Load(); v >= 0 {
		ok := v == 1
		s.LastOKForModel = &ok
	}
	return s
}
