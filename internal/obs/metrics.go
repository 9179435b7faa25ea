package obs

import (
	"sync"
	"sync/atomic"
	"time"

	"marketmaker/internal/model"
	"marketmaker/internal/risk"
)

const maxGuardReason = int(risk.ReasonNoLimit)

// Metrics collects lightweight counters and latency stats of the trader.
type Metrics struct {
	ticks             uint64
	rejectedTicks     uint64
	conversions       uint64
	guardReasonCounts [maxGuardReason + 1]uint64

	mu     sync.Mutex
	orders map[model.Product]uint64
	skips  map[string]uint64

	tickLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Ticks             uint64
	RejectedTicks     uint64
	Conversions       uint64
	Orders            map[model.Product]uint64
	Skips             map[string]uint64
	GuardReasonCounts map[risk.Reason]uint64
	TickLatency       LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{
		orders: make(map[model.Product]uint64),
		skips:  make(map[string]uint64),
	}
}

// ObserveTick counts a processed tick and its latency.
func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ticks, 1)
	m.tickLatency.Observe(d)
}

// IncRejectedTick records a snapshot that could not be processed at all.
func (m *Metrics) IncRejectedTick() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.rejectedTicks, 1)
}

// IncSkip records a generator that produced nothing for a tick.
func (m *Metrics) IncSkip(generator string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.skips[generator]++
	m.mu.Unlock()
}

// AddConversions records the absolute conversion amount requested.
func (m *Metrics) AddConversions(n int64) {
	if m == nil || n == 0 {
		return
	}
	if n < 0 {
		n = -n
	}
	atomic.AddUint64(&m.conversions, uint64(n))
}

// ObserveDecision counts the orders a guard decision let through and the
// reasons of every adjustment.
func (m *Metrics) ObserveDecision(d risk.Decision) {
	if m == nil {
		return
	}
	for _, adj := range d.Adjustments {
		idx := int(adj.Reason)
		if idx >= 0 && idx < len(m.guardReasonCounts) {
			atomic.AddUint64(&m.guardReasonCounts[idx], 1)
		}
	}
	if len(d.Orders) == 0 {
		return
	}
	m.mu.Lock()
	m.orders[d.Product] += uint64(len(d.Orders))
	m.mu.Unlock()
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	reasons := make(map[risk.Reason]uint64)
	for i := range m.guardReasonCounts {
		if v := atomic.LoadUint64(&m.guardReasonCounts[i]); v > 0 {
			reasons[risk.Reason(i)] = v
		}
	}

	m.mu.Lock()
	orders := make(map[model.Product]uint64, len(m.orders))
	for p, v := range m.orders {
		orders[p] = v
	}
	skips := make(map[string]uint64, len(m.skips))
	for g, v := range m.skips {
		skips[g] = v
	}
	m.mu.Unlock()

	return Snapshot{
		Ticks:             atomic.LoadUint64(&m.ticks),
		RejectedTicks:     atomic.LoadUint64(&m.rejectedTicks),
		Conversions:       atomic.LoadUint64(&m.conversions),
		Orders:            orders,
		Skips:             skips,
		GuardReasonCounts: reasons,
		TickLatency:       m.tickLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		cur := atomic.LoadUint64(&l.min)
		if cur != 0 && nanos >= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, cur, nanos) {
			break
		}
	}

	for {
		cur := atomic.LoadUint64(&l.max)
		if nanos <= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, cur, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(atomic.LoadUint64(&l.min)),
		Max:   time.Duration(atomic.LoadUint64(&l.max)),
		Avg:   time.Duration(sum / count),
	}
}
