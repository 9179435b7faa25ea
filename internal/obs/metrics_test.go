package obs

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"marketmaker/internal/model"
	"marketmaker/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.ObserveTick(2 * time.Millisecond)
	m.ObserveTick(4 * time.Millisecond)
	m.IncRejectedTick()
	m.IncSkip("conversion")
	m.IncSkip("conversion")
	m.AddConversions(-30)
	m.ObserveDecision(risk.Decision{
		Product: model.Amethysts,
		Orders:  []model.Order{{Product: model.Amethysts, Price: 9996, Quantity: 2}},
		Adjustments: []risk.Adjustment{
			{Reason: risk.ReasonZeroQty},
			{Reason: risk.ReasonPositionLimit},
		},
	})

	s := m.Snapshot()
	assert.Equal(t, uint64(2), s.Ticks)
	assert.Equal(t, uint64(1), s.RejectedTicks)
	assert.Equal(t, uint64(30), s.Conversions)
	assert.Equal(t, map[string]uint64{"conversion": 2}, s.Skips)
	assert.Equal(t, map[model.Product]uint64{model.Amethysts: 1}, s.Orders)
	assert.Equal(t, map[risk.Reason]uint64{risk.ReasonZeroQty: 1, risk.ReasonPositionLimit: 1}, s.GuardReasonCounts)
	assert.Equal(t, LatencySnapshot{Count: 2, Min: 2 * time.Millisecond, Max: 4 * time.Millisecond, Avg: 3 * time.Millisecond}, s.TickLatency)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveTick(time.Second)
	m.IncSkip("x")
	m.ObserveDecision(risk.Decision{})
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestHandlerExportsCounters(t *testing.T) {
	m := NewMetrics()
	m.ObserveTick(time.Millisecond)
	m.IncSkip("basket_arb")

	rec := httptest.NewRecorder()
	Handler(m).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "trader_ticks_total 1")
	assert.Contains(t, string(body), `trader_generator_skips_total{generator="basket_arb"} 1`)
}
