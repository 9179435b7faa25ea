package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMidHistoryBounded(t *testing.T) {
	h := NewMidHistory(3)
	for ts := int64(0); ts < 500; ts += 100 {
		h.Put(ts, float64(ts))
	}
	require.Equal(t, 3, h.Len())

	_, ok := h.At(100)
	assert.False(t, ok, "oldest points are evicted")
	v, ok := h.At(400)
	require.True(t, ok)
	assert.Equal(t, 400.0, v)

	h.Put(400, 1)
	v, _ = h.At(400)
	assert.Equal(t, 1.0, v)

}

func TestMidHistoryResetsOnRewind(t *testing.T) {
	h := NewMidHistory(4)
	for ts := int64(900); ts <= 1200; ts += 100 {
		h.Put(ts, float64(ts))
	}

	h.Put(0, 7)
	assert.Equal(t, []Point{{Ts: 0, Mid: 7}}, h.Points())
	_, ok := h.At(1200)
	assert.False(t, ok, "points of the previous session are dropped")

	h.Put(100, 8)
	v, ok := h.Near(0, 0)
	require.True(t, ok)
	assert.Equal(t, 7.0, v)
	v, ok = h.At(100)
	require.True(t, ok)
	assert.Equal(t, 8.0, v)
}

func TestMidHistoryNear(t *testing.T) {
	h := NewMidHistory(8)
	h.Put(0, 10)
	h.Put(100, 11)
	h.Put(250, 12)

	_, ok := h.Near(200, 0)
	assert.False(t, ok)

	v, ok := h.Near(200, 60)
	require.True(t, ok)
	assert.Equal(t, 12.0, v)

	v, ok = h.Near(130, 60)
	require.True(t, ok)
	assert.Equal(t, 11.0, v)

	_, ok = h.Near(400, 60)
	assert.False(t, ok)
}

func TestMidHistoryRestore(t *testing.T) {
	h := NewMidHistory(4)
	h.Put(1, 1)
	h.Put(2, 2)

	restored := RestoreMidHistory(h.Size(), h.Points())
	assert.Equal(t, h.Points(), restored.Points())

	clone := h.Clone()
	clone.Put(3, 3)
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 3, clone.Len())
}

func TestDelta(t *testing.T) {
	base, derived := NewMidHistory(64), NewMidHistory(64)
	base.Put(0, 10000)
	derived.Put(0, 600)
	base.Put(5000, 10010)
	derived.Put(5000, 630)

	sig, ok := Delta(base, derived, 5000, 5000, 0)
	require.True(t, ok)
	assert.Equal(t, 10.0, sig.BaseChange)
	assert.Equal(t, 30.0, sig.DerivedChange)
	assert.Equal(t, 3.0, sig.Ratio)

	_, ok = Delta(base, derived, 5000, 4900, 0)
	assert.False(t, ok, "missing lookback timestamp")

	base.Put(10000, 10010)
	derived.Put(10000, 640)
	_, ok = Delta(base, derived, 10000, 5000, 0)
	assert.False(t, ok, "flat base gives no signal")
}
