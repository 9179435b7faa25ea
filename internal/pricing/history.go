package pricing

import (
	"math"
	"sort"
)

const DefaultHistorySize = 64

// Point is a mid-price observed at a tick timestamp.
type Point struct {
	Ts  int64   `json:"ts"`
	Mid float64 `json:"mid"`
}

// MidHistory is a bounded series of mid-prices ordered by timestamp.
type MidHistory struct {
	size   int
	points []Point
}

// NewMidHistory creates an empty history keeping at most size points.
func NewMidHistory(size int) *MidHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &MidHistory{size: size, points: make([]Point, 0, size)}
}

// RestoreMidHistory rebuilds a history from previously exported points.
func RestoreMidHistory(size int, points []Point) *MidHistory {
	h := NewMidHistory(size)
	for _, p := range points {
		h.Put(p.Ts, p.Mid)
	}
	return h
}

// Put records mid at ts. A repeated timestamp overwrites its value. A
// timestamp behind the last one starts a new session: the history is
// cleared before ts is recorded.
func (h *MidHistory) Put(ts int64, mid float64) {
	if n := len(h.points); n != 0 {
		last := h.points[n-1].Ts
		if ts == last {
			h.points[n-1].Mid = mid
			return
		}
		if ts < last {
			h.points = h.points[:0]
		}
	}
	if len(h.points) == h.size {
		copy(h.points, h.points[1:])
		h.points = h.points[:len(h.points)-1]
	}
	h.points = append(h.points, Point{Ts: ts, Mid: mid})
}

// At returns the mid recorded at exactly ts.
func (h *MidHistory) At(ts int64) (float64, bool) {
	i := h.search(ts)
	if i < len(h.points) && h.points[i].Ts == ts {
		return h.points[i].Mid, true
	}
	return 0, false
}

// Near returns the mid recorded closest to ts within tolerance.
// A zero tolerance is an exact lookup.
func (h *MidHistory) Near(ts, tolerance int64) (float64, bool) {
	if tolerance <= 0 {
		return h.At(ts)
	}
	i := h.search(ts)
	best, found := int64(math.MaxInt64), false
	var mid float64
	for _, j := range [2]int{i - 1, i} {
		if j < 0 || j >= len(h.points) {
			continue
		}
		d := h.points[j].Ts - ts
		if d < 0 {
			d = -d
		}
		if d <= tolerance && d < best {
			best, mid, found = d, h.points[j].Mid, true
		}
	}
	return mid, found
}

// Len returns the number of recorded points.
func (h *MidHistory) Len() int {
	return len(h.points)
}

// Size returns the capacity of the history.
func (h *MidHistory) Size() int {
	return h.size
}

// Points returns a copy of the recorded points, oldest first.
func (h *MidHistory) Points() []Point {
	out := make([]Point, len(h.points))
	copy(out, h.points)
	return out
}

// Clone returns an independent copy.
func (h *MidHistory) Clone() *MidHistory {
	return RestoreMidHistory(h.size, h.points)
}

func (h *MidHistory) search(ts int64) int {
	return sort.Search(len(h.points), func(i int) bool { return h.points[i].Ts >= ts })
}

// DeltaSignal is the mid-price change of a base and a derived product over
// the same lookback.
type DeltaSignal struct {
	BaseChange    float64
	DerivedChange float64
	Ratio         float64
}

// Delta compares both histories at now against now-lookback. It reports
// false when either lookback point is absent or the base did not move.
func Delta(base, derived *MidHistory, now, lookback, tolerance int64) (DeltaSignal, bool) {
	baseNow, ok := base.At(now)
	if !ok {
		return DeltaSignal{}, false
	}
	derivedNow, ok := derived.At(now)
	if !ok {
		return DeltaSignal{}, false
	}
	basePrev, ok := base.Near(now-lookback, tolerance)
	if !ok {
		return DeltaSignal{}, false
	}
	derivedPrev, ok := derived.Near(now-lookback, tolerance)
	if !ok {
		return DeltaSignal{}, false
	}

	sig := DeltaSignal{
		BaseChange:    baseNow - basePrev,
		DerivedChange: derivedNow - derivedPrev,
	}
	if sig.BaseChange == 0 {
		return DeltaSignal{}, false
	}
	sig.Ratio = sig.DerivedChange / sig.BaseChange
	if math.IsNaN(sig.Ratio) || math.IsInf(sig.Ratio, 0) {
		return DeltaSignal{}, false
	}
	return sig, true
}
