// Package chaos perturbs recorded ticks to check that the trader degrades
// gracefully on lossy or out-of-order feeds.
package chaos

import (
	"math/rand"
	"sort"
	"time"

	"marketmaker/internal/codec"
	"marketmaker/internal/recorder"
	"marketmaker/pkg/exception"

	"github.com/yanun0323/errors"
)

// Config controls chaos injection behavior.
type Config struct {
	Seed          int64
	DropRate      float64
	DuplicateRate float64
	// BookDropRate is the chance of removing one product's order book.
	BookDropRate float64
	// ObservationDropRate is the chance of removing every conversion
	// observation of a tick.
	ObservationDropRate float64
	ReorderWindow       int
	// MaxJitter shifts timestamps by up to this many milliseconds.
	MaxJitter int64
}

// Engine applies chaos rules to tape entries.
type Engine struct {
	cfg     Config
	rng     *rand.Rand
	pending []recorder.Entry
}

// NewEngine creates a chaos engine with validation.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.ReorderWindow <= 0 {
		cfg.ReorderWindow = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}
	return &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Validate ensures the config is within supported ranges.
func (c Config) Validate() error {
	rates := []struct {
		name string
		v    float64
	}{
		{"dropRate", c.DropRate},
		{"duplicateRate", c.DuplicateRate},
		{"bookDropRate", c.BookDropRate},
		{"observationDropRate", c.ObservationDropRate},
	}
	for _, r := range rates {
		if r.v < 0 || r.v > 1 {
			return errors.Wrapf(exception.ErrInvalidArgument, "%s must be between 0 and 1", r.name)
		}
	}
	if c.ReorderWindow <= 0 {
		return errors.Wrap(exception.ErrInvalidArgument, "reorderWindow must be >= 1")
	}
	if c.MaxJitter < 0 {
		return errors.Wrap(exception.ErrInvalidArgument, "maxJitter must be >= 0")
	}
	return nil
}

// Process applies chaos to a single entry and returns any output entries.
func (e *Engine) Process(en recorder.Entry) []recorder.Entry {
	if e == nil {
		return []recorder.Entry{en}
	}
	if e.hit(e.cfg.DropRate) {
		return nil
	}
	en = e.perturb(en)
	if e.cfg.ReorderWindow <= 1 {
		return e.applyDuplicate(en)
	}
	e.pending = append(e.pending, en)
	if len(e.pending) < e.cfg.ReorderWindow {
		return nil
	}
	return e.applyDuplicate(e.takePending())
}

// Flush returns any buffered entries after processing completes.
func (e *Engine) Flush() []recorder.Entry {
	if e == nil || len(e.pending) == 0 {
		return nil
	}
	out := make([]recorder.Entry, 0, len(e.pending))
	for len(e.pending) > 0 {
		out = append(out, e.applyDuplicate(e.takePending())...)
	}
	return out
}

func (e *Engine) takePending() recorder.Entry {
	idx := e.rng.Intn(len(e.pending))
	en := e.pending[idx]
	e.pending = append(e.pending[:idx], e.pending[idx+1:]...)
	return en
}

func (e *Engine) hit(rate float64) bool {
	return rate > 0 && e.rng.Float64() < rate
}

func (e *Engine) applyDuplicate(en recorder.Entry) []recorder.Entry {
	out := []recorder.Entry{en}
	if e.hit(e.cfg.DuplicateRate) {
		out = append(out, en)
	}
	return out
}

// perturb works on copies so entries already handed out stay intact.
func (e *Engine) perturb(en recorder.Entry) recorder.Entry {
	st := en.State

	if e.cfg.MaxJitter > 0 {
		st.Timestamp += e.rng.Int63n(2*e.cfg.MaxJitter+1) - e.cfg.MaxJitter
		if st.Timestamp < 0 {
			st.Timestamp = 0
		}
	}

	if len(st.OrderDepths) != 0 && e.hit(e.cfg.BookDropRate) {
		symbols := make([]string, 0, len(st.OrderDepths))
		for s := range st.OrderDepths {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
		victim := symbols[e.rng.Intn(len(symbols))]

		depths := make(map[string]codec.OrderDepth, len(st.OrderDepths)-1)
		for s, d := range st.OrderDepths {
			if s != victim {
				depths[s] = d
			}
		}
		st.OrderDepths = depths
	}

	if e.hit(e.cfg.ObservationDropRate) {
		st.Observations = codec.Observation{PlainValueObservations: st.Observations.PlainValueObservations}
	}

	en.State = st
	return en
}
