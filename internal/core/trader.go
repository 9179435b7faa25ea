package core

import (
	"fmt"
	"time"

	"marketmaker/internal/model"
	"marketmaker/internal/obs"
	"marketmaker/internal/risk"
	"marketmaker/internal/strategy"
	"marketmaker/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Output is the answer to one snapshot.
type Output struct {
	Orders      map[model.Product][]model.Order
	Conversions int64
	TraderData  string
}

// Config tunes a Trader.
type Config struct {
	// Stateless carries the strategy state in the trader data string instead
	// of relying on the caller keeping it.
	Stateless bool
	Metrics   *obs.Metrics
}

// Trader dispatches one snapshot to every generator and guards the result.
type Trader struct {
	generators []strategy.Generator
	engine     *risk.Engine
	metrics    *obs.Metrics
	stateless  bool
}

// New creates a trader. Every product must be owned by at most one generator.
func New(cfg Config, engine *risk.Engine, generators ...strategy.Generator) (*Trader, error) {
	if engine == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "risk engine")
	}

	owners := make(map[model.Product]string)
	for _, g := range generators {
		if g == nil {
			return nil, errors.Wrap(exception.ErrNilInstance, "generator")
		}
		for _, p := range g.Products() {
			if owner, ok := owners[p]; ok {
				return nil, errors.Wrapf(exception.ErrStrategyDuplicate, "%s is claimed by %s and %s", p, owner, g.Name())
			}
			owners[p] = g.Name()
		}
	}

	return &Trader{
		generators: generators,
		engine:     engine,
		metrics:    cfg.Metrics,
		stateless:  cfg.Stateless,
	}, nil
}

// Generators returns the generators in invocation order.
func (t *Trader) Generators() []strategy.Generator {
	return t.generators
}

// Run processes one snapshot. Only a malformed snapshot fails the tick: a
// generator that errors or panics is logged and its products get no orders.
func (t *Trader) Run(snap *model.Snapshot, st *StrategyState) (Output, error) {
	start := time.Now()
	if err := snap.Validate(); err != nil {
		t.metrics.IncRejectedTick()
		return Output{}, err
	}
	if st == nil {
		return Output{}, errors.Wrap(exception.ErrNilInstance, "strategy state")
	}

	if t.stateless && st.Empty() && snap.TraderData != "" {
		restored, err := DecodeState(snap.TraderData)
		if err != nil {
			logs.Warnf("restore trader data at %d, err: %+v", snap.Timestamp, err)
		} else {
			*st = *restored
		}
	}
	if st.Memory == nil {
		st.Memory = strategy.NewState()
	}

	out := Output{Orders: make(map[model.Product][]model.Order)}
	for _, g := range t.generators {
		res, err := t.generate(g, snap, st.Memory)
		if err != nil {
			logs.Warnf("skip generator %s at %d, err: %+v", g.Name(), snap.Timestamp, err)
			t.metrics.IncSkip(g.Name())
			continue
		}

		for _, p := range g.Products() {
			d := t.engine.Check(p, snap.Position(p), res.Orders[p])
			t.metrics.ObserveDecision(d)
			if len(d.Orders) != 0 {
				out.Orders[p] = d.Orders
			}
		}
		out.Conversions += res.Conversions
	}
	t.metrics.AddConversions(out.Conversions)

	st.Tick++
	if t.stateless {
		data, err := EncodeState(st)
		if err != nil {
			logs.Errorf("encode trader data at %d, err: %+v", snap.Timestamp, err)
		} else {
			out.TraderData = data
		}
	}

	t.metrics.ObserveTick(time.Since(start))
	return out, nil
}

func (t *Trader) generate(g strategy.Generator, snap *model.Snapshot, mem *strategy.State) (res strategy.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = strategy.Result{}
			err = errors.Wrap(exception.ErrStrategyPanic, fmt.Sprint(r)).With("generator", g.Name())
		}
	}()

	return g.Generate(snap, mem)
}
