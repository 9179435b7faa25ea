// Package strategy turns one tick of market state into orders, one
// generator per product group.
package strategy

import (
	"math"

	"marketmaker/internal/model"
	"marketmaker/internal/pricing"
	"marketmaker/pkg/exception"

	"github.com/yanun0323/errors"
)

// Generator produces the orders of the products it owns for one tick.
type Generator interface {
	Name() string
	Products() []model.Product
	Generate(snap *model.Snapshot, st *State) (Result, error)
}

// Result is the output of one generator invocation.
type Result struct {
	Orders      map[model.Product][]model.Order
	Conversions int64
}

func newResult(products ...model.Product) Result {
	r := Result{Orders: make(map[model.Product][]model.Order, len(products))}
	for _, p := range products {
		r.Orders[p] = nil
	}
	return r
}

func (r Result) add(p model.Product, price model.Price, qty model.Quantity) {
	r.Orders[p] = append(r.Orders[p], model.Order{Product: p, Price: price, Quantity: qty})
}

// State is the cross-tick memory of the generators.
type State struct {
	EMAs      map[model.Product]*pricing.EMA
	Histories map[model.Product]*pricing.MidHistory
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		EMAs:      make(map[model.Product]*pricing.EMA),
		Histories: make(map[model.Product]*pricing.MidHistory),
	}
}

// EMA returns the average of p, creating it with alpha on first use.
func (s *State) EMA(p model.Product, alpha float64) *pricing.EMA {
	if s.EMAs == nil {
		s.EMAs = make(map[model.Product]*pricing.EMA)
	}
	ema, ok := s.EMAs[p]
	if !ok {
		v := pricing.NewEMA(alpha)
		ema = &v
		s.EMAs[p] = ema
	}
	return ema
}

// History returns the mid-price history of p, creating it with size on first use.
func (s *State) History(p model.Product, size int) *pricing.MidHistory {
	if s.Histories == nil {
		s.Histories = make(map[model.Product]*pricing.MidHistory)
	}
	h, ok := s.Histories[p]
	if !ok {
		h = pricing.NewMidHistory(size)
		s.Histories[p] = h
	}
	return h
}

// Empty reports whether nothing has been recorded yet.
func (s *State) Empty() bool {
	return s == nil || (len(s.EMAs) == 0 && len(s.Histories) == 0)
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	out := NewState()
	if s == nil {
		return out
	}
	for p, ema := range s.EMAs {
		v := *ema
		out.EMAs[p] = &v
	}
	for p, h := range s.Histories {
		out.Histories[p] = h.Clone()
	}
	return out
}

func requireBook(snap *model.Snapshot, p model.Product) (model.OrderBook, error) {
	book, ok := snap.Book(p)
	if !ok {
		return model.OrderBook{}, errors.Wrapf(exception.ErrMissingBook, "product: %s", p)
	}
	return book, nil
}

func floorPrice(v float64) model.Price {
	return model.Price(math.Floor(v))
}

func ceilPrice(v float64) model.Price {
	return model.Price(math.Ceil(v))
}

func finite(v ...float64) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
