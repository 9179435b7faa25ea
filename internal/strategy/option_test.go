package strategy

import (
	"math"
	"testing"

	"marketmaker/internal/model"
	"marketmaker/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func couponBooks(coupon model.OrderBook) map[model.Product]model.OrderBook {
	return map[model.Product]model.OrderBook{
		model.Coconut:       model.NewOrderBook(levels{10009: 50}, levels{10011: -50}),
		model.CoconutCoupon: coupon,
	}
}

func primedState(coconutThen, couponThen float64) *State {
	st := NewState()
	st.History(model.Coconut, 64).Put(0, coconutThen)
	st.History(model.CoconutCoupon, 64).Put(0, couponThen)
	return st
}

func TestOptionArbBlackScholesSet(t *testing.T) {
	cfg := DefaultOptionArbConfig()
	g := NewOptionArb(cfg)
	estimate, ok := cfg.Pricer.Call(10010)
	require.True(t, ok)
	require.InDelta(t, 642.18, estimate, 0.01)

	snap := newSnapshot(5000, couponBooks(model.NewOrderBook(levels{652: 50, 641: 10}, levels{660: -5})), nil)
	// delta alone would sell, but the Black-Scholes set takes precedence
	st := primedState(10000, 612.5)

	res, err := g.Generate(snap, st)
	require.NoError(t, err)

	orders := res.Orders[model.CoconutCoupon]
	assert.Equal(t, []model.Order{
		order(model.CoconutCoupon, 652, -50),
		order(model.CoconutCoupon, model.Price(math.Ceil(estimate+10)), -550),
		order(model.CoconutCoupon, model.Price(math.Floor(estimate-10)), 600),
	}, orders)
	assertWithinLimit(t, 0, 600, orders)

	mid, ok := st.Histories[model.CoconutCoupon].At(5000)
	require.True(t, ok)
	assert.Equal(t, 656.0, mid)
}

func TestOptionArbDeltaFadesRally(t *testing.T) {
	g := NewOptionArb(DefaultOptionArbConfig())
	snap := newSnapshot(5000, couponBooks(model.NewOrderBook(levels{640: 100, 639: 200}, levels{645: -100})), nil)

	res, err := g.Generate(snap, primedState(10000, 612.5))
	require.NoError(t, err)
	assert.Equal(t, []model.Order{
		order(model.CoconutCoupon, 640, -100),
		order(model.CoconutCoupon, 639, -200),
		order(model.CoconutCoupon, 640, -300),
	}, res.Orders[model.CoconutCoupon])
}

func TestOptionArbDeltaBuysDrop(t *testing.T) {
	g := NewOptionArb(DefaultOptionArbConfig())
	snap := newSnapshot(5000, couponBooks(model.NewOrderBook(levels{640: 100}, levels{645: -100, 646: -50})), nil)

	res, err := g.Generate(snap, primedState(10020, 672.5))
	require.NoError(t, err)
	orders := res.Orders[model.CoconutCoupon]
	assert.Equal(t, []model.Order{
		order(model.CoconutCoupon, 645, 100),
		order(model.CoconutCoupon, 646, 50),
		order(model.CoconutCoupon, 640, 450),
	}, orders)
	assertWithinLimit(t, 0, 600, orders)
}

func TestOptionArbNoSignal(t *testing.T) {
	g := NewOptionArb(DefaultOptionArbConfig())
	coupon := model.NewOrderBook(levels{640: 100}, levels{645: -100})

	testCases := []struct {
		desc string
		st   *State
	}{
		{desc: "below trigger", st: primedState(10000, 632.5)},
		{desc: "flat underlying", st: primedState(10010, 600)},
		{desc: "no lookback point", st: NewState()},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			res, err := g.Generate(newSnapshot(5000, couponBooks(coupon), nil), tc.st)
			require.NoError(t, err)
			assert.Empty(t, res.Orders[model.CoconutCoupon])
		})
	}
}

func TestOptionArbMissingUnderlying(t *testing.T) {
	g := NewOptionArb(DefaultOptionArbConfig())
	books := couponBooks(model.NewOrderBook(levels{640: 100}, levels{645: -100}))
	delete(books, model.Coconut)

	_, err := g.Generate(newSnapshot(0, books, nil), NewState())
	assert.ErrorIs(t, err, exception.ErrMissingBook)
}
