package strategy

import (
	"testing"

	"marketmaker/internal/model"
	"marketmaker/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakerMakerRoundTrip(t *testing.T) {
	g := NewTakerMaker(DefaultTakerMakerConfig())
	snap := newSnapshot(0, map[model.Product]model.OrderBook{
		model.Amethysts: model.NewOrderBook(levels{10005: 3}, levels{9990: -4}),
	}, nil)

	res, err := g.Generate(snap, NewState())
	require.NoError(t, err)

	orders := res.Orders[model.Amethysts]
	require.Len(t, orders, 4)
	assert.Equal(t, order(model.Amethysts, 10005, -3), orders[0])
	assert.Equal(t, order(model.Amethysts, 9990, 4), orders[1])
	assert.Equal(t, model.Quantity(1), orders[0].Quantity+orders[1].Quantity)

	assert.Equal(t, order(model.Amethysts, 9996, 16), orders[2])
	assert.Equal(t, order(model.Amethysts, 10004, -17), orders[3])
	assertWithinLimit(t, 0, 20, orders)
	assert.Zero(t, res.Conversions)
}

func TestTakerMakerNeverTakesAtFairValue(t *testing.T) {
	g := NewTakerMaker(DefaultTakerMakerConfig())
	snap := newSnapshot(0, map[model.Product]model.OrderBook{
		model.Amethysts: model.NewOrderBook(levels{10000: 5, 9998: 2}, levels{10000: -5, 10002: -3}),
	}, nil)

	res, err := g.Generate(snap, NewState())
	require.NoError(t, err)
	assert.Equal(t, []model.Order{
		order(model.Amethysts, 9996, 20),
		order(model.Amethysts, 10004, -20),
	}, res.Orders[model.Amethysts])
}

func TestTakerMakerStopsAtLimit(t *testing.T) {
	g := NewTakerMaker(DefaultTakerMakerConfig())

	snap := newSnapshot(0, map[model.Product]model.OrderBook{
		model.Amethysts: model.NewOrderBook(levels{9990: 1}, levels{9995: -5, 9996: -5}),
	}, map[model.Product]model.Quantity{model.Amethysts: 18})
	res, err := g.Generate(snap, NewState())
	require.NoError(t, err)
	assert.Equal(t, []model.Order{
		order(model.Amethysts, 9995, 2),
		order(model.Amethysts, 9996, 0),
		order(model.Amethysts, 10004, -20),
	}, res.Orders[model.Amethysts])

	snap = newSnapshot(0, map[model.Product]model.OrderBook{
		model.Amethysts: model.NewOrderBook(levels{10004: 5, 10003: 5}, levels{10010: -1}),
	}, map[model.Product]model.Quantity{model.Amethysts: -18})
	res, err = g.Generate(snap, NewState())
	require.NoError(t, err)
	orders := res.Orders[model.Amethysts]
	require.Len(t, orders, 3)
	assert.Equal(t, order(model.Amethysts, 10004, -2), orders[0])
	assertWithinLimit(t, -18, 20, orders)
}

func TestTakerMakerMissingBook(t *testing.T) {
	g := NewTakerMaker(DefaultTakerMakerConfig())
	snap := newSnapshot(0, map[model.Product]model.OrderBook{
		model.Amethysts: model.NewOrderBook(levels{9998: 1}, nil),
	}, nil)
	_, err := g.Generate(snap, NewState())
	assert.ErrorIs(t, err, exception.ErrMissingBook)
}
