package strategy

import (
	"testing"

	"marketmaker/internal/model"
	"marketmaker/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orchidSnapshot(position model.Quantity, bids levels) *model.Snapshot {
	snap := newSnapshot(0, map[model.Product]model.OrderBook{
		model.Orchids: model.NewOrderBook(bids, levels{1020: -5}),
	}, map[model.Product]model.Quantity{model.Orchids: position})
	snap.Observations.Conversion = map[model.Product]model.ConversionObservation{
		model.Orchids: {AskPrice: 1000, ImportTariff: 5, TransportFees: 2, BidPrice: 998, ExportTariff: 9},
	}
	return snap
}

func TestConversionSellsAboveLandedCost(t *testing.T) {
	g := NewConversion(DefaultConversionConfig())

	res, err := g.Generate(orchidSnapshot(0, levels{1010: 50, 1008: 10}), NewState())
	require.NoError(t, err)
	assert.Equal(t, []model.Order{
		order(model.Orchids, 1010, -50),
		order(model.Orchids, 1009, -50),
	}, res.Orders[model.Orchids])
	assert.Equal(t, int64(0), res.Conversions)
}

func TestConversionFlattensHeldPosition(t *testing.T) {
	g := NewConversion(DefaultConversionConfig())

	res, err := g.Generate(orchidSnapshot(30, levels{1010: 50}), NewState())
	require.NoError(t, err)
	orders := res.Orders[model.Orchids]
	assert.Equal(t, []model.Order{
		order(model.Orchids, 1010, -50),
		order(model.Orchids, 1009, -80),
	}, orders)
	assert.Equal(t, int64(-30), res.Conversions)
	assertWithinLimit(t, 30, 100, orders)
}

func TestConversionNoBidAboveLandedCost(t *testing.T) {
	g := NewConversion(DefaultConversionConfig())

	res, err := g.Generate(orchidSnapshot(0, levels{1007: 10}), NewState())
	require.NoError(t, err)
	assert.Equal(t, []model.Order{order(model.Orchids, 1009, -100)}, res.Orders[model.Orchids])
}

func TestConversionMissingData(t *testing.T) {
	g := NewConversion(DefaultConversionConfig())

	snap := orchidSnapshot(0, levels{1010: 1})
	snap.Observations.Conversion = nil
	_, err := g.Generate(snap, NewState())
	assert.ErrorIs(t, err, exception.ErrMissingObservation)

	_, err = g.Generate(newSnapshot(0, map[model.Product]model.OrderBook{}, nil), NewState())
	assert.ErrorIs(t, err, exception.ErrMissingBook)
}
