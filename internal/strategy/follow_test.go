package strategy

import (
	"testing"

	"marketmaker/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowMirrorsRecentTrades(t *testing.T) {
	g := NewFollow(DefaultFollowConfig())
	snap := newSnapshot(2000, map[model.Product]model.OrderBook{}, map[model.Product]model.Quantity{model.Roses: 57})
	snap.MarketTrades = map[model.Product][]model.Trade{
		model.Roses: {
			{Product: model.Roses, Price: 14400, Quantity: 9, Buyer: "Vladimir", Seller: "Remy", Timestamp: 500},
			{Product: model.Roses, Price: 14500, Quantity: 5, Buyer: "Vladimir", Seller: "Remy", Timestamp: 1500},
			{Product: model.Roses, Price: 14510, Quantity: 4, Buyer: "Remy", Seller: "Vladimir", Timestamp: 1900},
			{Product: model.Roses, Price: 14520, Quantity: 4, Buyer: "Remy", Seller: "Rhianna", Timestamp: 1900},
		},
	}

	res, err := g.Generate(snap, NewState())
	require.NoError(t, err)
	orders := res.Orders[model.Roses]
	assert.Equal(t, []model.Order{
		order(model.Roses, 14500, 3),
		order(model.Roses, 14510, -4),
	}, orders)
	assertWithinLimit(t, 57, 60, orders)
}
