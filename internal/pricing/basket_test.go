package pricing

import (
	"testing"

	"marketmaker/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func giftBasket() Basket {
	return Basket{
		Components: []Component{
			{Product: model.Strawberries, Weight: 6},
			{Product: model.Chocolate, Weight: 4},
			{Product: model.Roses, Weight: 1},
		},
		Offset: 355,
	}
}

func TestBasketValues(t *testing.T) {
	books := map[model.Product]model.OrderBook{
		model.Strawberries: model.NewOrderBook(map[model.Price]model.Quantity{4000: 10}, map[model.Price]model.Quantity{4001: -10}),
		model.Chocolate:    model.NewOrderBook(map[model.Price]model.Quantity{7900: 10}, map[model.Price]model.Quantity{7902: -10}),
		model.Roses:        model.NewOrderBook(map[model.Price]model.Quantity{14500: 10}, map[model.Price]model.Quantity{14503: -10}),
	}
	b := giftBasket()

	ask, ok := b.AskValue(books)
	require.True(t, ok)
	assert.Equal(t, 6*4001.0+4*7902+14503+355, ask)

	bid, ok := b.BidValue(books)
	require.True(t, ok)
	assert.Equal(t, 6*4000.0+4*7900+14500+355, bid)

	again, _ := b.AskValue(books)
	assert.Equal(t, ask, again)

	delete(books, model.Roses)
	_, ok = b.AskValue(books)
	assert.False(t, ok)
}

func TestBasketInvert(t *testing.T) {
	b := giftBasket()
	v, ok := b.Invert(70355, 10)
	require.True(t, ok)
	assert.Equal(t, 7000.0, v)

	_, ok = b.Invert(70355, 0)
	assert.False(t, ok)
}
