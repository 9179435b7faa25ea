package codec

import (
	"testing"

	"marketmaker/internal/core"
	"marketmaker/internal/model"
	"marketmaker/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tradingStateJSON = `{
  "traderData": "",
  "timestamp": 1100,
  "listings": {
    "ORCHIDS": {"symbol": "ORCHIDS", "product": "ORCHIDS", "denomination": "SEASHELLS"}
  },
  "order_depths": {
    "ORCHIDS": {"buy_orders": {"1010": 50, "1008": 10}, "sell_orders": {"1020": -5}},
    "AMETHYSTS": {"buy_orders": {"9998": 3}, "sell_orders": {}}
  },
  "own_trades": {},
  "market_trades": {
    "ORCHIDS": [{"symbol": "ORCHIDS", "price": 1011, "quantity": 2, "buyer": "Remy", "seller": "", "timestamp": 1000}]
  },
  "position": {"ORCHIDS": -12},
  "observations": {
    "plainValueObservations": {"DOLPHIN_SIGHTINGS": 3},
    "conversionObservations": {
      "ORCHIDS": {"bidPrice": 998.5, "askPrice": 1000, "transportFees": 2, "exportTariff": 9, "importTariff": 5, "sunlight": 2500, "humidity": 79.5}
    }
  }
}`

func TestDecodeSnapshot(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(tradingStateJSON))
	require.NoError(t, err)

	assert.Equal(t, int64(1100), snap.Timestamp)
	assert.Equal(t, model.Quantity(-12), snap.Position(model.Orchids))

	book, ok := snap.Book(model.Orchids)
	require.True(t, ok)
	assert.Equal(t, []model.Level{{Price: 1010, Volume: 50}, {Price: 1008, Volume: 10}}, book.Bids)
	assert.Equal(t, []model.Level{{Price: 1020, Volume: -5}}, book.Asks)

	_, ok = snap.Book(model.Amethysts)
	assert.False(t, ok, "one-sided book")

	obs, ok := snap.Conversion(model.Orchids)
	require.True(t, ok)
	assert.Equal(t, 1007.0, obs.LandedCost())
	assert.Equal(t, 998.5, obs.BidPrice)
	assert.Equal(t, 79.5, obs.Humidity)
	assert.Equal(t, int64(3), snap.Observations.Plain[model.Product("DOLPHIN_SIGHTINGS")])

	require.Len(t, snap.MarketTrades[model.Orchids], 1)
	assert.Equal(t, "Remy", snap.MarketTrades[model.Orchids][0].Buyer)
	assert.Equal(t, model.Orchids, snap.MarketTrades[model.Orchids][0].Product)
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(tradingStateJSON))
	require.NoError(t, err)

	data, err := EncodeSnapshot(snap)
	require.NoError(t, err)

	again, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snap, again)
}

func TestDecodeSnapshotRejects(t *testing.T) {
	testCases := []struct {
		desc string
		data string
	}{
		{desc: "not json", data: "[1,2"},
		{desc: "no books", data: `{"timestamp": 1}`},
		{desc: "negative timestamp", data: `{"timestamp": -1, "order_depths": {}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := DecodeSnapshot([]byte(tc.data))
			assert.ErrorIs(t, err, exception.ErrMalformedSnapshot)
		})
	}
}

func TestResultEncoding(t *testing.T) {
	out := core.Output{
		Orders: map[model.Product][]model.Order{
			model.Orchids: {{Product: model.Orchids, Price: 1010, Quantity: -50}},
		},
		Conversions: 12,
		TraderData:  `{"tick":1}`,
	}

	data, err := EncodeResult(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"orders": {"ORCHIDS": [{"symbol": "ORCHIDS", "price": 1010, "quantity": -50}]},
		"conversions": 12,
		"traderData": "{\"tick\":1}"
	}`, string(data))

	back, err := DecodeResult(data)
	require.NoError(t, err)
	assert.Equal(t, out, back)

	_, err = DecodeResult([]byte("{"))
	assert.ErrorIs(t, err, exception.ErrFeedProtocol)
}

func TestProductsSorted(t *testing.T) {
	out := core.Output{Orders: map[model.Product][]model.Order{
		model.Starfruit: nil,
		model.Amethysts: nil,
		model.Orchids:   nil,
	}}
	assert.Equal(t, []model.Product{model.Amethysts, model.Orchids, model.Starfruit}, Products(out))
}
