package risk

import (
	"testing"

	"marketmaker/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineCheck(t *testing.T) {
	e := NewEngine(Limits{model.Amethysts: 20})

	testCases := []struct {
		desc     string
		position model.Quantity
		orders   []model.Order
		want     []model.Quantity
		reasons  []Reason
		final    model.Quantity
	}{
		{
			desc:     "within limits",
			position: 0,
			orders:   []model.Order{{Quantity: -3}, {Quantity: 4}, {Quantity: 16}, {Quantity: -17}},
			want:     []model.Quantity{-3, 4, 16, -17},
			final:    0,
		},
		{
			desc:     "oversized buy is clamped",
			position: 5,
			orders:   []model.Order{{Quantity: 30}},
			want:     []model.Quantity{15},
			reasons:  []Reason{ReasonPositionLimit},
			final:    20,
		},
		{
			desc:     "nothing left is dropped",
			position: -20,
			orders:   []model.Order{{Quantity: -1}, {Quantity: 0}, {Quantity: 2}},
			want:     []model.Quantity{2},
			reasons:  []Reason{ReasonPositionLimit, ReasonZeroQty},
			final:    -18,
		},
		{
			desc:     "reducing order beyond limit is kept",
			position: 25,
			orders:   []model.Order{{Quantity: -2}},
			want:     []model.Quantity{-2},
			final:    23,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			for i := range tc.orders {
				tc.orders[i].Product = model.Amethysts
			}
			d := e.Check(model.Amethysts, tc.position, tc.orders)

			got := make([]model.Quantity, 0, len(d.Orders))
			for _, o := range d.Orders {
				got = append(got, o.Quantity)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.final, d.Final)

			require.Len(t, d.Adjustments, len(tc.reasons))
			for i, r := range tc.reasons {
				assert.Equal(t, r, d.Adjustments[i].Reason)
			}
		})
	}
}

func TestEngineUnknownProduct(t *testing.T) {
	e := NewEngine(Limits{})
	d := e.Check(model.Roses, 0, []model.Order{{Product: model.Roses, Price: 1, Quantity: 1}})
	assert.Empty(t, d.Orders)
	require.Len(t, d.Adjustments, 1)
	assert.Equal(t, ReasonNoLimit, d.Adjustments[0].Reason)
	assert.Equal(t, "no_limit", ReasonNoLimit.String())
}
