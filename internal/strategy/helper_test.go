package strategy

import (
	"testing"

	"marketmaker/internal/model"

	"github.com/stretchr/testify/assert"
)

type levels = map[model.Price]model.Quantity

func newSnapshot(ts int64, books map[model.Product]model.OrderBook, positions map[model.Product]model.Quantity) *model.Snapshot {
	if positions == nil {
		positions = map[model.Product]model.Quantity{}
	}
	return &model.Snapshot{
		Timestamp: ts,
		Books:     books,
		Positions: positions,
	}
}

func order(p model.Product, price model.Price, qty model.Quantity) model.Order {
	return model.Order{Product: p, Price: price, Quantity: qty}
}

// assertWithinLimit fills orders one by one and checks the position never
// leaves [-limit, limit].
func assertWithinLimit(t *testing.T, position, limit model.Quantity, orders []model.Order) {
	t.Helper()
	pos := position
	for i, o := range orders {
		pos += o.Quantity
		assert.LessOrEqualf(t, pos, limit, "order %d %s breaches +%d", i, o, limit)
		assert.GreaterOrEqualf(t, pos, -limit, "order %d %s breaches -%d", i, o, limit)
	}
}
