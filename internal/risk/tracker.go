package risk

import "marketmaker/internal/model"

// Tracker is the running position tally of one product within one
// generator invocation. Every order is committed as if filled in full.
type Tracker struct {
	limit    model.Quantity
	start    model.Quantity
	bought   model.Quantity
	sold     model.Quantity
	position model.Quantity
}

// NewTracker starts a tally from the held position.
func NewTracker(limit, position model.Quantity) *Tracker {
	return &Tracker{
		limit:    limit,
		start:    position,
		position: position,
	}
}

// Limit returns the symmetric position limit.
func (t *Tracker) Limit() model.Quantity {
	return t.limit
}

// Start returns the position held before this invocation.
func (t *Tracker) Start() model.Quantity {
	return t.start
}

// Position returns the hypothetical position after every committed order.
func (t *Tracker) Position() model.Quantity {
	return t.position
}

// PositiveTally is the most positive exposure committed so far.
func (t *Tracker) PositiveTally() model.Quantity {
	return max(0, t.start) + t.bought
}

// NegativeTally is the most negative exposure committed so far.
func (t *Tracker) NegativeTally() model.Quantity {
	return min(0, t.start) + t.sold
}

// BuyHeadroom is how much can still be bought before reaching the limit.
func (t *Tracker) BuyHeadroom() model.Quantity {
	return max(0, t.limit-t.position)
}

// SellHeadroom is how much can still be sold, as a non-positive quantity.
func (t *Tracker) SellHeadroom() model.Quantity {
	return min(0, -t.limit-t.position)
}

// Buy commits up to volume units of buying and returns the committed amount.
func (t *Tracker) Buy(volume model.Quantity) model.Quantity {
	qty := min(volume.Abs(), t.BuyHeadroom())
	t.commit(qty)
	return qty
}

// Sell commits up to volume units of selling and returns the committed
// amount as a non-positive quantity.
func (t *Tracker) Sell(volume model.Quantity) model.Quantity {
	qty := max(-volume.Abs(), t.SellHeadroom())
	t.commit(qty)
	return qty
}

// Commit records qty without clamping. Callers size qty themselves.
func (t *Tracker) Commit(qty model.Quantity) {
	t.commit(qty)
}

// QuoteBid sizes a resting bid so that neither the hypothetical position
// nor the positive tally can exceed the limit.
func (t *Tracker) QuoteBid() model.Quantity {
	return max(0, min(t.limit-t.position, t.limit-t.PositiveTally(), t.limit))
}

// QuoteAsk sizes a resting ask so that neither the hypothetical position
// nor the negative tally can exceed the limit. The result is non-positive.
func (t *Tracker) QuoteAsk() model.Quantity {
	return min(0, max(-t.limit-t.position, -t.limit-t.NegativeTally(), -t.limit))
}

func (t *Tracker) commit(qty model.Quantity) {
	if qty > 0 {
		t.bought += qty
	} else {
		t.sold += qty
	}
	t.position += qty
}
