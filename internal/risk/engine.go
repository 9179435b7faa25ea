package risk

import "marketmaker/internal/model"

// Reason is a coarse reason code for guard decisions.
type Reason uint16

const (
	ReasonNone Reason = iota
	ReasonZeroQty
	ReasonPositionLimit
	ReasonNoLimit
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonZeroQty:
		return "zero_qty"
	case ReasonPositionLimit:
		return "position_limit"
	case ReasonNoLimit:
		return "no_limit"
	default:
		return "unknown"
	}
}

// Limits maps products to their symmetric position limit.
type Limits map[model.Product]model.Quantity

// Limit returns the limit of p.
func (l Limits) Limit(p model.Product) (model.Quantity, bool) {
	v, ok := l[p]
	return v, ok
}

// Adjustment records one order the guard changed.
type Adjustment struct {
	Order  model.Order
	Kept   model.Quantity
	Reason Reason
}

// Decision is the guarded order list of one product.
type Decision struct {
	Product     model.Product
	Orders      []model.Order
	Adjustments []Adjustment
	Final       model.Quantity
}

// Engine is the last line of defence before orders leave the process.
type Engine struct {
	limits Limits
}

// NewEngine creates a guard with static limits.
func NewEngine(limits Limits) *Engine {
	return &Engine{limits: limits}
}

// Limits returns the configured limits.
func (e *Engine) Limits() Limits {
	return e.limits
}

// Check replays orders in list order against the held position as if each
// filled in full, clamping any order that would leave [-L, L] and dropping
// orders with nothing left. Products without a limit are dropped entirely.
func (e *Engine) Check(product model.Product, position model.Quantity, orders []model.Order) Decision {
	decision := Decision{
		Product: product,
		Orders:  make([]model.Order, 0, len(orders)),
		Final:   position,
	}

	limit, ok := e.limits.Limit(product)
	if !ok {
		for _, o := range orders {
			decision.Adjustments = append(decision.Adjustments, Adjustment{Order: o, Reason: ReasonNoLimit})
		}
		return decision
	}

	pos := position
	for _, o := range orders {
		if o.Quantity == 0 {
			decision.Adjustments = append(decision.Adjustments, Adjustment{Order: o, Reason: ReasonZeroQty})
			continue
		}

		qty := o.Quantity
		next := pos + qty
		switch {
		case qty > 0 && next > limit:
			qty = max(0, limit-pos)
		case qty < 0 && next < -limit:
			qty = min(0, -limit-pos)
		}

		if qty != o.Quantity {
			decision.Adjustments = append(decision.Adjustments, Adjustment{Order: o, Kept: qty, Reason: ReasonPositionLimit})
		}
		if qty == 0 {
			continue
		}

		pos += qty
		o.Quantity = qty
		decision.Orders = append(decision.Orders, o)
	}
	decision.Final = pos
	return decision
}
