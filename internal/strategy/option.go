package strategy

import (
	"math"

	"marketmaker/internal/model"
	"marketmaker/internal/pricing"
	"marketmaker/internal/risk"
)

// OptionArbConfig configures trading an option against its underlying.
type OptionArbConfig struct {
	Underlying   model.Product
	Option       model.Product
	Pricer       pricing.BlackScholes
	Premium      float64
	WidePremium  float64
	Limit        model.Quantity
	Lookback     int64
	Tolerance    int64
	DeltaTrigger float64
	// PrimaryMinOrders is the order count the Black-Scholes set must exceed
	// to be used instead of the delta set.
	PrimaryMinOrders int
	HistorySize      int
}

// OptionArb trades the option against its Black-Scholes value, falling back
// to the instantaneous delta between option and underlying when the
// Black-Scholes set holds nothing beyond its two quotes.
type OptionArb struct {
	cfg OptionArbConfig
}

func NewOptionArb(cfg OptionArbConfig) *OptionArb {
	return &OptionArb{cfg: cfg}
}

func (g *OptionArb) Name() string { return "option_arb" }

func (g *OptionArb) Products() []model.Product { return []model.Product{g.cfg.Option} }

func (g *OptionArb) Generate(snap *model.Snapshot, st *State) (Result, error) {
	underBook, err := requireBook(snap, g.cfg.Underlying)
	if err != nil {
		return Result{}, err
	}
	optionBook, err := requireBook(snap, g.cfg.Option)
	if err != nil {
		return Result{}, err
	}

	underMid, _ := underBook.Mid()
	optionMid, _ := optionBook.Mid()
	underHistory := st.History(g.cfg.Underlying, g.cfg.HistorySize)
	optionHistory := st.History(g.cfg.Option, g.cfg.HistorySize)
	underHistory.Put(snap.Timestamp, underMid)
	optionHistory.Put(snap.Timestamp, optionMid)

	position := snap.Position(g.cfg.Option)
	res := newResult(g.cfg.Option)

	primary := g.scholes(optionBook, underMid, position)
	if len(primary) > g.cfg.PrimaryMinOrders {
		res.Orders[g.cfg.Option] = primary
		return res, nil
	}

	sig, ok := pricing.Delta(underHistory, optionHistory, snap.Timestamp, g.cfg.Lookback, g.cfg.Tolerance)
	if ok {
		res.Orders[g.cfg.Option] = g.delta(optionBook, sig, position)
	}
	return res, nil
}

// scholes takes levels priced beyond the premium band and quotes the rest
// of each side's budget at the wide band. Buy and sell budgets are sized
// independently from the held position.
func (g *OptionArb) scholes(book model.OrderBook, spot float64, position model.Quantity) []model.Order {
	estimate, ok := g.cfg.Pricer.Call(spot)
	if !ok {
		return nil
	}

	p := g.cfg.Option
	sells := risk.NewTracker(g.cfg.Limit, position)
	buys := risk.NewTracker(g.cfg.Limit, position)
	orders := make([]model.Order, 0, len(book.Bids)+len(book.Asks)+2)

	for _, bid := range book.Bids {
		if estimate+g.cfg.Premium < float64(bid.Price) {
			orders = append(orders, model.Order{Product: p, Price: bid.Price, Quantity: sells.Sell(bid.Volume)})
		}
	}
	for _, ask := range book.Asks {
		if estimate-g.cfg.Premium > float64(ask.Price) {
			orders = append(orders, model.Order{Product: p, Price: ask.Price, Quantity: buys.Buy(ask.Volume)})
		}
	}

	orders = append(orders,
		model.Order{Product: p, Price: ceilPrice(estimate + g.cfg.WidePremium), Quantity: sells.SellHeadroom()},
		model.Order{Product: p, Price: floorPrice(estimate - g.cfg.WidePremium), Quantity: buys.BuyHeadroom()},
	)
	return orders
}

// delta trades against the option's own move once it is large relative to
// the underlying's: an option that rose is sold, one that fell is bought.
// The remainder after sweeping the book rests at the best bid.
func (g *OptionArb) delta(book model.OrderBook, sig pricing.DeltaSignal, position model.Quantity) []model.Order {
	if math.Abs(sig.Ratio) < g.cfg.DeltaTrigger {
		return nil
	}

	p := g.cfg.Option
	bestBid, _ := book.BestBid()
	tr := risk.NewTracker(g.cfg.Limit, position)
	orders := make([]model.Order, 0, len(book.Bids)+1)

	if sig.DerivedChange > 0 {
		for _, bid := range book.Bids {
			orders = append(orders, model.Order{Product: p, Price: bid.Price, Quantity: tr.Sell(bid.Volume)})
		}
		return append(orders, model.Order{Product: p, Price: bestBid.Price, Quantity: tr.SellHeadroom()})
	}

	for _, ask := range book.Asks {
		orders = append(orders, model.Order{Product: p, Price: ask.Price, Quantity: tr.Buy(ask.Volume)})
	}
	return append(orders, model.Order{Product: p, Price: bestBid.Price, Quantity: tr.BuyHeadroom()})
}
