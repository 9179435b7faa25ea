package strategy

import (
	"marketmaker/internal/model"
	"marketmaker/internal/pricing"
	"marketmaker/internal/risk"
	"marketmaker/pkg/exception"

	"github.com/yanun0323/errors"
)

// BasketArbConfig configures the basket arbitrage.
type BasketArbConfig struct {
	Basket     model.Product
	Quoted     model.Product
	Components []pricing.Component
	Offset     float64
	// Ratio is the basket price move implied by one unit of the quoted component.
	Ratio         float64
	QuoteMargin   float64
	SellThreshold float64
	BuyThreshold  float64
	BasketLimit   model.Quantity
	QuotedLimit   model.Quantity
}

// BasketArb quotes one component at the price implied by the basket book,
// and takes the basket book when it strays from the value of its components.
type BasketArb struct {
	cfg    BasketArbConfig
	basket pricing.Basket
}

func NewBasketArb(cfg BasketArbConfig) *BasketArb {
	return &BasketArb{
		cfg:    cfg,
		basket: pricing.Basket{Components: cfg.Components, Offset: cfg.Offset},
	}
}

func (g *BasketArb) Name() string { return "basket_arb" }

func (g *BasketArb) Products() []model.Product {
	return []model.Product{g.cfg.Quoted, g.cfg.Basket}
}

func (g *BasketArb) Generate(snap *model.Snapshot, _ *State) (Result, error) {
	basketBook, err := requireBook(snap, g.cfg.Basket)
	if err != nil {
		return Result{}, err
	}
	for _, c := range g.cfg.Components {
		if _, err := requireBook(snap, c.Product); err != nil {
			return Result{}, err
		}
	}

	componentAsk, ok := g.basket.AskValue(snap.Books)
	if !ok {
		return Result{}, errors.Wrapf(exception.ErrMissingBook, "basket components of %s", g.cfg.Basket)
	}
	componentBid, ok := g.basket.BidValue(snap.Books)
	if !ok {
		return Result{}, errors.Wrapf(exception.ErrMissingBook, "basket components of %s", g.cfg.Basket)
	}

	res := newResult(g.Products()...)
	if err := g.quote(res, snap, basketBook); err != nil {
		return Result{}, err
	}
	g.take(res, snap, basketBook, componentAsk, componentBid)
	return res, nil
}

func (g *BasketArb) quote(res Result, snap *model.Snapshot, basketBook model.OrderBook) error {
	p := g.cfg.Quoted
	bestAsk, _ := basketBook.BestAsk()
	bestBid, _ := basketBook.BestBid()

	impliedAsk, ok := g.basket.Invert(float64(bestAsk.Price), g.cfg.Ratio)
	if !ok {
		return errors.Wrapf(exception.ErrStrategyInvalidKnob, "basket ratio: %v", g.cfg.Ratio)
	}
	impliedBid, _ := g.basket.Invert(float64(bestBid.Price), g.cfg.Ratio)

	position := snap.Position(p)
	limit := g.cfg.QuotedLimit

	if qty := max(-limit-position, -limit); qty != 0 {
		res.add(p, ceilPrice(impliedAsk+g.cfg.QuoteMargin), qty)
	}
	if qty := min(limit-position, limit); qty != 0 {
		res.add(p, floorPrice(impliedBid-g.cfg.QuoteMargin), qty)
	}
	return nil
}

func (g *BasketArb) take(res Result, snap *model.Snapshot, basketBook model.OrderBook, componentAsk, componentBid float64) {
	p := g.cfg.Basket
	limit := g.cfg.BasketLimit
	tr := risk.NewTracker(limit, snap.Position(p))

	for _, bid := range basketBook.Bids {
		if float64(bid.Price)-g.cfg.SellThreshold <= componentAsk || tr.Position() <= -limit {
			continue
		}
		if qty := tr.Sell(bid.Volume); qty != 0 {
			res.add(p, bid.Price, qty)
		}
	}

	for _, ask := range basketBook.Asks {
		if float64(ask.Price)+g.cfg.BuyThreshold >= componentBid || tr.Position() >= limit {
			continue
		}
		if qty := tr.Buy(ask.Volume); qty != 0 {
			res.add(p, ask.Price, qty)
		}
	}
}
