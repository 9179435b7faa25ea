package strategy

import (
	"marketmaker/internal/model"
	"marketmaker/internal/pricing"
	"marketmaker/internal/risk"
)

// TakerMakerConfig configures market taking and making around a fixed price.
type TakerMakerConfig struct {
	Product   model.Product
	FairValue float64
	Deviation float64
	Limit     model.Quantity
}

// TakerMaker first takes resting orders mispriced against a fixed fair
// value, then quotes around it with whatever headroom is left.
type TakerMaker struct {
	cfg  TakerMakerConfig
	fair pricing.Fixed
}

func NewTakerMaker(cfg TakerMakerConfig) *TakerMaker {
	return &TakerMaker{cfg: cfg, fair: pricing.Fixed(cfg.FairValue)}
}

func (g *TakerMaker) Name() string { return "taker_maker" }

func (g *TakerMaker) Products() []model.Product { return []model.Product{g.cfg.Product} }

func (g *TakerMaker) Generate(snap *model.Snapshot, _ *State) (Result, error) {
	p := g.cfg.Product
	book, err := requireBook(snap, p)
	if err != nil {
		return Result{}, err
	}

	res := newResult(p)
	fair := g.fair.FairValue()
	tr := risk.NewTracker(g.cfg.Limit, snap.Position(p))

	g.take(res, tr, book, fair)

	res.add(p, floorPrice(fair-g.cfg.Deviation), tr.QuoteBid())
	res.add(p, ceilPrice(fair+g.cfg.Deviation), tr.QuoteAsk())
	return res, nil
}

// take walks each side in book order. A level that cannot be taken in full
// is taken up to the limit and ends that side.
func (g *TakerMaker) take(res Result, tr *risk.Tracker, book model.OrderBook, fair float64) {
	p := g.cfg.Product
	for _, bid := range book.Bids {
		if float64(bid.Price) <= fair {
			continue
		}
		qty := tr.Sell(bid.Volume)
		if qty != 0 {
			res.add(p, bid.Price, qty)
		}
		if qty.Abs() < bid.Volume.Abs() {
			break
		}
	}

	for _, ask := range book.Asks {
		if float64(ask.Price) >= fair {
			continue
		}
		qty := tr.Buy(ask.Volume)
		if qty != 0 {
			res.add(p, ask.Price, qty)
		}
		if qty < ask.Volume.Abs() {
			break
		}
	}
}
