package strategy

import (
	"marketmaker/internal/model"
	"marketmaker/internal/risk"
)

// EMAMakerConfig configures quoting around a smoothed mid-price.
type EMAMakerConfig struct {
	Product model.Product
	Alpha   float64
	Spread  float64
	Limit   model.Quantity
}

// EMAMaker quotes one bid and one ask around the EMA of the mid-price, each
// sized to the full remaining headroom.
type EMAMaker struct {
	cfg EMAMakerConfig
}

func NewEMAMaker(cfg EMAMakerConfig) *EMAMaker {
	return &EMAMaker{cfg: cfg}
}

func (g *EMAMaker) Name() string { return "ema_maker" }

func (g *EMAMaker) Products() []model.Product { return []model.Product{g.cfg.Product} }

func (g *EMAMaker) Generate(snap *model.Snapshot, st *State) (Result, error) {
	p := g.cfg.Product
	book, err := requireBook(snap, p)
	if err != nil {
		return Result{}, err
	}
	mid, _ := book.Mid()

	ema := st.EMA(p, g.cfg.Alpha).Update(mid)
	tr := risk.NewTracker(g.cfg.Limit, snap.Position(p))

	res := newResult(p)
	res.add(p, floorPrice(ema-g.cfg.Spread), tr.BuyHeadroom())
	res.add(p, ceilPrice(ema+g.cfg.Spread), tr.SellHeadroom())
	return res, nil
}
