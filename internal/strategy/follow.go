package strategy

import (
	"marketmaker/internal/model"
	"marketmaker/internal/risk"
)

// FollowConfig configures mirroring a counterparty.
type FollowConfig struct {
	Product      model.Product
	Counterparty string
	Window       int64
	Limit        model.Quantity
}

// Follow copies the recent market trades of one counterparty at the price
// they traded.
type Follow struct {
	cfg FollowConfig
}

func NewFollow(cfg FollowConfig) *Follow {
	return &Follow{cfg: cfg}
}

func (g *Follow) Name() string { return "follow" }

func (g *Follow) Products() []model.Product { return []model.Product{g.cfg.Product} }

func (g *Follow) Generate(snap *model.Snapshot, _ *State) (Result, error) {
	p := g.cfg.Product
	res := newResult(p)
	tr := risk.NewTracker(g.cfg.Limit, snap.Position(p))
	since := snap.Timestamp - g.cfg.Window

	for _, trade := range snap.MarketTrades[p] {
		if trade.Timestamp < since {
			continue
		}
		switch g.cfg.Counterparty {
		case trade.Buyer:
			if qty := tr.Buy(trade.Quantity); qty != 0 {
				res.add(p, trade.Price, qty)
			}
		case trade.Seller:
			if qty := tr.Sell(trade.Quantity); qty != 0 {
				res.add(p, trade.Price, qty)
			}
		}
	}
	return res, nil
}
