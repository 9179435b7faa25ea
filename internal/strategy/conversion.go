package strategy

import (
	"marketmaker/internal/model"
	"marketmaker/internal/risk"
	"marketmaker/pkg/exception"

	"github.com/yanun0323/errors"
)

// ConversionConfig configures the import arbitrage.
type ConversionConfig struct {
	Product model.Product
	Markup  float64
	Limit   model.Quantity
}

// Conversion sells on the local book above the cost of importing through
// conversion, and flattens the position by conversion every tick.
type Conversion struct {
	cfg ConversionConfig
}

func NewConversion(cfg ConversionConfig) *Conversion {
	return &Conversion{cfg: cfg}
}

func (g *Conversion) Name() string { return "conversion" }

func (g *Conversion) Products() []model.Product { return []model.Product{g.cfg.Product} }

func (g *Conversion) Generate(snap *model.Snapshot, _ *State) (Result, error) {
	p := g.cfg.Product
	book, ok := snap.Books[p]
	if !ok || book.Empty() {
		return Result{}, errors.Wrapf(exception.ErrMissingBook, "product: %s", p)
	}
	obs, ok := snap.Conversion(p)
	if !ok {
		return Result{}, errors.Wrapf(exception.ErrMissingObservation, "product: %s", p)
	}
	landed := obs.LandedCost()
	if !finite(landed) {
		return Result{}, errors.Wrapf(exception.ErrMissingObservation, "product: %s, landed cost: %v", p, landed)
	}

	position := snap.Position(p)
	tr := risk.NewTracker(g.cfg.Limit, position)
	res := newResult(p)

	// single shot: only the best qualifying bid is hit
	for _, bid := range book.Bids {
		if float64(bid.Price) > landed {
			if qty := tr.Sell(bid.Volume); qty != 0 {
				res.add(p, bid.Price, qty)
			}
			break
		}
	}

	res.add(p, ceilPrice(landed+g.cfg.Markup), max(tr.SellHeadroom(), -g.cfg.Limit))
	res.Conversions = -int64(position)
	return res, nil
}
