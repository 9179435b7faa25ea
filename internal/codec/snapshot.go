package codec

import (
	"marketmaker/internal/model"
	"marketmaker/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
)

// DecodeSnapshot parses a TradingState document into a validated snapshot.
func DecodeSnapshot(data []byte) (*model.Snapshot, error) {
	var doc TradingState
	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(exception.ErrMalformedSnapshot, err.Error())
	}
	snap, err := FromTradingState(doc)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// EncodeSnapshot renders snap as a TradingState document.
func EncodeSnapshot(snap *model.Snapshot) ([]byte, error) {
	if snap == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "snapshot")
	}
	doc, err := ToTradingState(snap)
	if err != nil {
		return nil, err
	}
	data, err := sonic.ConfigStd.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshal trading state")
	}
	return data, nil
}

// FromTradingState converts a decoded document. Books are keyed by symbol,
// which names the product.
func FromTradingState(doc TradingState) (*model.Snapshot, error) {
	snap := &model.Snapshot{
		TraderData:   doc.TraderData,
		Timestamp:    doc.Timestamp,
		Listings:     make(map[model.Product]model.Listing, len(doc.Listings)),
		Books:        make(map[model.Product]model.OrderBook, len(doc.OrderDepths)),
		OwnTrades:    fromTrades(doc.OwnTrades),
		MarketTrades: fromTrades(doc.MarketTrades),
		Positions:    make(map[model.Product]model.Quantity, len(doc.Position)),
		Observations: model.Observations{
			Plain:      make(map[model.Product]int64, len(doc.Observations.PlainValueObservations)),
			Conversion: make(map[model.Product]model.ConversionObservation, len(doc.Observations.ConversionObservations)),
		},
	}
	if doc.OrderDepths == nil {
		snap.Books = nil
	}

	for symbol, l := range doc.Listings {
		snap.Listings[model.Product(symbol)] = model.Listing{
			Symbol:       l.Symbol,
			Product:      model.Product(l.Product),
			Denomination: l.Denomination,
		}
	}
	for symbol, depth := range doc.OrderDepths {
		buys := make(map[model.Price]model.Quantity, len(depth.BuyOrders))
		for p, v := range depth.BuyOrders {
			buys[model.Price(p)] = model.Quantity(v)
		}
		sells := make(map[model.Price]model.Quantity, len(depth.SellOrders))
		for p, v := range depth.SellOrders {
			sells[model.Price(p)] = model.Quantity(v)
		}
		snap.Books[model.Product(symbol)] = model.NewOrderBook(buys, sells)
	}
	for product, pos := range doc.Position {
		snap.Positions[model.Product(product)] = model.Quantity(pos)
	}
	for product, v := range doc.Observations.PlainValueObservations {
		snap.Observations.Plain[model.Product(product)] = v
	}
	for product, o := range doc.Observations.ConversionObservations {
		obs, err := fromConversion(o)
		if err != nil {
			return nil, errors.Wrapf(exception.ErrMalformedSnapshot, "conversion observation of %s: %v", product, err)
		}
		snap.Observations.Conversion[model.Product(product)] = obs
	}
	return snap, nil
}

// ToTradingState converts a snapshot into its document form.
func ToTradingState(snap *model.Snapshot) (TradingState, error) {
	doc := TradingState{
		TraderData:   snap.TraderData,
		Timestamp:    snap.Timestamp,
		Listings:     make(map[string]Listing, len(snap.Listings)),
		OrderDepths:  make(map[string]OrderDepth, len(snap.Books)),
		OwnTrades:    toTrades(snap.OwnTrades),
		MarketTrades: toTrades(snap.MarketTrades),
		Position:     make(map[string]int64, len(snap.Positions)),
		Observations: Observation{
			PlainValueObservations: make(map[string]int64, len(snap.Observations.Plain)),
			ConversionObservations: make(map[string]ConversionObservation, len(snap.Observations.Conversion)),
		},
	}

	for p, l := range snap.Listings {
		doc.Listings[string(p)] = Listing{Symbol: l.Symbol, Product: string(l.Product), Denomination: l.Denomination}
	}
	for p, book := range snap.Books {
		depth := OrderDepth{
			BuyOrders:  make(map[int64]int64, len(book.Bids)),
			SellOrders: make(map[int64]int64, len(book.Asks)),
		}
		for _, l := range book.Bids {
			depth.BuyOrders[int64(l.Price)] = int64(l.Volume)
		}
		for _, l := range book.Asks {
			depth.SellOrders[int64(l.Price)] = int64(l.Volume)
		}
		doc.OrderDepths[string(p)] = depth
	}
	for p, pos := range snap.Positions {
		doc.Position[string(p)] = int64(pos)
	}
	for p, v := range snap.Observations.Plain {
		doc.Observations.PlainValueObservations[string(p)] = v
	}
	for p, o := range snap.Observations.Conversion {
		c, err := toConversion(o)
		if err != nil {
			return TradingState{}, errors.Wrapf(err, "conversion observation of %s", p)
		}
		doc.Observations.ConversionObservations[string(p)] = c
	}
	return doc, nil
}

func fromTrades(in map[string][]Trade) map[model.Product][]model.Trade {
	out := make(map[model.Product][]model.Trade, len(in))
	for symbol, trades := range in {
		list := make([]model.Trade, 0, len(trades))
		for _, t := range trades {
			list = append(list, model.Trade{
				Product:   model.Product(symbol),
				Price:     model.Price(t.Price),
				Quantity:  model.Quantity(t.Quantity),
				Buyer:     t.Buyer,
				Seller:    t.Seller,
				Timestamp: t.Timestamp,
			})
		}
		out[model.Product(symbol)] = list
	}
	return out
}

func toTrades(in map[model.Product][]model.Trade) map[string][]Trade {
	out := make(map[string][]Trade, len(in))
	for p, trades := range in {
		list := make([]Trade, 0, len(trades))
		for _, t := range trades {
			list = append(list, Trade{
				Symbol:    string(p),
				Price:     int64(t.Price),
				Quantity:  int64(t.Quantity),
				Buyer:     t.Buyer,
				Seller:    t.Seller,
				Timestamp: t.Timestamp,
			})
		}
		out[string(p)] = list
	}
	return out
}

func fromConversion(o ConversionObservation) (model.ConversionObservation, error) {
	var out model.ConversionObservation
	pairs := [...]struct {
		dst *float64
		src decimal.Decimal
	}{
		{&out.BidPrice, o.BidPrice},
		{&out.AskPrice, o.AskPrice},
		{&out.TransportFees, o.TransportFees},
		{&out.ExportTariff, o.ExportTariff},
		{&out.ImportTariff, o.ImportTariff},
		{&out.Sunlight, o.Sunlight},
		{&out.Humidity, o.Humidity},
	}
	for _, p := range pairs {
		f, err := decimalToFloat(p.src)
		if err != nil {
			return model.ConversionObservation{}, err
		}
		*p.dst = f
	}
	return out, nil
}

func toConversion(o model.ConversionObservation) (ConversionObservation, error) {
	var out ConversionObservation
	pairs := [...]struct {
		dst *decimal.Decimal
		src float64
	}{
		{&out.BidPrice, o.BidPrice},
		{&out.AskPrice, o.AskPrice},
		{&out.TransportFees, o.TransportFees},
		{&out.ExportTariff, o.ExportTariff},
		{&out.ImportTariff, o.ImportTariff},
		{&out.Sunlight, o.Sunlight},
		{&out.Humidity, o.Humidity},
	}
	for _, p := range pairs {
		d, err := floatToDecimal(p.src)
		if err != nil {
			return ConversionObservation{}, err
		}
		*p.dst = d
	}
	return out, nil
}
