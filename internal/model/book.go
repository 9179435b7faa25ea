package model

import "sort"

// Level is one resting price level. Ask volumes are negative.
type Level struct {
	Price  Price
	Volume Quantity
}

// OrderBook holds the resting depth of one product at one tick.
//
// Bids are sorted by price descending and Asks by price ascending, so
// index 0 is always the best level on each side.
type OrderBook struct {
	Bids []Level
	Asks []Level
}

// NewOrderBook builds a sorted book from the exchange's price->volume maps.
func NewOrderBook(buys, sells map[Price]Quantity) OrderBook {
	book := OrderBook{
		Bids: make([]Level, 0, len(buys)),
		Asks: make([]Level, 0, len(sells)),
	}
	for price, volume := range buys {
		book.Bids = append(book.Bids, Level{Price: price, Volume: volume})
	}
	for price, volume := range sells {
		book.Asks = append(book.Asks, Level{Price: price, Volume: volume})
	}
	book.Sort()
	return book
}

// Sort restores the best-first ordering of both sides.
func (b *OrderBook) Sort() {
	sort.Slice(b.Bids, func(i, j int) bool { return b.Bids[i].Price > b.Bids[j].Price })
	sort.Slice(b.Asks, func(i, j int) bool { return b.Asks[i].Price < b.Asks[j].Price })
}

// BestBid returns the highest bid.
func (b OrderBook) BestBid() (Level, bool) {
	if len(b.Bids) == 0 {
		return Level{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the lowest ask.
func (b OrderBook) BestAsk() (Level, bool) {
	if len(b.Asks) == 0 {
		return Level{}, false
	}
	return b.Asks[0], true
}

// Mid returns the average of best bid and best ask.
func (b OrderBook) Mid() (float64, bool) {
	bid, ok := b.BestBid()
	if !ok {
		return 0, false
	}
	ask, ok := b.BestAsk()
	if !ok {
		return 0, false
	}
	return float64(bid.Price+ask.Price) / 2, true
}

// Empty reports whether neither side has depth.
func (b OrderBook) Empty() bool {
	return len(b.Bids) == 0 && len(b.Asks) == 0
}

// TwoSided reports whether both sides have at least one level.
func (b OrderBook) TwoSided() bool {
	return len(b.Bids) != 0 && len(b.Asks) != 0
}

// Debug returns a human readable format string
func (b OrderBook) Debug() string {
	appendSide := func(buf []byte, rows []Level) []byte {
		buf = append(buf, '[')
		for i := range rows {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, '(')
			buf = rows[i].Price.AppendString(buf)
			buf = append(buf, ',')
			buf = rows[i].Volume.AppendString(buf)
			buf = append(buf, ')')
		}
		buf = append(buf, ']')
		return buf
	}

	buf := make([]byte, 0, 128)
	buf = append(buf, "OrderBook{bids="...)
	buf = appendSide(buf, b.Bids)
	buf = append(buf, " asks="...)
	buf = appendSide(buf, b.Asks)
	buf = append(buf, '}')
	return string(buf)
}
