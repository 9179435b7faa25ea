package pricing

import "marketmaker/internal/model"

// Component is one leg of a basket.
type Component struct {
	Product model.Product
	Weight  float64
}

// Basket values a product as a weighted sum of its components plus an offset.
type Basket struct {
	Components []Component
	Offset     float64
}

// AskValue prices the basket from the best ask of every component.
func (b Basket) AskValue(books map[model.Product]model.OrderBook) (float64, bool) {
	return b.value(books, func(book model.OrderBook) (model.Level, bool) { return book.BestAsk() })
}

// BidValue prices the basket from the best bid of every component.
func (b Basket) BidValue(books map[model.Product]model.OrderBook) (float64, bool) {
	return b.value(books, func(book model.OrderBook) (model.Level, bool) { return book.BestBid() })
}

func (b Basket) value(books map[model.Product]model.OrderBook, best func(model.OrderBook) (model.Level, bool)) (float64, bool) {
	total := b.Offset
	for _, c := range b.Components {
		book, ok := books[c.Product]
		if !ok {
			return 0, false
		}
		level, ok := best(book)
		if !ok {
			return 0, false
		}
		total += c.Weight * float64(level.Price)
	}
	return total, true
}

// Invert returns the component price implied by a basket price, where ratio
// is the number of component units the basket moves per unit of component.
func (b Basket) Invert(basketPrice, ratio float64) (float64, bool) {
	if ratio == 0 {
		return 0, false
	}
	return (basketPrice - b.Offset) / ratio, true
}
