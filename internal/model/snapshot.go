package model

import (
	"marketmaker/pkg/exception"

	"github.com/yanun0323/errors"
)

// Order is a request to trade. Positive Quantity buys, negative sells.
type Order struct {
	Product  Product
	Price    Price
	Quantity Quantity
}

// String implements fmt.Stringer for Order.
func (o Order) String() string {
	buf := make([]byte, 0, 48)
	buf = append(buf, '(')
	buf = append(buf, string(o.Product)...)
	buf = append(buf, ", "...)
	buf = o.Price.AppendString(buf)
	buf = append(buf, ", "...)
	buf = o.Quantity.AppendString(buf)
	buf = append(buf, ')')
	return string(buf)
}

// Trade is an executed trade reported by the exchange.
type Trade struct {
	Product   Product
	Price     Price
	Quantity  Quantity
	Buyer     string
	Seller    string
	Timestamp int64
}

// Listing describes how a product is quoted.
type Listing struct {
	Symbol       string
	Product      Product
	Denomination string
}

// ConversionObservation carries the external venue quote used by conversions.
type ConversionObservation struct {
	BidPrice      float64
	AskPrice      float64
	TransportFees float64
	ExportTariff  float64
	ImportTariff  float64
	Sunlight      float64
	Humidity      float64
}

// LandedCost is the price of importing one unit through conversion.
func (o ConversionObservation) LandedCost() float64 {
	return o.AskPrice + o.ImportTariff + o.TransportFees
}

// Observations are values published alongside the books.
type Observations struct {
	Plain      map[Product]int64
	Conversion map[Product]ConversionObservation
}

// Snapshot is the read-only market state of one tick.
type Snapshot struct {
	TraderData   string
	Timestamp    int64
	Listings     map[Product]Listing
	Books        map[Product]OrderBook
	OwnTrades    map[Product][]Trade
	MarketTrades map[Product][]Trade
	Positions    map[Product]Quantity
	Observations Observations
}

// Validate reports whether the snapshot can be processed at all.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.Wrap(exception.ErrMalformedSnapshot, "nil snapshot")
	}
	if s.Books == nil {
		return errors.Wrap(exception.ErrMalformedSnapshot, "order books are absent")
	}
	if s.Timestamp < 0 {
		return errors.Wrapf(exception.ErrMalformedSnapshot, "negative timestamp: %d", s.Timestamp)
	}
	return nil
}

// Position returns the held position of p, zero when absent.
func (s *Snapshot) Position(p Product) Quantity {
	return s.Positions[p]
}

// Book returns the order book of p when it is present and two-sided.
func (s *Snapshot) Book(p Product) (OrderBook, bool) {
	book, ok := s.Books[p]
	if !ok || !book.TwoSided() {
		return OrderBook{}, false
	}
	return book, true
}

// Conversion returns the conversion observation of p.
func (s *Snapshot) Conversion(p Product) (ConversionObservation, bool) {
	if s.Observations.Conversion == nil {
		return ConversionObservation{}, false
	}
	obs, ok := s.Observations.Conversion[p]
	return obs, ok
}
