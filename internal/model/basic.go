package model

import "strconv"

// Price is an integer price in exchange ticks.
type Price int64

func (p Price) AppendString(buf []byte) []byte {
	return strconv.AppendInt(buf, int64(p), 10)
}

// Quantity is a signed integer volume. Positive is buy side, negative is sell side.
type Quantity int64

func (q Quantity) AppendString(buf []byte) []byte {
	return strconv.AppendInt(buf, int64(q), 10)
}

// Abs returns the unsigned size of q.
func (q Quantity) Abs() Quantity {
	if q < 0 {
		return -q
	}
	return q
}

// Product identifies a tradable instrument.
type Product string

const (
	Amethysts     Product = "AMETHYSTS"
	Starfruit     Product = "STARFRUIT"
	Orchids       Product = "ORCHIDS"
	Chocolate     Product = "CHOCOLATE"
	Strawberries  Product = "STRAWBERRIES"
	Roses         Product = "ROSES"
	GiftBasket    Product = "GIFT_BASKET"
	Coconut       Product = "COCONUT"
	CoconutCoupon Product = "COCONUT_COUPON"
)

func (p Product) String() string {
	return string(p)
}
