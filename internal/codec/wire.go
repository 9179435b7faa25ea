// Package codec converts between the exchange's JSON documents and the
// trader's model.
package codec

import "github.com/yanun0323/decimal"

// TradingState is the snapshot document sent by the exchange.
type TradingState struct {
	TraderData   string                `json:"traderData"`
	Timestamp    int64                 `json:"timestamp"`
	Listings     map[string]Listing    `json:"listings"`
	OrderDepths  map[string]OrderDepth `json:"order_depths"`
	OwnTrades    map[string][]Trade    `json:"own_trades"`
	MarketTrades map[string][]Trade    `json:"market_trades"`
	Position     map[string]int64      `json:"position"`
	Observations Observation           `json:"observations"`
}

type Listing struct {
	Symbol       string `json:"symbol"`
	Product      string `json:"product"`
	Denomination string `json:"denomination"`
}

// OrderDepth holds resting volume by price. Sell volumes are negative.
type OrderDepth struct {
	BuyOrders  map[int64]int64 `json:"buy_orders"`
	SellOrders map[int64]int64 `json:"sell_orders"`
}

type Trade struct {
	Symbol    string `json:"symbol"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Buyer     string `json:"buyer"`
	Seller    string `json:"seller"`
	Timestamp int64  `json:"timestamp"`
}

type Observation struct {
	PlainValueObservations map[string]int64                 `json:"plainValueObservations"`
	ConversionObservations map[string]ConversionObservation `json:"conversionObservations"`
}

type ConversionObservation struct {
	BidPrice      decimal.Decimal `json:"bidPrice"`
	AskPrice      decimal.Decimal `json:"askPrice"`
	TransportFees decimal.Decimal `json:"transportFees"`
	ExportTariff  decimal.Decimal `json:"exportTariff"`
	ImportTariff  decimal.Decimal `json:"importTariff"`
	Sunlight      decimal.Decimal `json:"sunlight"`
	Humidity      decimal.Decimal `json:"humidity"`
}

type Order struct {
	Symbol   string `json:"symbol"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// Result is the answer document returned to the exchange.
type Result struct {
	Orders      map[string][]Order `json:"orders"`
	Conversions int64              `json:"conversions"`
	TraderData  string             `json:"traderData"`
}
