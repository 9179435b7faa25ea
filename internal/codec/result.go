package codec

import (
	"sort"

	"marketmaker/internal/core"
	"marketmaker/internal/model"
	"marketmaker/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

// FromOutput converts a trader output into its document form.
func FromOutput(out core.Output) Result {
	r := Result{
		Orders:      make(map[string][]Order, len(out.Orders)),
		Conversions: out.Conversions,
		TraderData:  out.TraderData,
	}
	for p, orders := range out.Orders {
		list := make([]Order, 0, len(orders))
		for _, o := range orders {
			list = append(list, Order{Symbol: string(o.Product), Price: int64(o.Price), Quantity: int64(o.Quantity)})
		}
		r.Orders[string(p)] = list
	}
	return r
}

// ToOutput converts a result document back into a trader output.
func ToOutput(r Result) core.Output {
	out := core.Output{
		Orders:      make(map[model.Product][]model.Order, len(r.Orders)),
		Conversions: r.Conversions,
		TraderData:  r.TraderData,
	}
	for symbol, orders := range r.Orders {
		list := make([]model.Order, 0, len(orders))
		for _, o := range orders {
			p := model.Product(o.Symbol)
			if p == "" {
				p = model.Product(symbol)
			}
			list = append(list, model.Order{Product: p, Price: model.Price(o.Price), Quantity: model.Quantity(o.Quantity)})
		}
		out.Orders[model.Product(symbol)] = list
	}
	return out
}

// EncodeResult renders out as a Result document.
func EncodeResult(out core.Output) ([]byte, error) {
	data, err := sonic.ConfigStd.Marshal(FromOutput(out))
	if err != nil {
		return nil, errors.Wrap(err, "marshal result")
	}
	return data, nil
}

// DecodeResult parses a Result document.
func DecodeResult(data []byte) (core.Output, error) {
	var r Result
	if err := sonic.ConfigStd.Unmarshal(data, &r); err != nil {
		return core.Output{}, errors.Wrap(exception.ErrFeedProtocol, err.Error())
	}
	return ToOutput(r), nil
}

// Products returns the products of out in name order.
func Products(out core.Output) []model.Product {
	ps := make([]model.Product, 0, len(out.Orders))
	for p := range out.Orders {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	return ps
}
