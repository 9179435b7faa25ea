package strategy

import (
	"marketmaker/internal/model"
	"marketmaker/internal/pricing"
)

func DefaultTakerMakerConfig() TakerMakerConfig {
	return TakerMakerConfig{
		Product:   model.Amethysts,
		FairValue: 10000,
		Deviation: 4,
		Limit:     20,
	}
}

func DefaultEMAMakerConfig() EMAMakerConfig {
	return EMAMakerConfig{
		Product: model.Starfruit,
		Alpha:   0.33,
		Spread:  1,
		Limit:   20,
	}
}

func DefaultConversionConfig() ConversionConfig {
	return ConversionConfig{
		Product: model.Orchids,
		Markup:  1.2,
		Limit:   100,
	}
}

// DefaultBasketArbConfig values GIFT_BASKET as 6 STRAWBERRIES, 4 CHOCOLATE
// and 1 ROSES plus 355. The quoting ratio folds in the regression slopes
// of chocolate and roses on strawberries.
func DefaultBasketArbConfig() BasketArbConfig {
	return BasketArbConfig{
		Basket: model.GiftBasket,
		Quoted: model.Strawberries,
		Components: []pricing.Component{
			{Product: model.Strawberries, Weight: 6},
			{Product: model.Chocolate, Weight: 4},
			{Product: model.Roses, Weight: 1},
		},
		Offset:        355,
		Ratio:         6 + 4*1.9656933442176188 + 3.6026796488094828,
		QuoteMargin:   20,
		SellThreshold: 25,
		BuyThreshold:  55,
		BasketLimit:   60,
		QuotedLimit:   350,
	}
}

func DefaultOptionArbConfig() OptionArbConfig {
	return OptionArbConfig{
		Underlying: model.Coconut,
		Option:     model.CoconutCoupon,
		Pricer: pricing.BlackScholes{
			Strike: 10000,
			Rate:   -0.052855941708912724,
			Vol:    0.24086532541788852,
			Expiry: 250.0 / 365.0,
		},
		Premium:          6,
		WidePremium:      10,
		Limit:            600,
		Lookback:         5000,
		DeltaTrigger:     2.5,
		PrimaryMinOrders: 2,
		HistorySize:      pricing.DefaultHistorySize,
	}
}

func DefaultFollowConfig() FollowConfig {
	return FollowConfig{
		Product:      model.Roses,
		Counterparty: "Vladimir",
		Window:       1000,
		Limit:        60,
	}
}
