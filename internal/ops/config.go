package ops

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"marketmaker/internal/model"
	"marketmaker/internal/pricing"
	"marketmaker/internal/risk"
	"marketmaker/internal/strategy"
	"marketmaker/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"gopkg.in/yaml.v3"
)

// defaultTickSpacing is the timestamp step between exchange snapshots.
const defaultTickSpacing int64 = 100

// FileConfig mirrors the config file layout. Absent fields keep the
// built-in defaults.
type FileConfig struct {
	Stateless  *bool            `json:"stateless" yaml:"stateless"`
	Generators GeneratorsConfig `json:"generators" yaml:"generators"`
}

// GeneratorsConfig holds one section per generator.
type GeneratorsConfig struct {
	TakerMaker TakerMakerConfig `json:"takerMaker" yaml:"takerMaker"`
	EMAMaker   EMAMakerConfig   `json:"emaMaker" yaml:"emaMaker"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	BasketArb  BasketArbConfig  `json:"basketArb" yaml:"basketArb"`
	OptionArb  OptionArbConfig  `json:"optionArb" yaml:"optionArb"`
	Follow     FollowConfig     `json:"follow" yaml:"follow"`
}

type TakerMakerConfig struct {
	Enabled   *bool    `json:"enabled" yaml:"enabled"`
	Product   string   `json:"product" yaml:"product"`
	FairValue *float64 `json:"fairValue" yaml:"fairValue"`
	Deviation *float64 `json:"deviation" yaml:"deviation"`
	Limit     *int64   `json:"limit" yaml:"limit"`
}

type EMAMakerConfig struct {
	Enabled *bool    `json:"enabled" yaml:"enabled"`
	Product string   `json:"product" yaml:"product"`
	Alpha   *float64 `json:"alpha" yaml:"alpha"`
	Spread  *float64 `json:"spread" yaml:"spread"`
	Limit   *int64   `json:"limit" yaml:"limit"`
}

type ConversionConfig struct {
	Enabled *bool    `json:"enabled" yaml:"enabled"`
	Product string   `json:"product" yaml:"product"`
	Markup  *float64 `json:"markup" yaml:"markup"`
	Limit   *int64   `json:"limit" yaml:"limit"`
}

// ComponentConfig is one weighted basket component.
type ComponentConfig struct {
	Product string  `json:"product" yaml:"product"`
	Weight  float64 `json:"weight" yaml:"weight"`
}

type BasketArbConfig struct {
	Enabled       *bool             `json:"enabled" yaml:"enabled"`
	Basket        string            `json:"basket" yaml:"basket"`
	Quoted        string            `json:"quoted" yaml:"quoted"`
	Components    []ComponentConfig `json:"components" yaml:"components"`
	Offset        *float64          `json:"offset" yaml:"offset"`
	Ratio         *float64          `json:"ratio" yaml:"ratio"`
	QuoteMargin   *float64          `json:"quoteMargin" yaml:"quoteMargin"`
	SellThreshold *float64          `json:"sellThreshold" yaml:"sellThreshold"`
	BuyThreshold  *float64          `json:"buyThreshold" yaml:"buyThreshold"`
	BasketLimit   *int64            `json:"basketLimit" yaml:"basketLimit"`
	QuotedLimit   *int64            `json:"quotedLimit" yaml:"quotedLimit"`
}

type OptionArbConfig struct {
	Enabled          *bool    `json:"enabled" yaml:"enabled"`
	Underlying       string   `json:"underlying" yaml:"underlying"`
	Option           string   `json:"option" yaml:"option"`
	Strike           *float64 `json:"strike" yaml:"strike"`
	Rate             *float64 `json:"rate" yaml:"rate"`
	Vol              *float64 `json:"vol" yaml:"vol"`
	ExpiryDays       *float64 `json:"expiryDays" yaml:"expiryDays"`
	Premium          *float64 `json:"premium" yaml:"premium"`
	WidePremium      *float64 `json:"widePremium" yaml:"widePremium"`
	Limit            *int64   `json:"limit" yaml:"limit"`
	Lookback         *int64   `json:"lookback" yaml:"lookback"`
	Tolerance        *int64   `json:"tolerance" yaml:"tolerance"`
	DeltaTrigger     *float64 `json:"deltaTrigger" yaml:"deltaTrigger"`
	PrimaryMinOrders *int     `json:"primaryMinOrders" yaml:"primaryMinOrders"`
	HistorySize      *int     `json:"historySize" yaml:"historySize"`
	// TickSpacing is the expected gap between snapshot timestamps. It sizes
	// the mid histories so the lookback stays within reach.
	TickSpacing *int64 `json:"tickSpacing" yaml:"tickSpacing"`
}

type FollowConfig struct {
	Enabled      *bool  `json:"enabled" yaml:"enabled"`
	Product      string `json:"product" yaml:"product"`
	Counterparty string `json:"counterparty" yaml:"counterparty"`
	Window       *int64 `json:"window" yaml:"window"`
	Limit        *int64 `json:"limit" yaml:"limit"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Generators []strategy.Generator
	Limits     risk.Limits
	Stateless  bool
}

// Load reads a JSON or YAML config file, chosen by extension, and resolves it.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}

	var cfg FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = sonic.ConfigStd.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Loaded{}, errors.Wrapf(exception.ErrArgumentUnsupported, "config extension: %s", filepath.Ext(path))
	}
	if err != nil {
		return Loaded{}, errors.Wrapf(err, "decode config %s", path)
	}
	return Resolve(cfg)
}

// Default resolves an empty file config.
func Default() Loaded {
	loaded, err := Resolve(FileConfig{})
	if err != nil {
		panic(err)
	}
	return loaded
}

// Resolve applies cfg over the built-in defaults and builds the generators
// in invocation order.
func Resolve(cfg FileConfig) (Loaded, error) {
	r := resolver{limits: make(risk.Limits), owners: make(map[model.Product]string)}

	if enabled(cfg.Generators.TakerMaker.Enabled, true) {
		c, err := resolveTakerMaker(cfg.Generators.TakerMaker)
		if err != nil {
			return Loaded{}, err
		}
		if err := r.add(strategy.NewTakerMaker(c), map[model.Product]model.Quantity{c.Product: c.Limit}); err != nil {
			return Loaded{}, err
		}
	}
	if enabled(cfg.Generators.EMAMaker.Enabled, true) {
		c, err := resolveEMAMaker(cfg.Generators.EMAMaker)
		if err != nil {
			return Loaded{}, err
		}
		if err := r.add(strategy.NewEMAMaker(c), map[model.Product]model.Quantity{c.Product: c.Limit}); err != nil {
			return Loaded{}, err
		}
	}
	if enabled(cfg.Generators.Conversion.Enabled, true) {
		c, err := resolveConversion(cfg.Generators.Conversion)
		if err != nil {
			return Loaded{}, err
		}
		if err := r.add(strategy.NewConversion(c), map[model.Product]model.Quantity{c.Product: c.Limit}); err != nil {
			return Loaded{}, err
		}
	}
	if enabled(cfg.Generators.BasketArb.Enabled, true) {
		c, err := resolveBasketArb(cfg.Generators.BasketArb)
		if err != nil {
			return Loaded{}, err
		}
		limits := map[model.Product]model.Quantity{c.Quoted: c.QuotedLimit, c.Basket: c.BasketLimit}
		if err := r.add(strategy.NewBasketArb(c), limits); err != nil {
			return Loaded{}, err
		}
	}
	if enabled(cfg.Generators.OptionArb.Enabled, true) {
		c, err := resolveOptionArb(cfg.Generators.OptionArb)
		if err != nil {
			return Loaded{}, err
		}
		if err := r.add(strategy.NewOptionArb(c), map[model.Product]model.Quantity{c.Option: c.Limit}); err != nil {
			return Loaded{}, err
		}
	}
	if enabled(cfg.Generators.Follow.Enabled, false) {
		c, err := resolveFollow(cfg.Generators.Follow)
		if err != nil {
			return Loaded{}, err
		}
		if err := r.add(strategy.NewFollow(c), map[model.Product]model.Quantity{c.Product: c.Limit}); err != nil {
			return Loaded{}, err
		}
	}

	return Loaded{
		Generators: r.generators,
		Limits:     r.limits,
		Stateless:  enabled(cfg.Stateless, false),
	}, nil
}

type resolver struct {
	generators []strategy.Generator
	limits     risk.Limits
	owners     map[model.Product]string
}

func (r *resolver) add(g strategy.Generator, limits map[model.Product]model.Quantity) error {
	for _, p := range g.Products() {
		if owner, ok := r.owners[p]; ok {
			return errors.Wrapf(exception.ErrStrategyDuplicate, "%s is claimed by %s and %s", p, owner, g.Name())
		}
		r.owners[p] = g.Name()
	}
	for p, l := range limits {
		if l <= 0 {
			return errors.Wrapf(exception.ErrStrategyInvalidKnob, "%s limit of %s: %d", g.Name(), p, l)
		}
		r.limits[p] = l
	}
	r.generators = append(r.generators, g)
	return nil
}

func resolveTakerMaker(f TakerMakerConfig) (strategy.TakerMakerConfig, error) {
	c := strategy.DefaultTakerMakerConfig()
	product(&c.Product, f.Product)
	override(&c.FairValue, f.FairValue)
	override(&c.Deviation, f.Deviation)
	quantity(&c.Limit, f.Limit)
	if !positive(c.FairValue) || c.Deviation < 0 {
		return c, errors.Wrapf(exception.ErrStrategyInvalidKnob, "taker maker fair value %v, deviation %v", c.FairValue, c.Deviation)
	}
	return c, nil
}

func resolveEMAMaker(f EMAMakerConfig) (strategy.EMAMakerConfig, error) {
	c := strategy.DefaultEMAMakerConfig()
	product(&c.Product, f.Product)
	override(&c.Alpha, f.Alpha)
	override(&c.Spread, f.Spread)
	quantity(&c.Limit, f.Limit)
	if !(c.Alpha > 0 && c.Alpha <= 1) || c.Spread < 0 {
		return c, errors.Wrapf(exception.ErrStrategyInvalidKnob, "ema maker alpha %v, spread %v", c.Alpha, c.Spread)
	}
	return c, nil
}

func resolveConversion(f ConversionConfig) (strategy.ConversionConfig, error) {
	c := strategy.DefaultConversionConfig()
	product(&c.Product, f.Product)
	override(&c.Markup, f.Markup)
	quantity(&c.Limit, f.Limit)
	if math.IsNaN(c.Markup) || math.IsInf(c.Markup, 0) {
		return c, errors.Wrapf(exception.ErrStrategyInvalidKnob, "conversion markup %v", c.Markup)
	}
	return c, nil
}

func resolveBasketArb(f BasketArbConfig) (strategy.BasketArbConfig, error) {
	c := strategy.DefaultBasketArbConfig()
	product(&c.Basket, f.Basket)
	product(&c.Quoted, f.Quoted)
	if len(f.Components) != 0 {
		c.Components = make([]pricing.Component, 0, len(f.Components))
		for _, comp := range f.Components {
			c.Components = append(c.Components, pricing.Component{Product: model.Product(comp.Product), Weight: comp.Weight})
		}
	}
	override(&c.Offset, f.Offset)
	override(&c.Ratio, f.Ratio)
	override(&c.QuoteMargin, f.QuoteMargin)
	override(&c.SellThreshold, f.SellThreshold)
	override(&c.BuyThreshold, f.BuyThreshold)
	quantity(&c.BasketLimit, f.BasketLimit)
	quantity(&c.QuotedLimit, f.QuotedLimit)
	if !positive(c.Ratio) {
		return c, errors.Wrapf(exception.ErrStrategyInvalidKnob, "basket ratio %v", c.Ratio)
	}
	if c.Basket == c.Quoted {
		return c, errors.Wrapf(exception.ErrStrategyInvalidKnob, "basket %s quotes itself", c.Basket)
	}
	return c, nil
}

func resolveOptionArb(f OptionArbConfig) (strategy.OptionArbConfig, error) {
	c := strategy.DefaultOptionArbConfig()
	product(&c.Underlying, f.Underlying)
	product(&c.Option, f.Option)
	override(&c.Pricer.Strike, f.Strike)
	override(&c.Pricer.Rate, f.Rate)
	override(&c.Pricer.Vol, f.Vol)
	if f.ExpiryDays != nil {
		c.Pricer.Expiry = *f.ExpiryDays / 365
	}
	override(&c.Premium, f.Premium)
	override(&c.WidePremium, f.WidePremium)
	quantity(&c.Limit, f.Limit)
	override(&c.Lookback, f.Lookback)
	override(&c.Tolerance, f.Tolerance)
	override(&c.DeltaTrigger, f.DeltaTrigger)
	override(&c.PrimaryMinOrders, f.PrimaryMinOrders)
	spacing := defaultTickSpacing
	override(&spacing, f.TickSpacing)
	if !positive(c.Pricer.Strike) || !positive(c.Pricer.Vol) || !positive(c.Pricer.Expiry) {
		return c, errors.Wrapf(exception.ErrStrategyInvalidKnob, "option pricer %+v", c.Pricer)
	}
	if c.Lookback <= 0 || c.Tolerance < 0 || c.HistorySize <= 0 {
		return c, errors.Wrapf(exception.ErrStrategyInvalidKnob, "option lookback %d, tolerance %d, history %d", c.Lookback, c.Tolerance, c.HistorySize)
	}
	if spacing <= 0 {
		return c, errors.Wrapf(exception.ErrStrategyInvalidKnob, "option tick spacing %d", spacing)
	}

	// the oldest point the delta may read is lookback+tolerance back
	reach := int((c.Lookback+c.Tolerance)/spacing) + 1
	switch {
	case f.HistorySize == nil:
		c.HistorySize = max(c.HistorySize, reach)
	case *f.HistorySize < reach:
		return c, errors.Wrapf(exception.ErrStrategyInvalidKnob,
			"option history %d holds fewer than the %d ticks lookback %d needs", *f.HistorySize, reach, c.Lookback)
	default:
		c.HistorySize = *f.HistorySize
	}
	if c.Underlying == c.Option {
		return c, errors.Wrapf(exception.ErrStrategyInvalidKnob, "option %s is its own underlying", c.Option)
	}
	return c, nil
}

func resolveFollow(f FollowConfig) (strategy.FollowConfig, error) {
	c := strategy.DefaultFollowConfig()
	product(&c.Product, f.Product)
	if f.Counterparty != "" {
		c.Counterparty = f.Counterparty
	}
	override(&c.Window, f.Window)
	quantity(&c.Limit, f.Limit)
	if c.Window < 0 {
		return c, errors.Wrapf(exception.ErrStrategyInvalidKnob, "follow window %d", c.Window)
	}
	return c, nil
}

func enabled(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func product(dst *model.Product, v string) {
	if v != "" {
		*dst = model.Product(v)
	}
}

func quantity(dst *model.Quantity, v *int64) {
	if v != nil {
		*dst = model.Quantity(*v)
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
