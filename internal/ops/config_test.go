package ops

import (
	"os"
	"path/filepath"
	"testing"

	"marketmaker/internal/model"
	"marketmaker/internal/pricing"
	"marketmaker/internal/strategy"
	"marketmaker/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(gs []strategy.Generator) []string {
	out := make([]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, g.Name())
	}
	return out
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	loaded := Default()
	assert.Equal(t, []string{"taker_maker", "ema_maker", "conversion", "basket_arb", "option_arb"}, names(loaded.Generators))
	assert.Equal(t, model.Quantity(20), loaded.Limits[model.Amethysts])
	assert.Equal(t, model.Quantity(20), loaded.Limits[model.Starfruit])
	assert.Equal(t, model.Quantity(100), loaded.Limits[model.Orchids])
	assert.Equal(t, model.Quantity(350), loaded.Limits[model.Strawberries])
	assert.Equal(t, model.Quantity(60), loaded.Limits[model.GiftBasket])
	assert.Equal(t, model.Quantity(600), loaded.Limits[model.CoconutCoupon])
	assert.NotContains(t, loaded.Limits, model.Roses)
	assert.False(t, loaded.Stateless)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "trader.yaml", `
stateless: true
generators:
  takerMaker:
    fairValue: 10001
    limit: 30
  conversion:
    enabled: false
  follow:
    enabled: true
    counterparty: Rhianna
`)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Stateless)
	assert.Equal(t, []string{"taker_maker", "ema_maker", "basket_arb", "option_arb", "follow"}, names(loaded.Generators))
	assert.Equal(t, model.Quantity(30), loaded.Limits[model.Amethysts])
	assert.Equal(t, model.Quantity(60), loaded.Limits[model.Roses])
	assert.NotContains(t, loaded.Limits, model.Orchids)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "trader.json", `{
  "generators": {
    "emaMaker": {"product": "KELP", "alpha": 0.5, "limit": 50},
    "optionArb": {"enabled": false},
    "basketArb": {"enabled": false}
  }
}`)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"taker_maker", "ema_maker", "conversion"}, names(loaded.Generators))
	assert.Equal(t, model.Quantity(50), loaded.Limits[model.Product("KELP")])
	assert.NotContains(t, loaded.Limits, model.Starfruit)
}

func TestResolveRejects(t *testing.T) {
	yes := true
	alpha := 1.5
	zero := int64(0)

	testCases := []struct {
		desc string
		cfg  FileConfig
		err  error
	}{
		{
			desc: "shared product",
			cfg: FileConfig{Generators: GeneratorsConfig{
				Follow: FollowConfig{Enabled: &yes, Product: string(model.Strawberries)},
			}},
			err: exception.ErrStrategyDuplicate,
		},
		{
			desc: "alpha above one",
			cfg:  FileConfig{Generators: GeneratorsConfig{EMAMaker: EMAMakerConfig{Alpha: &alpha}}},
			err:  exception.ErrStrategyInvalidKnob,
		},
		{
			desc: "zero limit",
			cfg:  FileConfig{Generators: GeneratorsConfig{TakerMaker: TakerMakerConfig{Limit: &zero}}},
			err:  exception.ErrStrategyInvalidKnob,
		},
		{
			desc: "history shorter than lookback",
			cfg: FileConfig{Generators: GeneratorsConfig{OptionArb: OptionArbConfig{
				Lookback:    ptr(int64(8000)),
				HistorySize: ptr(64),
			}}},
			err: exception.ErrStrategyInvalidKnob,
		},
		{
			desc: "zero tick spacing",
			cfg:  FileConfig{Generators: GeneratorsConfig{OptionArb: OptionArbConfig{TickSpacing: ptr(int64(0))}}},
			err:  exception.ErrStrategyInvalidKnob,
		},
		{
			desc: "option on itself",
			cfg:  FileConfig{Generators: GeneratorsConfig{OptionArb: OptionArbConfig{Underlying: string(model.CoconutCoupon)}}},
			err:  exception.ErrStrategyInvalidKnob,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := Resolve(tc.cfg)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestOptionHistoryCoversLookback(t *testing.T) {
	resized, err := resolveOptionArb(OptionArbConfig{Lookback: ptr(int64(8000))})
	require.NoError(t, err)
	assert.Equal(t, 81, resized.HistorySize)

	c, err := resolveOptionArb(OptionArbConfig{Lookback: ptr(int64(2000)), Tolerance: ptr(int64(200)), TickSpacing: ptr(int64(50))})
	require.NoError(t, err)
	assert.Equal(t, 64, c.HistorySize)

	c, err = resolveOptionArb(OptionArbConfig{Lookback: ptr(int64(8000)), HistorySize: ptr(100)})
	require.NoError(t, err)
	assert.Equal(t, 100, c.HistorySize)

	// the resized history reaches the lookback at the exchange tick spacing
	under, option := pricing.NewMidHistory(resized.HistorySize), pricing.NewMidHistory(resized.HistorySize)
	for ts := int64(0); ts <= 20000; ts += defaultTickSpacing {
		under.Put(ts, 10000+float64(ts)/100)
		option.Put(ts, 600+float64(ts)/200)
	}
	_, ok := pricing.Delta(under, option, 20000, resized.Lookback, resized.Tolerance)
	assert.True(t, ok)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeConfig(t, "trader.toml", "stateless = true")
	_, err := Load(path)
	assert.ErrorIs(t, err, exception.ErrArgumentUnsupported)
}
