package maker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mmbot.com/pkg/config"
)

func TestCfgRuntime_Defaults(t *testing.T) {
	var c Cfg
	got := c.Runtime()
	assert.Equal(t, DefaultConfig(DefaultSymbol), got)
	assert.Equal(t, Balance{Base: 10, Quote: 2000}, got.InitialBalance)
	assert.Equal(t, 10, got.Quote.TargetDepth)
	assert.Equal(t, 5*time.Second, got.MarketInterval)
	assert.Equal(t, 30*time.Second, got.BalanceInterval)
}

func TestCfgRuntime_Overrides(t *testing.T) {
	c := Cfg{
		Symbol: "bitcoin",
		Bot: BotCfg{
			BaseAsset:      "BTC",
			TargetDepth:    4,
			InitialBase:    1,
			MarketInterval: time.Second,
		},
		Feed: Feed{Timeout: 2 * time.Second},
	}
	got := c.Runtime()
	assert.Equal(t, "bitcoin", got.Symbol)
	assert.Equal(t, "BTC", got.BaseAsset)
	assert.Equal(t, "USD", got.QuoteAsset)
	assert.Equal(t, 4, got.Quote.TargetDepth)
	assert.Equal(t, Balance{Base: 1, Quote: 0}, got.InitialBalance)
	assert.Equal(t, time.Second, got.MarketInterval)
	assert.Equal(t, 2*time.Second, got.FetchTimeout)
	assert.Equal(t, DefaultPriceOffsetRatio, got.Quote.PriceOffsetRatio)
}

func TestFixed(t *testing.T) {
	assert.Equal(t, "1950.00", fixed(1950, priceDP))
	assert.Equal(t, "0.0501", fixed(0.05012, amountDP))
	assert.Equal(t, "+0.5000", signed(0.5, amountDP))
	assert.Equal(t, "-12.30", signed(-12.3, priceDP))
	assert.Equal(t, "NaN", fixed(nan(), priceDP))
}

func TestCfg_ShippedYAML(t *testing.T) {
	var c Cfg
	_, err := config.LoadAndWatchDir("mmbot", "../../config", &c, nil)
	require.NoError(t, err)

	assert.Equal(t, "mmbot", c.Name)
	assert.Equal(t, "coingecko", c.Feed.Provider)
	assert.Equal(t, 10*time.Second, c.Feed.Timeout)
	assert.Equal(t, uint32(5), c.Feed.Breaker.TripConsecutiveFailures)
	assert.Equal(t, "mem", c.Events.Driver)
	assert.Equal(t, DefaultConfig("ethereum"), c.Runtime())
}
