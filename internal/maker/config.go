package maker

import (
	"time"

	"mmbot.com/pkg/ratelimit"
)

// Cfg 对应 config/mmbot.yaml
type Cfg struct {
	Name     string `yaml:"name" mapstructure:"name"`
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	LogFile  string `yaml:"log_file" mapstructure:"log_file"`
	Symbol   string `yaml:"symbol" mapstructure:"symbol"`
	Bot      BotCfg `yaml:"bot" mapstructure:"bot"`
	Feed     Feed   `yaml:"feed" mapstructure:"feed"`
	Admin    Admin  `yaml:"admin" mapstructure:"admin"`
	Events   Events `yaml:"events" mapstructure:"events"`
	OTel     OTel   `yaml:"otel" mapstructure:"otel"`
}

type BotCfg struct {
	BaseAsset        string        `yaml:"base_asset" mapstructure:"base_asset"`
	QuoteAsset       string        `yaml:"quote_asset" mapstructure:"quote_asset"`
	TargetDepth      int           `yaml:"target_depth" mapstructure:"target_depth"`
	MarketInterval   time.Duration `yaml:"market_interval" mapstructure:"market_interval"`
	BalanceInterval  time.Duration `yaml:"balance_interval" mapstructure:"balance_interval"`
	InitialBase      float64       `yaml:"initial_base" mapstructure:"initial_base"`
	InitialQuote     float64       `yaml:"initial_quote" mapstructure:"initial_quote"`
	PriceOffsetRatio float64       `yaml:"price_offset_ratio" mapstructure:"price_offset_ratio"`
	BalanceFraction  float64       `yaml:"balance_fraction" mapstructure:"balance_fraction"`
	MaxQuoteNotional float64       `yaml:"max_quote_notional" mapstructure:"max_quote_notional"`
}

type Feed struct {
	Provider string         `yaml:"provider" mapstructure:"provider"` // coingecko | binance
	BaseURL  string         `yaml:"base_url" mapstructure:"base_url"`
	APIKey   string         `yaml:"api_key" mapstructure:"api_key"`
	Timeout  time.Duration  `yaml:"timeout" mapstructure:"timeout"`
	Rate     float64        `yaml:"rate" mapstructure:"rate"` // 每秒请求数，<=0 不限流
	Burst    int            `yaml:"burst" mapstructure:"burst"`
	Breaker  ratelimit.Rule `yaml:"breaker" mapstructure:"breaker"`
}

type Admin struct {
	Enabled bool    `yaml:"enabled" mapstructure:"enabled"`
	Addr    string  `yaml:"addr" mapstructure:"addr"`
	Rate    float64 `yaml:"rate" mapstructure:"rate"`
	Burst   int     `yaml:"burst" mapstructure:"burst"`
}

type Events struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // mem | nats
	URL    string `yaml:"url" mapstructure:"url"`
}

type OTel struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Exporter string `yaml:"exporter" mapstructure:"exporter"` // otlp | stdout
	Addr     string `yaml:"addr" mapstructure:"addr"`
}

const (
	DefaultSymbol           = "ethereum"
	DefaultTargetDepth      = 10
	DefaultPriceOffsetRatio = 0.10
	DefaultBalanceFraction  = 0.10
	DefaultMaxQuoteNotional = 1000
	DefaultMarketInterval   = 5 * time.Second
	DefaultBalanceInterval  = 30 * time.Second
	DefaultFetchTimeout     = 10 * time.Second
)

var DefaultInitialBalance = Balance{Base: 10, Quote: 2000}

// Config is what a Bot runs with.
type Config struct {
	Symbol     string
	BaseAsset  string
	QuoteAsset string

	Quote          QuoteParams
	InitialBalance Balance

	MarketInterval  time.Duration
	BalanceInterval time.Duration
	FetchTimeout    time.Duration // 0 = 不额外加超时
}

func DefaultConfig(symbol string) Config {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return Config{
		Symbol:     symbol,
		BaseAsset:  "ETH",
		QuoteAsset: "USD",
		Quote: QuoteParams{
			TargetDepth:      DefaultTargetDepth,
			PriceOffsetRatio: DefaultPriceOffsetRatio,
			BalanceFraction:  DefaultBalanceFraction,
			MaxQuoteNotional: DefaultMaxQuoteNotional,
		},
		InitialBalance:  DefaultInitialBalance,
		MarketInterval:  DefaultMarketInterval,
		BalanceInterval: DefaultBalanceInterval,
		FetchTimeout:    DefaultFetchTimeout,
	}
}

// Runtime converts the file config, filling zero values with defaults.
// Initial balances are taken as given only when at least one is set.
func (c *Cfg) Runtime() Config {
	out := DefaultConfig(c.Symbol)
	b := c.Bot
	if b.BaseAsset != "" {
		out.BaseAsset = b.BaseAsset
	}
	if b.QuoteAsset != "" {
		out.QuoteAsset = b.QuoteAsset
	}
	if b.TargetDepth > 0 {
		out.Quote.TargetDepth = b.TargetDepth
	}
	if b.PriceOffsetRatio > 0 {
		out.Quote.PriceOffsetRatio = b.PriceOffsetRatio
	}
	if b.BalanceFraction > 0 {
		out.Quote.BalanceFraction = b.BalanceFraction
	}
	if b.MaxQuoteNotional > 0 {
		out.Quote.MaxQuoteNotional = b.MaxQuoteNotional
	}
	if b.InitialBase != 0 || b.InitialQuote != 0 {
		out.InitialBalance = Balance{Base: b.InitialBase, Quote: b.InitialQuote}
	}
	if b.MarketInterval > 0 {
		out.MarketInterval = b.MarketInterval
	}
	if b.BalanceInterval > 0 {
		out.BalanceInterval = b.BalanceInterval
	}
	if c.Feed.Timeout > 0 {
		out.FetchTimeout = c.Feed.Timeout
	}
	return out
}
