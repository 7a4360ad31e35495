package binance

import (
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"
	"mmbot.com/internal/quotes/datasource/model"
	"mmbot.com/pkg/xerr"
)

// /api/v3/ticker/24hr 的返回，价格都是字符串
type bnTicker24h struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
	HighPrice string `json:"highPrice"`
	LowPrice  string `json:"lowPrice"`
}

// ParseTicker24h decodes a 24hr ticker body into a Snapshot. Missing or
// non-numeric prices are FeedInvalidPayload errors.
func ParseTicker24h(b []byte) (model.Snapshot, error) {
	var t bnTicker24h
	if err := json.Unmarshal(b, &t); err != nil {
		return model.Snapshot{}, xerr.Wrap(err, xerr.FeedInvalidPayload, "decode ticker")
	}
	last, err := price("lastPrice", t.LastPrice)
	if err != nil {
		return model.Snapshot{}, err
	}
	high, err := price("highPrice", t.HighPrice)
	if err != nil {
		return model.Snapshot{}, err
	}
	low, err := price("lowPrice", t.LowPrice)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap := model.Snapshot{CurrentPrice: last, High24h: high, Low24h: low}
	// ParseFloat 认 "NaN"/"Inf"
	if !snap.Valid() {
		return model.Snapshot{}, xerr.New(xerr.FeedInvalidPayload, "ticker prices out of range")
	}
	return snap, nil
}

func price(field, s string) (float64, error) {
	if s == "" {
		return 0, xerr.New(xerr.FeedInvalidPayload, "missing "+field)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, xerr.Wrap(err, xerr.FeedInvalidPayload, "invalid "+field)
	}
	return v, nil
}

// SplitSymbol splits an exchange pair such as "ETHUSDT" into base and quote.
func SplitSymbol(sym string) (base, quote string, ok bool) {
	s := strings.ToUpper(sym)
	quotes := []string{
		"FDUSD", "USDT", "USDC", "BUSD", "TUSD",
		"BTC", "ETH", "BNB",
		"EUR", "GBP", "TRY", "JPY", "AUD", "BRL", "RUB",
	}
	for _, q := range quotes {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return s[:len(s)-len(q)], q, true
		}
	}
	return "", "", false
}
