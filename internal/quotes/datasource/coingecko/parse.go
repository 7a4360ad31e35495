package coingecko

import (
	"github.com/segmentio/encoding/json"
	"mmbot.com/internal/quotes/datasource/model"
	"mmbot.com/pkg/xerr"
)

// 只取需要的三个字段；指针用来区分"缺失/null"和 0
type usdQuote struct {
	USD *float64 `json:"usd"`
}

type coinResponse struct {
	MarketData *struct {
		CurrentPrice *usdQuote `json:"current_price"`
		High24h      *usdQuote `json:"high_24h"`
		Low24h       *usdQuote `json:"low_24h"`
	} `json:"market_data"`
}

// ParseCoin decodes a /coins/{id} body. Anything other than three numeric
// usd fields under market_data, or a current price that is not positive, is a
// FeedInvalidPayload error.
func ParseCoin(b []byte) (model.Snapshot, error) {
	var resp coinResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return model.Snapshot{}, xerr.Wrap(err, xerr.FeedInvalidPayload, "decode coin response")
	}
	md := resp.MarketData
	if md == nil {
		return model.Snapshot{}, xerr.New(xerr.FeedInvalidPayload, "missing market_data")
	}
	current, ok := usd(md.CurrentPrice)
	if !ok {
		return model.Snapshot{}, xerr.New(xerr.FeedInvalidPayload, "missing market_data.current_price.usd")
	}
	high, ok := usd(md.High24h)
	if !ok {
		return model.Snapshot{}, xerr.New(xerr.FeedInvalidPayload, "missing market_data.high_24h.usd")
	}
	low, ok := usd(md.Low24h)
	if !ok {
		return model.Snapshot{}, xerr.New(xerr.FeedInvalidPayload, "missing market_data.low_24h.usd")
	}
	snap := model.Snapshot{CurrentPrice: current, High24h: high, Low24h: low}
	if !snap.Valid() {
		return model.Snapshot{}, xerr.New(xerr.FeedInvalidPayload, "market_data prices out of range")
	}
	return snap, nil
}

func usd(q *usdQuote) (float64, bool) {
	if q == nil || q.USD == nil {
		return 0, false
	}
	return *q.USD, true
}
