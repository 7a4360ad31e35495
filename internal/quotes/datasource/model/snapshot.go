package model

import "math"

// Snapshot: 一次行情快照（当前价 + 24h 高低）
//
// High24h >= Low24h 是上游的约定，这里不校验。
type Snapshot struct {
	CurrentPrice float64 `json:"current_price"`
	High24h      float64 `json:"high_24h"`
	Low24h       float64 `json:"low_24h"`
}

// Spread is half of the 24h trading range, clamped at zero when the feed
// reports high < low.
func (s Snapshot) Spread() float64 {
	spread := (s.High24h - s.Low24h) / 2
	if spread < 0 || math.IsNaN(spread) {
		return 0
	}
	return spread
}

// Quotable reports whether the current price can anchor new quotes.
func (s Snapshot) Quotable() bool {
	return s.CurrentPrice > 0 && !math.IsInf(s.CurrentPrice, 0) && !math.IsNaN(s.CurrentPrice)
}

// Valid 行情源返回的快照必须满足：当前价可报价，24h 高低都是有限数
func (s Snapshot) Valid() bool {
	return s.Quotable() && !math.IsInf(s.High24h, 0) && !math.IsNaN(s.High24h) &&
		!math.IsInf(s.Low24h, 0) && !math.IsNaN(s.Low24h)
}
