package maker

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

const (
	priceDP  = 2
	amountDP = 4
)

// fixed 定点格式化，仅用于日志展示
func fixed(v float64, dp int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(dp)
}

// signed 带符号的增量，如 "+1.0000" / "-1950.00"
func signed(v float64, dp int32) string {
	s := fixed(v, dp)
	if v >= 0 && !math.IsNaN(v) {
		return "+" + s
	}
	return s
}
