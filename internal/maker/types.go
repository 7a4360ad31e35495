package maker

import (
	"fmt"
	"strings"
)

// Side 挂单方向
type Side uint8

const (
	SideUnknown Side = iota
	Bid              // 买：价格 >= 市价时成交
	Ask              // 卖：价格 <= 市价时成交
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "BID"
	case Ask:
		return "ASK"
	default:
		return "UNKNOWN"
	}
}

func (s Side) Valid() bool { return s == Bid || s == Ask }

func (s Side) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid side %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "BID", "BUY":
		*s = Bid
	case "ASK", "SELL":
		*s = Ask
	default:
		return fmt.Errorf("invalid side %q", string(b))
	}
	return nil
}

// Order 挂单；创建后不可变，成交即从 book 移除
type Order struct {
	ID     uint64  `json:"id"`
	Side   Side    `json:"side"`
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

// Notional is Price × Amount in quote units.
func (o Order) Notional() float64 { return o.Amount * o.Price }

// Balance: base 资产 + quote 资产。允许为负（模拟，不做风控）
type Balance struct {
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// Apply returns the balance after o fills. It is a pure function; fills
// commute because each one only adds fixed deltas.
func (b Balance) Apply(o Order) Balance {
	switch o.Side {
	case Bid:
		b.Base += o.Amount
		b.Quote -= o.Notional()
	case Ask:
		b.Base -= o.Amount
		b.Quote += o.Notional()
	}
	return b
}
